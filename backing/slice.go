package backing

import "unsafe"

// wordSize matches the alignment tlsf's core requires of pool memory.
const wordSize = 8

// Slice returns an n-byte slice on the Go heap, guaranteed to start on a
// wordSize boundary. Plain make([]byte, n) is not sufficient: the runtime's
// size-class allocator gives no alignment guarantee beyond what happens to
// fall out of the requested size, so small or odd-sized requests can land
// on a boundary AddPool will reject.
//
// The returned slice keeps the backing array alive for as long as it is
// referenced, including indirectly through the *tlsf.Pool that wraps it,
// so callers should keep holding either the slice or the Pool, not just
// pointers derived from it with unsafe.
func Slice(n int) []byte {
	if n <= 0 {
		return nil
	}

	words := make([]uint64, (n+int(wordSize)-1)/int(wordSize))
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}

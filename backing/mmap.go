package backing

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MappedRegion is an anonymous, private mmap'd span of memory suitable for
// use as a tlsf pool. Unlike a heap-backed slice from Slice, this memory is
// not scanned or moved by the Go garbage collector, and must be released
// explicitly with Close.
type MappedRegion struct {
	mem    []byte
	closed bool
}

// Mmap reserves n bytes of anonymous, private memory via mmap(2), page
// aligned and therefore always aligned to tlsf's own (much smaller)
// alignment requirement.
func Mmap(n int) (*MappedRegion, error) {
	if n <= 0 {
		return nil, fmt.Errorf("backing: mmap size must be positive, got %d", n)
	}

	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("backing: mmap %d bytes: %w", n, err)
	}

	return &MappedRegion{mem: data}, nil
}

// Bytes returns the mapped memory as a byte slice, ready to pass to
// tlsf.Control.AddPool. It must not be used after Close.
func (r *MappedRegion) Bytes() []byte {
	return r.mem
}

// Close unmaps the region. It is safe to call more than once.
func (r *MappedRegion) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	base := unsafe.Pointer(&r.mem[0])
	n := len(r.mem)
	view := unsafe.Slice((*byte)(base), n)

	if err := unix.Munmap(view); err != nil {
		return fmt.Errorf("backing: munmap: %w", err)
	}

	return nil
}

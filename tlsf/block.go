package tlsf

import "unsafe"

// Block status bits packed into the low bits of header.size, since every
// block's size is a multiple of alignSize (at least 8) and therefore has
// its low 3 bits free. Only the bottom two are used.
const (
	flagFree     uintptr = 1 << 0 // block itself is free
	flagPrevFree uintptr = 1 << 1 // the preceding physical block is free
	flagMask             = flagFree | flagPrevFree
)

// header is the metadata every physical block carries. prevPhys is only
// valid when the preceding physical block is free (its PREV_FREE flag is
// set), in which case it occupies the trailing word of that block's
// payload. When the preceding block is in use, those same bytes are its
// own user data, and prevPhys must not be read or written.
//
// blockStartOffset (the distance from a header to its user pointer) is two
// words, but a used block only reserves one of them: the size word. The
// other is reclaimed as payload.
type header struct {
	prevPhys *header
	size     uintptr
}

// freeHeader extends header with the intrusive doubly linked free-list
// pointers. These fields only hold meaningful data while the block is free;
// they occupy the start of the block's own payload area.
type freeHeader struct {
	header
	next *freeHeader
	prev *freeHeader
}

const (
	// headerOverhead is the overhead visible to a used block: just its
	// size word.
	headerOverhead = wordSize

	// blockStartOffset is the distance from a block's header address to
	// the user pointer returned for it.
	blockStartOffset = unsafe.Sizeof(header{})

	// blockSizeMin is the smallest payload size a free block may have,
	// enough to hold the doubly linked free-list pointers.
	blockSizeMin = unsafe.Sizeof(freeHeader{}) - wordSize
)

func asFree(h *header) *freeHeader   { return (*freeHeader)(unsafe.Pointer(h)) }
func asHeader(f *freeHeader) *header { return &f.header }

// blockSize returns the payload size of the block, with status bits masked
// off.
//
//go:inline
func (h *header) blockSize() uintptr {
	return h.size &^ flagMask
}

// setSize replaces the payload size, preserving status bits.
//
//go:inline
func (h *header) setSize(size uintptr) {
	h.size = size | (h.size & flagMask)
}

//go:inline
func (h *header) isLast() bool { return h.blockSize() == 0 }

//go:inline
func (h *header) isFree() bool { return h.size&flagFree != 0 }

//go:inline
func (h *header) setFree() { h.size |= flagFree }

//go:inline
func (h *header) setUsed() { h.size &^= flagFree }

//go:inline
func (h *header) isPrevFree() bool { return h.size&flagPrevFree != 0 }

//go:inline
func (h *header) setPrevFree() { h.size |= flagPrevFree }

//go:inline
func (h *header) setPrevUsed() { h.size &^= flagPrevFree }

// blockFromPtr recovers a block's header from the user pointer returned for
// it.
//
//go:inline
func blockFromPtr(ptr unsafe.Pointer) *header {
	return (*header)(unsafe.Add(ptr, -int(blockStartOffset)))
}

// blockToPtr returns the user pointer for a block's header.
//
//go:inline
func blockToPtr(h *header) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(h), blockStartOffset)
}

// offsetToHeader returns the header located size bytes after ptr.
//
//go:inline
func offsetToHeader(ptr unsafe.Pointer, size uintptr) *header {
	return (*header)(unsafe.Add(ptr, size))
}

// blockNext returns the physically next block. It is only valid to call
// this on a non-sentinel block.
//
//go:inline
func blockNext(h *header) *header {
	return offsetToHeader(blockToPtr(h), h.blockSize()-headerOverhead)
}

// blockLinkNext links h to its physical successor (setting the successor's
// prevPhys back-pointer) and returns the successor.
//
//go:inline
func blockLinkNext(h *header) *header {
	next := blockNext(h)
	next.prevPhys = h
	return next
}

// blockMarkAsFree marks h free and updates its successor's PREV_FREE flag.
func blockMarkAsFree(h *header) {
	next := blockLinkNext(h)
	next.setPrevFree()
	h.setFree()
}

// blockMarkAsUsed marks h used and updates its successor's PREV_FREE flag.
func blockMarkAsUsed(h *header) {
	next := blockNext(h)
	next.setPrevUsed()
	h.setUsed()
}

// alignUp rounds x up to the nearest multiple of align, a power of two.
//
//go:inline
func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// alignDown rounds x down to the nearest multiple of align, a power of two.
//
//go:inline
func alignDown(x, align uintptr) uintptr {
	return x &^ (align - 1)
}

// alignPtr rounds ptr up to the nearest multiple of align, a power of two.
//
//go:inline
func alignPtr(ptr unsafe.Pointer, align uintptr) unsafe.Pointer {
	addr := uintptr(ptr)
	aligned := alignUp(addr, align)
	return unsafe.Add(ptr, aligned-addr)
}

// adjustRequestSize rounds size up to align and clamps it into
// [blockSizeMin, blockSizeMax). It returns 0 for a zero request or one that
// can never be satisfied.
func adjustRequestSize(size, align uintptr) uintptr {
	if size == 0 || size >= blockSizeMax {
		return 0
	}

	aligned := alignUp(size, align)
	if aligned >= blockSizeMax {
		return 0
	}
	if aligned < blockSizeMin {
		return blockSizeMin
	}

	return aligned
}

package tlsf

import "unsafe"

// gapMinimum is the smallest leading gap Memalign will tolerate without
// shifting to the next aligned boundary. The gap is handed back to the free
// index as a block of its own, so it must be big enough to hold a full free
// block header (freeHeader): that leaves the gap block a payload of at least
// blockSizeMin, room for its free-list links.
const gapMinimum = unsafe.Sizeof(freeHeader{})

func maxUintptr(a, b uintptr) uintptr {
	if a > b {
		return a
	}
	return b
}

// Malloc returns a pointer to a block of at least size bytes, or nil if no
// attached pool has enough contiguous free space.
func (c *Control) Malloc(size uintptr) unsafe.Pointer {
	adjust := adjustRequestSize(size, alignSize)
	h := c.locateFree(adjust)
	return prepareUsed(c, h, adjust)
}

// Free releases a pointer previously returned by Malloc, Memalign, or
// Realloc, coalescing it with any free physical neighbors. Free(nil) is a
// no-op.
func (c *Control) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h := blockFromPtr(ptr)
	blockMarkAsFree(h)
	h = c.mergePrev(h)
	h = c.mergeNext(h)
	c.blockInsert(h)
}

// Memalign returns a pointer to a block of at least size bytes whose
// address is a multiple of align, which must be a power of two. It returns
// nil under the same conditions as Malloc, or if align is not a power of
// two.
func (c *Control) Memalign(align, size uintptr) unsafe.Pointer {
	if align == 0 || align&(align-1) != 0 {
		return nil
	}

	adjust := adjustRequestSize(size, alignSize)

	// An over-aligned request may need up to align-1 extra bytes of slack
	// plus a full spare header (gapMinimum) to trim the leading remainder
	// back into a valid free block.
	sizeWithGap := adjustRequestSize(adjust+align+gapMinimum, align)

	aligned := adjust
	if adjust != 0 && align > alignSize {
		aligned = sizeWithGap
	}

	h := c.locateFree(aligned)
	if h != nil {
		ptr := blockToPtr(h)
		target := alignPtr(ptr, align)
		gap := uintptr(target) - uintptr(ptr)

		if gap != 0 && gap < gapMinimum {
			remain := gapMinimum - gap
			offset := maxUintptr(remain, align)
			next := unsafe.Add(target, int(offset))
			target = alignPtr(next, align)
			gap = uintptr(target) - uintptr(ptr)
		}

		if gap != 0 {
			h = c.trimFreeLeading(h, gap)
		}
	}

	return prepareUsed(c, h, adjust)
}

// Realloc resizes the allocation at ptr to size bytes, possibly moving it,
// and returns the new pointer (or the same pointer if it could be resized
// in place). Realloc(nil, size) behaves like Malloc(size); Realloc(ptr, 0)
// behaves like Free(ptr) and returns nil.
func (c *Control) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if ptr != nil && size == 0 {
		c.Free(ptr)
		return nil
	}

	if ptr == nil {
		return c.Malloc(size)
	}

	h := blockFromPtr(ptr)
	next := blockNext(h)

	curSize := h.blockSize()
	combined := curSize + next.blockSize() + headerOverhead
	adjust := adjustRequestSize(size, alignSize)

	if adjust > curSize && (!next.isFree() || adjust > combined) {
		p := c.Malloc(size)
		if p != nil {
			n := curSize
			if size < n {
				n = size
			}
			copyBytes(p, ptr, n)
			c.Free(ptr)
		}
		return p
	}

	if adjust > curSize {
		c.mergeNext(h)
		blockMarkAsUsed(h)
	}

	c.trimUsed(h, adjust)
	return ptr
}

// copyBytes copies n bytes from src to dst via a byte slice view, avoiding a
// dependency on libc memmove semantics the two regions (old and freshly
// malloc'd) never overlap.
func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}

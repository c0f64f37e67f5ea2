package tlsf

import "unsafe"

// blockPrev returns the physically previous block. Only valid to call when
// h.isPrevFree(): otherwise prevPhys overlaps live user data and does not
// point at a block header at all.
//
//go:inline
func blockPrev(h *header) *header {
	return h.prevPhys
}

// blockCanSplit reports whether h has enough free space to carve a payload
// of size out of it and still leave a valid (headered) remainder block.
//
//go:inline
func blockCanSplit(h *header, size uintptr) bool {
	return h.blockSize() >= blockStartOffset+size
}

// blockSplit carves h down to a payload of size and returns a new header for
// the remainder, physically adjacent to the shrunk h. The remainder is
// linked into the physical chain (blockLinkNext) by the caller once h's own
// next-pointer bookkeeping is settled; trimFree/trimUsed below do this
// immediately.
func blockSplit(h *header, size uintptr) *header {
	remaining := offsetToHeader(blockToPtr(h), size-headerOverhead)
	remainSize := h.blockSize() - (size + headerOverhead)

	remaining.setSize(remainSize)
	h.setSize(size)

	return remaining
}

// blockAbsorb merges block into prev, which must be its immediate physical
// predecessor. prev grows to cover block's payload plus the header overhead
// block used to carry. The caller is responsible for having already removed
// both blocks from the free index.
func blockAbsorb(prev, block *header) *header {
	prev.setSize(prev.blockSize() + block.blockSize() + headerOverhead)
	blockLinkNext(prev)
	return prev
}

// mergePrev merges h into its physically preceding block if that block is
// free, returning whichever header now represents the combined block.
func (c *Control) mergePrev(h *header) *header {
	if h.isPrevFree() {
		prev := blockPrev(h)
		c.blockRemove(prev)
		h = blockAbsorb(prev, h)
	}
	return h
}

// mergeNext merges h with its physically following block if that block is
// free, returning whichever header now represents the combined block.
func (c *Control) mergeNext(h *header) *header {
	next := blockNext(h)
	if next.isFree() {
		c.blockRemove(next)
		h = blockAbsorb(h, next)
	}
	return h
}

// trimFree splits a free block down to size if there is enough slack to do
// so, re-inserting the remainder into the free index. h must already be
// free; it is left free and NOT reinserted, since the caller (prepareUsed)
// marks it used immediately after.
func (c *Control) trimFree(h *header, size uintptr) {
	if blockCanSplit(h, size) {
		remaining := blockSplit(h, size)
		blockLinkNext(h)
		remaining.setPrevFree()
		c.blockInsert(remaining)
	}
}

// trimUsed splits a used block down to size if there is enough slack,
// coalescing the remainder with a free physical successor before reinserting
// it into the free index.
func (c *Control) trimUsed(h *header, size uintptr) {
	if blockCanSplit(h, size) {
		remaining := blockSplit(h, size)
		remaining.setPrevUsed()

		remaining = c.mergeNext(remaining)
		c.blockInsert(remaining)
	}
}

// trimFreeLeading splits size bytes off the front of a free block, inserting
// the leading piece back into the free index and returning the remainder:
// the part the caller actually wants, aligned at its requested offset. Used
// by Memalign to shed an over-aligned gap.
func (c *Control) trimFreeLeading(h *header, size uintptr) *header {
	remaining := h

	if blockCanSplit(h, size) {
		remaining = blockSplit(h, size-headerOverhead)
		remaining.setPrevFree()

		blockLinkNext(h)
		c.blockInsert(h)
	}

	return remaining
}

// locateFree finds and removes a free block able to satisfy size, or
// returns nil if no pool has anything large enough left.
func (c *Control) locateFree(size uintptr) *header {
	var (
		found  *freeHeader
		fl, sl int
		ok     bool
	)

	if size != 0 {
		mfl, msl := mappingSearch(size)

		// mappingSearch's rounding can push fl out of range for large
		// requests: adjustRequestSize only rejects sizes at or above
		// blockSizeMax, so a size just below it can still round up to
		// fl == flIndexCount. Guard here, since this is the only caller of
		// mappingSearch.
		if mfl < flIndexCount {
			found, fl, sl, ok = c.searchSuitableBlock(mfl, msl)
		}
	}

	if !ok || found == nil {
		return nil
	}

	h := asHeader(found)
	c.removeFreeBlock(found, fl, sl)
	return h
}

// prepareUsed trims h to size and marks it used, returning the user pointer.
// h must be non-nil and already removed from the free index.
func prepareUsed(c *Control, h *header, size uintptr) unsafe.Pointer {
	if h == nil {
		return nil
	}

	c.trimFree(h, size)
	blockMarkAsUsed(h)

	return blockToPtr(h)
}

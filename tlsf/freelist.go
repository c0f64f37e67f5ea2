package tlsf

// insertFreeBlock prepends f's header's block to the free list at (fl, sl),
// setting both bitmaps so the block becomes visible to search.
func (c *Control) insertFreeBlock(f *freeHeader, fl, sl int) {
	head := c.blocks[fl][sl]

	f.next = head
	f.prev = &c.null
	head.prev = f
	c.blocks[fl][sl] = f

	setBit(fl, &c.flBitmap)
	setBit(sl, &c.slBitmap[fl])
}

// removeFreeBlock unlinks f's block from the free list at (fl, sl), clearing
// either bitmap whose bucket becomes empty as a result.
func (c *Control) removeFreeBlock(f *freeHeader, fl, sl int) {
	prev := f.prev
	next := f.next

	next.prev = prev
	prev.next = next

	if c.blocks[fl][sl] == f {
		c.blocks[fl][sl] = next

		if next == &c.null {
			clearBit(sl, &c.slBitmap[fl])

			if c.slBitmap[fl] == 0 {
				clearBit(fl, &c.flBitmap)
			}
		}
	}
}

// blockInsert maps h's size to its bucket and inserts it into the free
// index, marking h free in the process.
func (c *Control) blockInsert(h *header) {
	fl, sl := mappingInsert(h.blockSize())
	c.insertFreeBlock(asFree(h), fl, sl)
	blockMarkAsFree(h)
}

// blockRemove maps h's current size to its bucket and removes it from the
// free index. It does not alter h's free/used flags; callers that are
// about to hand the block out must call blockMarkAsUsed separately.
func (c *Control) blockRemove(h *header) {
	fl, sl := mappingInsert(h.blockSize())
	c.removeFreeBlock(asFree(h), fl, sl)
}

// searchSuitableBlock finds the smallest free block that can satisfy a
// request mapped to (fl, sl), rounding up to larger buckets when the exact
// bucket is empty. On success it returns the block and the (fl, sl) bucket
// it actually came from, so the caller can remove it with removeFreeBlock
// without re-deriving the mapping from a possibly-different size.
func (c *Control) searchSuitableBlock(fl, sl int) (f *freeHeader, outFL, outSL int, ok bool) {
	slMap := c.slBitmap[fl] & (^uint32(0) << uint(sl))
	if slMap == 0 {
		// No block in this fl's remaining sl buckets: move up to the next
		// first-level index that has anything free at all.
		flMap := c.flBitmap & (^uint32(0) << uint(fl+1))
		if flMap == 0 {
			return nil, 0, 0, false
		}

		fl = ffs(flMap)
		slMap = c.slBitmap[fl]
	}

	sl = ffs(slMap)
	return c.blocks[fl][sl], fl, sl, true
}

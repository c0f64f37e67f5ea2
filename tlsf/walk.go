package tlsf

import "unsafe"

// BlockSize returns the usable payload size of the block backing ptr, a
// pointer previously returned by Malloc, Memalign, or Realloc. This is the
// block's full size field. A used block's trailing word, which doubles as
// its physical successor's prev_phys_block once that successor becomes
// free, is safe for the caller to use, since nothing reads it back as a
// back-pointer until this block is freed and that word is overwritten.
func BlockSize(ptr unsafe.Pointer) uintptr {
	h := blockFromPtr(ptr)
	return h.blockSize()
}

// Walk visits every physical block in the pool in address order, from its
// leading block up to (but not including) the zero-size sentinel. visit is
// called with the block's user pointer, its usable payload size, and
// whether it is currently allocated.
//
// Walk is a read-only diagnostic: it does not take the same lock a
// concurrent allocator wrapper would use around Malloc/Free, so callers
// sharing a Control across goroutines must synchronize externally, exactly
// as for any other Control method.
func (p *Pool) Walk(visit func(ptr unsafe.Pointer, size uintptr, used bool)) {
	for h := p.firstHeader(); !h.isLast(); h = blockNext(h) {
		visit(blockToPtr(h), h.blockSize(), !h.isFree())
	}
}

// WalkPool is the package-level form of Pool.Walk, kept for callers coming
// from tlsf_walk_pool's free-function shape. It is equivalent to
// pool.Walk(visit).
func WalkPool(pool *Pool, visit func(ptr unsafe.Pointer, size uintptr, used bool)) {
	pool.Walk(visit)
}

// UsedSize sums the payload size of every currently allocated block in the
// pool. It runs in time proportional to the number of physical blocks, not
// the number of allocations outstanding at any prior point.
func (p *Pool) UsedSize() uintptr {
	var total uintptr
	p.Walk(func(_ unsafe.Pointer, size uintptr, used bool) {
		if used {
			total += size
		}
	})
	return total
}

// FreeSize sums the payload size of every currently free block in the pool.
func (p *Pool) FreeSize() uintptr {
	var total uintptr
	p.Walk(func(_ unsafe.Pointer, size uintptr, used bool) {
		if !used {
			total += size
		}
	})
	return total
}

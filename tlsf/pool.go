package tlsf

import "unsafe"

// poolOverhead is the total bytes of each pool's backing memory consumed by
// the leading block's header and the trailing sentinel's header, neither of
// which is ever handed out as payload.
const poolOverhead = 2 * headerOverhead

// Pool is one contiguous span of memory handed to a Control with AddPool.
// Allocations satisfied from it are carved out of, and freed back into, its
// single initial free block.
type Pool struct {
	// mem pins the backing slice alive for the GC for as long as the pool
	// exists: block headers inside it are reached only via unsafe.Pointer
	// arithmetic, which by itself gives the garbage collector no reason to
	// keep the underlying array around.
	mem []byte

	// bytes is the usable payload size of the pool: len(mem) minus
	// poolOverhead, rounded down to alignSize.
	bytes uintptr
}

// Bytes reports the usable capacity of the pool, matching the
// usable = align_down(bytes - 2*header_overhead, A) invariant.
func (p *Pool) Bytes() uintptr { return p.bytes }

// firstHeader recovers the pool's leading block header from its backing
// slice, the same address AddPool computed when the pool was created.
func (p *Pool) firstHeader() *header {
	return (*header)(unsafe.Add(unsafe.Pointer(&p.mem[0]), -int(headerOverhead)))
}

// AddPool attaches mem as a new pool of c, carving it into one large free
// block bracketed by a leading block header and a trailing zero-size
// sentinel, exactly as tlsf_add_pool does in the reference implementation.
//
// The leading block's header is placed headerOverhead bytes before mem[0],
// mirroring offset_to_block(mem, -block_header_overhead) in the original:
// the block's own prevPhys field is never read (the block is flagged
// PREV_USED, and nothing ever walks backward past it) so the one word of
// header that lands before mem[0] is never dereferenced. Only the block's
// size field (at mem[0:8]) and everything after it is ever touched within
// [mem, mem+len(mem)). The trailing sentinel's header is placed so that its
// own size field is the last word inside mem; this is exactly what bounds
// the usable size to align_down(len(mem) - 2*headerOverhead, alignSize).
func (c *Control) AddPool(mem []byte) (*Pool, error) {
	if len(mem) <= int(poolOverhead) {
		return nil, ErrPoolTooSmall
	}
	if uintptr(unsafe.Pointer(&mem[0]))&(alignSize-1) != 0 {
		return nil, ErrUnaligned
	}

	poolBytes := alignDown(uintptr(len(mem))-poolOverhead, alignSize)

	if poolBytes < blockSizeMin {
		return nil, ErrPoolTooSmall
	}
	if poolBytes >= blockSizeMax {
		return nil, ErrPoolTooLarge
	}

	base := unsafe.Pointer(&mem[0])
	first := (*header)(unsafe.Add(base, -int(headerOverhead)))

	// Deliberately left untouched: first.prevPhys lands 8 bytes before
	// mem[0]. It is never read, since first is flagged PREV_USED and no
	// walk ever steps backward past the leading block of a pool.
	first.size = poolBytes // clears FREE and PREV_FREE: poolBytes is alignSize-aligned
	first.setPrevUsed()

	// blockInsert marks first free, links the sentinel via blockLinkNext
	// (writing the sentinel's prevPhys), and sets the sentinel's PREV_FREE
	// bit, all in one pass, mirroring tlsf_add_pool's
	// block_set_free + block_insert + block_link_next sequence.
	c.blockInsert(first)

	sentinel := blockNext(first)
	sentinel.size = flagPrevFree // zero-size, used, predecessor (first) is free

	p := &Pool{mem: mem, bytes: poolBytes}
	c.pools = append(c.pools, p)

	return p, nil
}

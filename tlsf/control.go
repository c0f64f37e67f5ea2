package tlsf

// Control is one TLSF allocator instance: the bitmaps and free-list matrix
// plus the set of pools it manages. A zero Control is not usable; build
// one with Create or CreateWithPool.
//
// Control is NOT goroutine-safe; see package tlsfwrap for external
// synchronization.
type Control struct {
	// null is the shared empty-list marker. Every bucket's head points here
	// when the bucket is empty, so remove/insert never have to special-case
	// a nil head.
	null freeHeader

	flBitmap uint32
	slBitmap [flIndexCount]uint32
	blocks   [flIndexCount][slIndexCount]*freeHeader

	pools []*Pool
}

// Create creates an empty Control with no pools attached. Attach memory with
// AddPool before allocating. Equivalent to tlsf_create.
//
// Unlike the C original, where tlsf_create places the control structure at
// a caller-supplied address (because C has no other way to obtain storage
// for it before an allocator exists), the control structure here is a
// normal Go heap value: Go already solves the allocator bootstrap problem.
// The part that actually matters, block layout inside caller-supplied pool
// memory, is implemented exactly by AddPool below.
func Create() *Control {
	c := &Control{}

	c.null.next = &c.null
	c.null.prev = &c.null

	for fl := 0; fl < flIndexCount; fl++ {
		for sl := 0; sl < slIndexCount; sl++ {
			c.blocks[fl][sl] = &c.null
		}
	}

	return c
}

// CreateWithPool creates a Control and immediately attaches mem as its
// first pool, equivalent to tlsf_create_with_pool.
func CreateWithPool(mem []byte) (*Control, *Pool, error) {
	c := Create()

	pool, err := c.AddPool(mem)
	if err != nil {
		return nil, nil, err
	}

	return c, pool, nil
}

// Pools returns the pools currently attached to c, in the order they were
// added. Callers must not retain the returned slice across a subsequent
// AddPool call.
func (c *Control) Pools() []*Pool {
	return c.pools
}

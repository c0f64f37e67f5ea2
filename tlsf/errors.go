package tlsf

import "errors"

// Errors returned by pool-creation operations. The core never returns an
// error from malloc/memalign/realloc/free; allocation failure is always
// signalled by a nil pointer.
var (
	// ErrUnaligned is returned when a pool's backing memory does not start
	// on an A-byte boundary.
	ErrUnaligned = errors.New("tlsf: pool memory is not properly aligned")

	// ErrPoolTooSmall is returned when a pool's usable size would fall
	// below the minimum allocatable block size.
	ErrPoolTooSmall = errors.New("tlsf: pool is smaller than the minimum block size")

	// ErrPoolTooLarge is returned when a pool's usable size would exceed
	// the largest size the first-level index can represent.
	ErrPoolTooLarge = errors.New("tlsf: pool exceeds the maximum block size")
)

package tlsfwrap

import (
	"errors"
	"unsafe"

	"go.uber.org/zap"

	"github.com/embedmem/tlsf/backing"
	"github.com/embedmem/tlsf/tlsf"
)

// Arena is the allocate/free/dispose surface a caller who doesn't need the
// full Wrapper (overflow-checked Calloc, Memalign, Walk) can depend on
// instead, matching the source's own Arena interface shape one constructor
// and one backing store at a time.
type Arena interface {
	// Allocate returns a pointer to size bytes, or ErrBlockNotFound if the
	// arena has no block large enough.
	Allocate(size int64) (unsafe.Pointer, error)

	// Free releases ptr, a pointer previously returned by Allocate.
	Free(ptr unsafe.Pointer)

	// Dispose releases all resources backing the arena. After Dispose the
	// arena must not be used again.
	Dispose()

	// UsedSize returns the total block size (not allocation size) of every
	// block currently allocated.
	UsedSize() int64
}

// ErrBlockNotFound is returned by Allocate when no suitable block exists.
var ErrBlockNotFound = errors.New("tlsfwrap: failed to allocate block")

// sliceArena is an Arena backed by a plain heap slice (backing.Slice),
// released by simply dropping the reference on Dispose. There is no
// syscall-backed resource to release.
type sliceArena struct {
	wrapper *Wrapper
	pool    *tlsf.Pool
}

// mmapArena is an Arena backed by an anonymous mmap region, released by
// unmapping it on Dispose.
type mmapArena struct {
	wrapper *Wrapper
	pool    *tlsf.Pool
	region  *backing.MappedRegion
}

// NewSliceArena builds an Arena over a freshly allocated, heap-backed pool
// of the given size, guarded for single-goroutine use (NoGuard).
func NewSliceArena(name string, bytes int, logger *zap.Logger) (Arena, error) {
	control, pool, err := tlsf.CreateWithPool(backing.Slice(bytes))
	if err != nil {
		return nil, err
	}
	w := New(name, control, NoGuard{}, logger)
	return &sliceArena{wrapper: w, pool: pool}, nil
}

// NewMmapArena builds an Arena over a freshly mmap'd pool of the given
// size, guarded for single-goroutine use (NoGuard). Dispose unmaps the
// region.
func NewMmapArena(name string, bytes int, logger *zap.Logger) (Arena, error) {
	region, err := backing.Mmap(bytes)
	if err != nil {
		return nil, err
	}
	control, pool, err := tlsf.CreateWithPool(region.Bytes())
	if err != nil {
		_ = region.Close()
		return nil, err
	}
	w := New(name, control, NoGuard{}, logger)
	return &mmapArena{wrapper: w, pool: pool, region: region}, nil
}

func (a *sliceArena) Allocate(size int64) (unsafe.Pointer, error) {
	p := a.wrapper.Malloc(uintptr(size))
	if p == nil {
		return nil, ErrBlockNotFound
	}
	return p, nil
}

func (a *sliceArena) Free(ptr unsafe.Pointer) { a.wrapper.Free(ptr) }
func (a *sliceArena) Dispose()                { a.wrapper = nil; a.pool = nil }

func (a *sliceArena) UsedSize() int64 {
	return int64(a.pool.UsedSize())
}

func (a *mmapArena) Allocate(size int64) (unsafe.Pointer, error) {
	p := a.wrapper.Malloc(uintptr(size))
	if p == nil {
		return nil, ErrBlockNotFound
	}
	return p, nil
}

func (a *mmapArena) Free(ptr unsafe.Pointer) { a.wrapper.Free(ptr) }

func (a *mmapArena) Dispose() {
	_ = a.region.Close()
	a.wrapper = nil
	a.pool = nil
}

func (a *mmapArena) UsedSize() int64 {
	return int64(a.pool.UsedSize())
}

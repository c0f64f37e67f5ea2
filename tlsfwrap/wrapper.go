package tlsfwrap

import (
	"math/bits"
	"unsafe"

	"go.uber.org/zap"

	"github.com/embedmem/tlsf/tlsf"
)

// Wrapper pairs a *tlsf.Control with an InterruptGuard, giving it the
// malloc/calloc/memalign/realloc/free surface of the embedded tlsf-malloc.c
// wrapper it mirrors. Prefix is used purely for logging: it plays the role
// the source's name-prefix macro (e.g. TLSF_MALLOC_NAME) played in
// generating distinctly named C functions for multiple allocator instances
// linked into one binary, which Go's method dispatch makes unnecessary for
// anything but a log label.
type Wrapper struct {
	Prefix  string
	Control *tlsf.Control
	Guard   InterruptGuard
	Logger  *zap.Logger
}

// New builds a Wrapper around an existing Control. If guard is nil, NoGuard
// is used. If logger is nil, a no-op logger is used.
func New(prefix string, control *tlsf.Control, guard InterruptGuard, logger *zap.Logger) *Wrapper {
	if guard == nil {
		guard = NoGuard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Wrapper{Prefix: prefix, Control: control, Guard: guard, Logger: logger}
}

// Malloc allocates size bytes, returning nil on failure.
func (w *Wrapper) Malloc(size uintptr) unsafe.Pointer {
	tok := w.Guard.Disable()
	p := w.Control.Malloc(size)
	w.Guard.Restore(tok)

	if p == nil {
		w.Logger.Debug("malloc failed", zap.String("allocator", w.Prefix), zap.Uint64("size", uint64(size)))
	}
	return p
}

// Calloc allocates count*size bytes and zeros them, returning nil on
// failure or on count*size overflow.
//
// The source this wrapper mirrors does not check count*size for overflow
// before calling through to malloc. That is treated here as a latent bug
// rather than an intentional embedded shortcut: this implementation
// overflow-checks and returns nil rather than silently under-allocating.
func (w *Wrapper) Calloc(count, size uintptr) unsafe.Pointer {
	total, overflow := mulOverflows(count, size)
	if overflow {
		w.Logger.Debug("calloc overflow", zap.String("allocator", w.Prefix),
			zap.Uint64("count", uint64(count)), zap.Uint64("size", uint64(size)))
		return nil
	}

	// The critical section covers only the allocation itself. The source's
	// two known variants disagree on whether memset runs with interrupts
	// masked; a shorter critical section is the better default when
	// interrupt latency is the priority, so the zeroing pass runs outside
	// the guard.
	tok := w.Guard.Disable()
	p := w.Control.Malloc(total)
	w.Guard.Restore(tok)

	if p == nil {
		return nil
	}

	zero(p, total)
	return p
}

// Memalign allocates size bytes aligned to align, which must be a power of
// two, returning nil on failure.
func (w *Wrapper) Memalign(align, size uintptr) unsafe.Pointer {
	tok := w.Guard.Disable()
	p := w.Control.Memalign(align, size)
	w.Guard.Restore(tok)

	if p == nil {
		w.Logger.Debug("memalign failed", zap.String("allocator", w.Prefix),
			zap.Uint64("align", uint64(align)), zap.Uint64("size", uint64(size)))
	}
	return p
}

// Realloc resizes the allocation at ptr to size bytes.
func (w *Wrapper) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	tok := w.Guard.Disable()
	defer w.Guard.Restore(tok)
	return w.Control.Realloc(ptr, size)
}

// Free releases ptr.
func (w *Wrapper) Free(ptr unsafe.Pointer) {
	tok := w.Guard.Disable()
	defer w.Guard.Restore(tok)
	w.Control.Free(ptr)
}

// Walk visits every block in pool, taking the same guard Malloc/Free use.
// The source couples its debug walker to a global default_pool set by
// add_pool, which breaks down as soon as more than one pool exists; this
// instead takes the pool explicitly and keeps no default.
func (w *Wrapper) Walk(pool *tlsf.Pool, visit func(ptr unsafe.Pointer, size uintptr, used bool)) {
	tok := w.Guard.Disable()
	defer w.Guard.Restore(tok)
	pool.Walk(visit)
}

// mulOverflows reports whether count*size exceeds the range of uintptr.
func mulOverflows(count, size uintptr) (product uintptr, overflow bool) {
	if count == 0 || size == 0 {
		return 0, false
	}

	hi, lo := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 {
		return 0, true
	}
	return uintptr(lo), false
}

// zero fills n bytes starting at p with zero.
func zero(p unsafe.Pointer, n uintptr) {
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
}

package tlsfwrap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/embedmem/tlsf/backing"
	"github.com/embedmem/tlsf/tlsf"
)

func newWrapper(t *testing.T, n int) (*Wrapper, *tlsf.Pool) {
	t.Helper()

	control, pool, err := tlsf.CreateWithPool(backing.Slice(n))
	require.NoError(t, err)

	w := New("test", control, &MutexGuard{}, zaptest.NewLogger(t))
	return w, pool
}

func TestWrapperMallocFree(t *testing.T) {
	w, _ := newWrapper(t, 4096)

	p := w.Malloc(128)
	require.NotNil(t, p)

	w.Free(p)
}

func TestWrapperCallocZeros(t *testing.T) {
	w, _ := newWrapper(t, 4096)

	p := w.Calloc(16, 8)
	require.NotNil(t, p)

	got := unsafe.Slice((*byte)(p), 128)
	for i, b := range got {
		require.Zerof(t, b, "byte %d not zeroed", i)
	}
}

func TestWrapperCallocOverflow(t *testing.T) {
	w, _ := newWrapper(t, 4096)

	huge := ^uintptr(0) / 2
	p := w.Calloc(huge, huge)
	require.Nil(t, p)
}

func TestWrapperWalk(t *testing.T) {
	w, pool := newWrapper(t, 4096)

	p := w.Malloc(64)
	require.NotNil(t, p)

	var usedSeen bool
	w.Walk(pool, func(_ unsafe.Pointer, _ uintptr, used bool) {
		if used {
			usedSeen = true
		}
	})
	require.True(t, usedSeen)
}

func TestWrapperRealloc(t *testing.T) {
	w, _ := newWrapper(t, 4096)

	p := w.Malloc(32)
	require.NotNil(t, p)

	q := w.Realloc(p, 64)
	require.NotNil(t, q)
}

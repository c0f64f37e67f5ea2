package tlsf

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func newTestControl(t *testing.T, n int) (*Control, *Pool) {
	t.Helper()
	c, pool, err := CreateWithPool(newPoolMem(n))
	require.NoError(t, err)
	return c, pool
}

func TestMallocBasic(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	p := c.Malloc(64)
	require.NotNil(t, p)
	require.GreaterOrEqual(t, BlockSize(p), uintptr(64))
	require.Zero(t, uintptr(p)&(alignSize-1))
}

func TestMallocZeroReturnsNil(t *testing.T) {
	c, _ := newTestControl(t, 4096)
	require.Nil(t, c.Malloc(0))
}

func TestMallocExhaustion(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	var ptrs []unsafe.Pointer
	for {
		p := c.Malloc(64)
		if p == nil {
			break
		}
		ptrs = append(ptrs, p)
	}
	require.NotEmpty(t, ptrs)
	require.Nil(t, c.Malloc(64))
}

// FillThenDrain: allocate until failure, free in reverse order, then
// re-allocate the same count successfully.
func TestFillThenDrain(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	var ptrs []unsafe.Pointer
	for {
		p := c.Malloc(16)
		if p == nil {
			break
		}
		ptrs = append(ptrs, p)
	}
	n := len(ptrs)
	require.NotZero(t, n)

	for i := n - 1; i >= 0; i-- {
		c.Free(ptrs[i])
	}

	var second []unsafe.Pointer
	for {
		p := c.Malloc(16)
		if p == nil {
			break
		}
		second = append(second, p)
	}
	require.Equal(t, n, len(second))
}

// CoalescePrev: a = malloc(64); b = malloc(64); free(a); free(b) leaves
// exactly one free block of size >= 128 + header_overhead where a and b
// resided.
func TestCoalescePrevAndNext(t *testing.T) {
	c, pool := newTestControl(t, 4096)

	before := pool.FreeSize()

	a := c.Malloc(64)
	b := c.Malloc(64)
	require.NotNil(t, a)
	require.NotNil(t, b)

	c.Free(a)
	c.Free(b)

	require.Equal(t, before, pool.FreeSize())

	// With a and b adjacent and both now free, there is exactly one free
	// block covering both, not two.
	freeBlocks := 0
	pool.Walk(func(_ unsafe.Pointer, _ uintptr, used bool) {
		if !used {
			freeBlocks++
		}
	})
	require.Equal(t, 1, freeBlocks)
}

// Coalesce-next then realloc-grow-in-place: a = malloc(64); b = malloc(64);
// free(b); q = realloc(a, 100) grows a in place (q == a), no copy occurs.
func TestReallocGrowInPlace(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	a := c.Malloc(64)
	b := c.Malloc(64)
	require.NotNil(t, a)
	require.NotNil(t, b)

	(*(*byte)(a)) = 0xAB

	c.Free(b)

	q := c.Realloc(a, 100)
	require.Equal(t, a, q)
	require.Equal(t, byte(0xAB), *(*byte)(q))
}

// Realloc-copy: a, b, c all allocated; free(b); realloc(a, 200) cannot grow
// in place (the only free neighbor is too small/far), so it moves.
func TestReallocCopy(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	a := c.Malloc(64)
	b := c.Malloc(64)
	cc := c.Malloc(64)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, cc)

	original := unsafe.Slice((*byte)(a), 64)
	for i := range original {
		original[i] = byte(i)
	}
	want := append([]byte(nil), original...)

	c.Free(b)

	q := c.Realloc(a, 200)
	require.NotEqual(t, a, q)

	got := unsafe.Slice((*byte)(q), 64)
	require.Equal(t, want, got)
}

func TestReallocNilIsMalloc(t *testing.T) {
	c, _ := newTestControl(t, 4096)
	p := c.Realloc(nil, 32)
	require.NotNil(t, p)
}

func TestReallocZeroIsFree(t *testing.T) {
	c, _ := newTestControl(t, 4096)
	p := c.Malloc(32)
	require.NotNil(t, p)
	require.Nil(t, c.Realloc(p, 0))
}

func TestFreeNilIsNoop(t *testing.T) {
	c, _ := newTestControl(t, 4096)
	c.Free(nil)
}

// memalign gap release: memalign(256, 32) from a fresh pool returns a
// 256-aligned pointer; walking the pool shows a free leading block covering
// the gap, a used block of 32, and trailing free space.
func TestMemalignGapRelease(t *testing.T) {
	c, pool := newTestControl(t, 4096)

	p := c.Memalign(256, 32)
	require.NotNil(t, p)
	require.Zero(t, uintptr(p)%256)

	var seen []bool
	pool.Walk(func(_ unsafe.Pointer, _ uintptr, used bool) {
		seen = append(seen, used)
	})
	require.True(t, len(seen) >= 2)
	require.Contains(t, seen, true)
}

func TestMemalignSmallAlignMatchesMalloc(t *testing.T) {
	c, _ := newTestControl(t, 4096)
	p := c.Memalign(alignSize, 32)
	require.NotNil(t, p)
	require.GreaterOrEqual(t, BlockSize(p), uintptr(32))
}

func TestFreeRestoresPriorState(t *testing.T) {
	c, pool := newTestControl(t, 4096)

	before := pool.FreeSize()
	p := c.Malloc(128)
	require.NotNil(t, p)
	c.Free(p)

	require.Equal(t, before, pool.FreeSize())
}

func TestReallocIdentity(t *testing.T) {
	c, _ := newTestControl(t, 4096)

	p := c.Malloc(64)
	require.NotNil(t, p)

	size := BlockSize(p)
	q := c.Realloc(p, size)
	require.Equal(t, p, q)
}

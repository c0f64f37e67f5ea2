package main

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/embedmem/tlsf/backing"
	"github.com/embedmem/tlsf/tlsf"
	"github.com/embedmem/tlsf/tlsfwrap"
)

// workloadOps is the number of malloc/free steps run before the pool is
// dumped. Fixed rather than flag-configurable: the point of the workload is
// to exercise split/merge/trim across a representative mix of sizes, not to
// stress-test throughput.
const workloadOps = 500

// allocation records a live pointer and the size it was requested with. The
// workload does not read or write the allocated memory.
type allocation struct {
	ptr  unsafe.Pointer
	size uintptr
}

func runWorkload(cmd *cobra.Command, cfg config) error {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	mem, closeMem, err := backingMemory(cfg, logger)
	if err != nil {
		return fmt.Errorf("tlsfctl: allocating backing memory: %w", err)
	}
	defer closeMem()

	control, pool, err := tlsf.CreateWithPool(mem)
	if err != nil {
		return fmt.Errorf("tlsfctl: creating pool: %w", err)
	}

	w := tlsfwrap.New("tlsfctl", control, &tlsfwrap.MutexGuard{}, logger)
	rng := rand.New(rand.NewSource(cfg.Seed))

	var live []allocation
	for i := 0; i < workloadOps; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			w.Free(live[idx].ptr)
			live = append(live[:idx], live[idx+1:]...)
			continue
		}

		size := uintptr(8 + rng.Intn(512))
		var p unsafe.Pointer
		if cfg.Align > 8 {
			p = w.Memalign(uintptr(cfg.Align), size)
		} else {
			p = w.Malloc(size)
		}
		if p == nil {
			continue
		}
		live = append(live, allocation{ptr: p, size: size})
	}

	logger.Info("workload complete",
		zap.Int("live_allocations", len(live)),
		zap.Uint64("used_bytes", uint64(pool.UsedSize())),
		zap.Uint64("free_bytes", uint64(pool.FreeSize())),
	)

	return dumpPool(cmd, pool)
}

// backingMemory returns the pool's memory and a function releasing whatever
// resources were used to obtain it, mmap or heap slice alike.
func backingMemory(cfg config, logger *zap.Logger) ([]byte, func(), error) {
	if cfg.Mmap {
		region, err := backing.Mmap(int(cfg.PoolBytes))
		if err != nil {
			return nil, nil, err
		}
		return region.Bytes(), func() {
			if err := region.Close(); err != nil {
				logger.Warn("closing mmap region", zap.Error(err))
			}
		}, nil
	}

	return backing.Slice(int(cfg.PoolBytes)), func() {}, nil
}

func dumpPool(cmd *cobra.Command, pool *tlsf.Pool) error {
	out := cmd.OutOrStdout()

	var blockIndex int
	var walkErr error
	pool.Walk(func(ptr unsafe.Pointer, size uintptr, used bool) {
		if walkErr != nil {
			return
		}
		state := "free"
		if used {
			state = "used"
		}
		if _, err := fmt.Fprintf(out, "block %d: %s size=%d ptr=%p\n", blockIndex, state, size, ptr); err != nil {
			walkErr = err
		}
		blockIndex++
	})
	return walkErr
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// config holds the resolved --pool-bytes/--align/--seed/--mmap values,
// bound from cobra flags through viper. Only the flags are consulted: the
// viper instance sets a TLSFCTL environment prefix but does not enable
// environment lookup, and no config file is read.
type config struct {
	PoolBytes int64
	Align     int64
	Seed      int64
	Mmap      bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "tlsfctl",
		Short:         "Drive a workload against the tlsf allocator and print pool state",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkload(cmd, bindConfig(v))
		},
	}

	flags := root.Flags()
	flags.Int64("pool-bytes", 1<<20, "size in bytes of the pool backing the allocator")
	flags.Int64("align", 8, "required alignment, in bytes, of pointers handed out by memalign allocations")
	flags.Int64("seed", 1, "seed for the pseudo-random workload generator")
	flags.Bool("mmap", false, "back the pool with an anonymous mmap region instead of a heap slice")

	v.SetEnvPrefix("TLSFCTL")
	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("tlsfctl: binding flags: %v", err))
	}

	return root
}

func bindConfig(v *viper.Viper) config {
	return config{
		PoolBytes: v.GetInt64("pool-bytes"),
		Align:     v.GetInt64("align"),
		Seed:      v.GetInt64("seed"),
		Mmap:      v.GetBool("mmap"),
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

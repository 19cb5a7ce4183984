package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/goscd/core/simd"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scd",
		Short: "Minibatched stochastic coordinate descent for linear regression",
		Long: `scd trains a least-squares linear model by minibatched coordinate descent
on a dense float32 feature matrix. Three trainers share one update rule:

  scalar    reference implementation
  vector    8-lane kernels on one goroutine
  parallel  coordinates partitioned over pinned, barrier-synchronized workers`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scd v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Print CPU and SIMD capabilities",
		Run: func(cmd *cobra.Command, args []string) {
			info := simd.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cpu:            %s\n", info.Brand)
			fmt.Fprintf(out, "arch:           %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "logical cores:  %d\n", info.LogicalCores)
			fmt.Fprintf(out, "physical cores: %d\n", info.PhysicalCores)
			fmt.Fprintf(out, "AVX2+FMA:       %t\n", info.AVX2FMA)
			fmt.Fprintf(out, "AVX-512:        %t\n", info.AVX512)
			fmt.Fprintf(out, "NEON:           %t\n", info.NEON)
			fmt.Fprintf(out, "accelerated:    %t\n", info.Accelerated)
			fmt.Fprintf(out, "lanes:          %d\n", simd.Lanes)
		},
	})

	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newGenerateCmd())
	return rootCmd
}

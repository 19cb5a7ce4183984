package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/goscd/config"
	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/datasets"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset",
		Long: `Generate a seeded synthetic dataset and write it in raw (default) or
libsvm format. The same seed always produces the same file.`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	addDatasetFlags(cmd.Flags())
	cmd.Flags().String("out", "", "Output path (default stdout)")
	cmd.Flags().String("out-format", config.FormatRaw, "Output format: raw, libsvm")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	applyDatasetFlags(cmd.Flags(), cfg)
	cfg.Dataset.Format = config.FormatSynthetic
	if err := cfg.Validate(); err != nil {
		return err
	}

	outFormat, _ := cmd.Flags().GetString("out-format")
	write := datasets.WriteRaw
	switch outFormat {
	case config.FormatRaw:
	case config.FormatLibSVM:
		write = func(w io.Writer, ds *dataset.Dataset) error {
			return datasets.WriteLibSVM(w, ds, false)
		}
	default:
		return errors.NewValidationError("out-format", "must be raw or libsvm", outFormat)
	}

	dc := cfg.Dataset
	ds, err := datasets.GenerateSynthetic(dc.Samples, dc.Features, dc.Binary, dc.Seed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	path, _ := cmd.Flags().GetString("out")
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.NewResourceError("generate", "output file "+path, err)
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if err := write(bw, ds); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d samples x %d features to %s\n", ds.NumSamples(), ds.NumFeatures(), path)
		return f.Close()
	}
	return write(out, ds)
}

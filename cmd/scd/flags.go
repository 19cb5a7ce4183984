package main

import (
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/goscd/config"
)

// addDatasetFlags registers the dataset flags shared by train and generate.
func addDatasetFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("format", def.Dataset.Format, "Dataset format: libsvm, raw, synthetic")
	fs.String("data", "", "Dataset path (libsvm and raw formats)")
	fs.Int("samples", def.Dataset.Samples, "Number of samples to read or generate")
	fs.Int("features", def.Dataset.Features, "Number of features (libsvm: without the bias column)")
	fs.Bool("binary", def.Dataset.Binary, "Generate binary labels (synthetic format)")
	fs.Uint64("seed", def.Dataset.Seed, "Random seed (synthetic format)")
}

// applyDatasetFlags copies explicitly set dataset flags into cfg.
func applyDatasetFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("format") {
		cfg.Dataset.Format, _ = fs.GetString("format")
	}
	if fs.Changed("data") {
		cfg.Dataset.Path, _ = fs.GetString("data")
	}
	if fs.Changed("samples") {
		cfg.Dataset.Samples, _ = fs.GetInt("samples")
	}
	if fs.Changed("features") {
		cfg.Dataset.Features, _ = fs.GetInt("features")
	}
	if fs.Changed("binary") {
		cfg.Dataset.Binary, _ = fs.GetBool("binary")
	}
	if fs.Changed("seed") {
		cfg.Dataset.Seed, _ = fs.GetUint64("seed")
	}
}

// addTrainFlags registers the training flags.
func addTrainFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("config", "", "YAML configuration file; flags override its values")
	fs.String("trainer", def.Train.Trainer, "Trainer: scalar, vector, parallel")
	fs.Int("epochs", def.Train.Epochs, "Number of epochs")
	fs.Int("minibatch", def.Train.MinibatchSize, "Minibatch size (vector and parallel: multiple of 8)")
	fs.Float32("step", def.Train.StepSize, "Step size")
	fs.Int("step-shift", def.Train.StepSizeShift, "Use a step size of 2^-N instead of --step (0 = off)")
	fs.Int("workers", def.Train.Workers, "Parallel trainer worker count")
	fs.Bool("pin", def.Train.Pin, "Pin parallel workers to CPUs")
	fs.Bool("history", def.Train.RecordHistory, "Record per-epoch weights instead of per-epoch loss")
	fs.Bool("reference", def.Train.Reference, "Also solve least squares in closed form and report the gap")
	fs.Bool("normalize", def.Normalize.Features, "Min-max normalize features and labels")
	fs.String("axis", def.Normalize.Axis, "Feature normalization axis: column, row")
	fs.Bool("to-minus1", def.Normalize.FeaturesToMinus1, "Normalize to [-1,1] instead of [0,1]")
	fs.String("plot", def.Report.Plot, "Write the loss curve to this file (png, svg, pdf)")
	fs.String("metrics-addr", def.Report.MetricsAddr, "Serve Prometheus metrics on this address during training")
	fs.String("log-level", def.Log.Level, "Log level: debug, info, warn, error")
	fs.String("log-format", def.Log.Format, "Log format: console, json")
}

// applyTrainFlags copies explicitly set training flags into cfg.
func applyTrainFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("trainer") {
		cfg.Train.Trainer, _ = fs.GetString("trainer")
	}
	if fs.Changed("epochs") {
		cfg.Train.Epochs, _ = fs.GetInt("epochs")
	}
	if fs.Changed("minibatch") {
		cfg.Train.MinibatchSize, _ = fs.GetInt("minibatch")
	}
	if fs.Changed("step") {
		cfg.Train.StepSize, _ = fs.GetFloat32("step")
		cfg.Train.StepSizeShift = 0
	}
	if fs.Changed("step-shift") {
		cfg.Train.StepSizeShift, _ = fs.GetInt("step-shift")
	}
	if fs.Changed("workers") {
		cfg.Train.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("pin") {
		cfg.Train.Pin, _ = fs.GetBool("pin")
	}
	if fs.Changed("history") {
		cfg.Train.RecordHistory, _ = fs.GetBool("history")
	}
	if fs.Changed("reference") {
		cfg.Train.Reference, _ = fs.GetBool("reference")
	}
	if fs.Changed("normalize") {
		n, _ := fs.GetBool("normalize")
		cfg.Normalize.Features = n
		cfg.Normalize.Labels = n
	}
	if fs.Changed("axis") {
		cfg.Normalize.Axis, _ = fs.GetString("axis")
	}
	if fs.Changed("to-minus1") {
		v, _ := fs.GetBool("to-minus1")
		cfg.Normalize.FeaturesToMinus1 = v
		cfg.Normalize.LabelsToMinus1 = v
	}
	if fs.Changed("plot") {
		cfg.Report.Plot, _ = fs.GetString("plot")
	}
	if fs.Changed("metrics-addr") {
		cfg.Report.MetricsAddr, _ = fs.GetString("metrics-addr")
	}
	if fs.Changed("log-level") {
		cfg.Log.Level, _ = fs.GetString("log-level")
	}
	if fs.Changed("log-format") {
		cfg.Log.Format, _ = fs.GetString("log-format")
	}
}

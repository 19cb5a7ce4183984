// Package config loads training run configuration.
//
// Precedence, lowest first:
//  1. Built-in defaults (Default)
//  2. YAML file (Load)
//  3. Command-line flags, applied by cmd/scd
//
// Unknown YAML keys are rejected so a typo cannot silently fall back to a
// default.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/goscd/datasets"
	"github.com/YuminosukeSato/goscd/linear"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/pkg/log"
	"github.com/YuminosukeSato/goscd/preprocessing"
)

// Dataset formats.
const (
	FormatLibSVM    = "libsvm"
	FormatRaw       = "raw"
	FormatSynthetic = "synthetic"
)

// Config is a complete run configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Train     TrainConfig     `yaml:"train"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
}

// DatasetConfig selects the training data.
type DatasetConfig struct {
	Format   string `yaml:"format"`
	Path     string `yaml:"path"`
	Samples  int    `yaml:"samples"`
	Features int    `yaml:"features"`
	// Binary and Seed apply to the synthetic format only.
	Binary bool   `yaml:"binary"`
	Seed   uint64 `yaml:"seed"`
}

// NormalizeConfig selects the preprocessing applied before training.
type NormalizeConfig struct {
	Features         bool    `yaml:"features"`
	FeaturesToMinus1 bool    `yaml:"features_to_minus1"`
	Axis             string  `yaml:"axis"`
	Labels           bool    `yaml:"labels"`
	LabelsToMinus1   bool    `yaml:"labels_to_minus1"`
	Binarize         bool    `yaml:"binarize"`
	BinarizeTarget   float32 `yaml:"binarize_target"`
}

// TrainConfig holds the trainer and its parameters.
type TrainConfig struct {
	Trainer       string  `yaml:"trainer"`
	Epochs        int     `yaml:"epochs"`
	MinibatchSize int     `yaml:"minibatch_size"`
	StepSize      float32 `yaml:"step_size"`
	// StepSizeShift, when positive, overrides StepSize with 2^-StepSizeShift.
	StepSizeShift int  `yaml:"step_size_shift"`
	Workers       int  `yaml:"workers"`
	Pin           bool `yaml:"pin"`
	RecordHistory bool `yaml:"record_history"`
	Reference     bool `yaml:"reference"`
}

// ReportConfig selects the reporting sinks in addition to logging.
type ReportConfig struct {
	Plot        string `yaml:"plot"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig configures pkg/log.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration: a synthetic dataset trained
// with the vector trainer on normalized features and labels.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Format:   FormatSynthetic,
			Samples:  4096,
			Features: 32,
			Seed:     datasets.DefaultSeed,
		},
		Normalize: NormalizeConfig{
			Features: true,
			Axis:     preprocessing.ColumnWise.String(),
			Labels:   true,
		},
		Train: TrainConfig{
			Trainer:       linear.KindVector,
			Epochs:        10,
			MinibatchSize: 256,
			StepSize:      1e-4,
			Workers:       linear.DefaultWorkers,
			Pin:           true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: log.FormatConsole,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputError(path, 0, "read config", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewInputError(path, 0, "parse config", err)
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults and validates the result.
// An empty document yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid or inconsistent values.
// Trainer-specific preconditions such as the minibatch alignment are left
// to the trainers, which check them against the loaded dataset.
func (c *Config) Validate() error {
	switch c.Dataset.Format {
	case FormatLibSVM, FormatRaw:
		if c.Dataset.Path == "" {
			return errors.NewValidationError("dataset.path", "required for format "+c.Dataset.Format, c.Dataset.Path)
		}
	case FormatSynthetic:
	default:
		return errors.NewValidationError("dataset.format",
			fmt.Sprintf("must be one of %s, %s, %s", FormatLibSVM, FormatRaw, FormatSynthetic), c.Dataset.Format)
	}
	if c.Dataset.Samples <= 0 {
		return errors.NewValidationError("dataset.samples", "must be positive", c.Dataset.Samples)
	}
	if c.Dataset.Features <= 0 {
		return errors.NewValidationError("dataset.features", "must be positive", c.Dataset.Features)
	}

	if _, err := preprocessing.ParseAxis(c.Normalize.Axis); err != nil {
		return err
	}

	if !isKind(c.Train.Trainer) {
		return errors.NewValidationError("train.trainer", "must be one of "+strings.Join(linear.Kinds(), ", "), c.Train.Trainer)
	}
	if c.Train.Epochs < 1 {
		return errors.NewValidationError("train.epochs", "must be at least 1", c.Train.Epochs)
	}
	if c.Train.MinibatchSize <= 0 {
		return errors.NewValidationError("train.minibatch_size", "must be positive", c.Train.MinibatchSize)
	}
	if c.Train.StepSizeShift < 0 || c.Train.StepSizeShift > 62 {
		return errors.NewValidationError("train.step_size_shift", "must be in [0, 62]", c.Train.StepSizeShift)
	}
	if c.Train.StepSizeShift == 0 && !(c.Train.StepSize > 0) {
		return errors.NewValidationError("train.step_size", "must be positive", c.Train.StepSize)
	}
	if c.Train.Workers < 1 {
		return errors.NewValidationError("train.workers", "must be at least 1", c.Train.Workers)
	}

	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error(), c.Log.Level)
	}
	if c.Log.Format != log.FormatJSON && c.Log.Format != log.FormatConsole {
		return errors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	return nil
}

func isKind(kind string) bool {
	for _, k := range linear.Kinds() {
		if strings.EqualFold(k, kind) {
			return true
		}
	}
	return false
}

// Params returns the training parameters.
func (c *Config) Params() linear.Params {
	step := c.Train.StepSize
	if c.Train.StepSizeShift > 0 {
		step = 1 / float32(uint64(1)<<c.Train.StepSizeShift)
	}
	return linear.Params{
		Epochs:        c.Train.Epochs,
		MinibatchSize: c.Train.MinibatchSize,
		StepSize:      step,
	}
}

// NormalizeOptions returns the preprocessing options.
func (c *Config) NormalizeOptions() preprocessing.Options {
	axis, _ := preprocessing.ParseAxis(c.Normalize.Axis)
	return preprocessing.Options{
		Features:         c.Normalize.Features,
		FeaturesToMinus1: c.Normalize.FeaturesToMinus1,
		Axis:             axis,
		Labels:           c.Normalize.Labels,
		LabelsToMinus1:   c.Normalize.LabelsToMinus1,
		Binarize:         c.Normalize.Binarize,
		BinarizeTarget:   c.Normalize.BinarizeTarget,
	}
}

// TrainerOptions returns the trainer options derived from the configuration.
func (c *Config) TrainerOptions() []linear.Option {
	return []linear.Option{
		linear.WithWorkers(c.Train.Workers),
		linear.WithPinning(c.Train.Pin),
	}
}

// String renders the configuration as YAML.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/preprocessing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "vector", cfg.Train.Trainer)
	assert.Equal(t, 14, cfg.Train.Workers)
	assert.True(t, cfg.Train.Pin)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
dataset:
  format: libsvm
  path: /data/train.svm
  samples: 1000
  features: 20
normalize:
  axis: row
  features_to_minus1: true
train:
  trainer: parallel
  epochs: 5
  minibatch_size: 64
  step_size_shift: 10
  workers: 4
  pin: false
report:
  plot: loss.svg
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, FormatLibSVM, cfg.Dataset.Format)
	assert.Equal(t, 1000, cfg.Dataset.Samples)
	assert.True(t, cfg.Normalize.Labels, "unset keys keep their defaults")
	assert.Equal(t, "loss.svg", cfg.Report.Plot)

	p := cfg.Params()
	assert.Equal(t, 5, p.Epochs)
	assert.Equal(t, 64, p.MinibatchSize)
	assert.Equal(t, float32(1.0/1024), p.StepSize)

	opts := cfg.NormalizeOptions()
	assert.Equal(t, preprocessing.RowWise, opts.Axis)
	assert.True(t, opts.FeaturesToMinus1)
	assert.Len(t, cfg.TrainerOptions(), 2)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("train:\n  epoch: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "epoch")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		param  string
	}{
		{"unknown format", func(c *Config) { c.Dataset.Format = "csv" }, "dataset.format"},
		{"missing path", func(c *Config) { c.Dataset.Format = FormatRaw }, "dataset.path"},
		{"zero samples", func(c *Config) { c.Dataset.Samples = 0 }, "dataset.samples"},
		{"zero features", func(c *Config) { c.Dataset.Features = 0 }, "dataset.features"},
		{"bad axis", func(c *Config) { c.Normalize.Axis = "diagonal" }, "normalization axis"},
		{"bad trainer", func(c *Config) { c.Train.Trainer = "gpu" }, "train.trainer"},
		{"zero epochs", func(c *Config) { c.Train.Epochs = 0 }, "train.epochs"},
		{"zero minibatch", func(c *Config) { c.Train.MinibatchSize = 0 }, "train.minibatch_size"},
		{"negative step", func(c *Config) { c.Train.StepSize = -1 }, "train.step_size"},
		{"shift too large", func(c *Config) { c.Train.StepSizeShift = 70 }, "train.step_size_shift"},
		{"zero workers", func(c *Config) { c.Train.Workers = 0 }, "train.workers"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("train:\n  epochs: 3\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Train.Epochs)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	var ie *errors.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "read config", ie.Reason)

	require.NoError(t, os.WriteFile(path, []byte("train: [\n"), 0o600))
	_, err = Load(path)
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "parse config", ie.Reason)
}

func TestString(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "minibatch_size: 256")
	assert.Contains(t, s, "trainer: vector")
}

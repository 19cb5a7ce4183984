package linear

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/datasets"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/pkg/log"
	"github.com/YuminosukeSato/goscd/report"
)

// recordingSink keeps everything a run reports.
type recordingSink struct {
	mu      sync.Mutex
	starts  []report.RunInfo
	epochs  []report.EpochReport
	summary []report.Summary
	onEpoch func(report.EpochReport)
}

func (s *recordingSink) Start(info report.RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, info)
}

func (s *recordingSink) Epoch(r report.EpochReport) {
	s.mu.Lock()
	s.epochs = append(s.epochs, r)
	hook := s.onEpoch
	s.mu.Unlock()
	if hook != nil {
		hook(r)
	}
}

func (s *recordingSink) Finish(sum report.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = append(s.summary, sum)
}

func (s *recordingSink) losses() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float32, 0, len(s.epochs))
	for _, e := range s.epochs {
		out = append(out, e.Loss)
	}
	return out
}

// captureWarnings collects everything passed to errors.Warn during the test.
func captureWarnings(t *testing.T) func() []error {
	t.Helper()
	var mu sync.Mutex
	var warnings []error
	errors.SetZerologWarnFunc(nil)
	errors.SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, w)
	})
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })
	return func() []error {
		mu.Lock()
		defer mu.Unlock()
		out := warnings
		warnings = nil
		return out
	}
}

func quietOptions(sink report.Sink) []Option {
	logger, _ := log.NewTestLogger(log.LevelWarn)
	return []Option{WithSink(sink), WithLogger(logger)}
}

// allTrainers returns one trainer per variant; the parallel one is unpinned.
func allTrainers(sink report.Sink, workers int) []Trainer {
	opts := quietOptions(sink)
	return []Trainer{
		NewScalarTrainer(opts...),
		NewVectorTrainer(opts...),
		NewParallelTrainer(append(opts, WithWorkers(workers), WithPinning(false))...),
	}
}

// bias column of ones plus the feature 1..4; labels equal the feature.
func scenarioDataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromColumns(
		[][]float32{{1, 1, 1, 1}, {1, 2, 3, 4}},
		[]float32{1, 2, 3, 4},
	)
	require.NoError(t, err)
	return ds
}

func syntheticDataset(t testing.TB, samples, features int) *dataset.Dataset {
	t.Helper()
	ds, err := datasets.GenerateSynthetic(samples, features, false, datasets.DefaultSeed)
	require.NoError(t, err)
	return ds
}

func requireClose(t *testing.T, want, got []float32, rel float64, msgAndArgs ...interface{}) {
	t.Helper()
	require.Len(t, got, len(want), msgAndArgs...)
	for i := range want {
		tol := rel * math.Max(1, math.Abs(float64(want[i])))
		require.InDelta(t, want[i], got[i], tol, msgAndArgs...)
	}
}

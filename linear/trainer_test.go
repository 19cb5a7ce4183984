package linear

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/report"
)

func TestScalarScenarioLossDecreases(t *testing.T) {
	ds := scenarioDataset(t)
	sink := &recordingSink{}
	tr := NewScalarTrainer(quietOptions(sink)...)

	model, err := tr.Train(context.Background(), ds, Params{Epochs: 50, MinibatchSize: 4, StepSize: 1e-3}, nil)
	require.NoError(t, err)
	require.NotNil(t, model)

	require.Len(t, sink.starts, 1)
	initial := sink.starts[0].InitialLoss
	assert.InDelta(t, 3.75, initial, 1e-6)

	losses := sink.losses()
	require.Len(t, losses, 50)
	prev := initial
	for e, l := range losses {
		assert.Less(t, l, prev, "loss did not decrease at epoch %d", e)
		prev = l
	}
	last := losses[len(losses)-1]
	assert.Less(t, last, float32(0.15))
	assert.Less(t, last, 0.05*initial)
	assert.Equal(t, last, model.FinalLoss)
	assert.Equal(t, 50, model.Epochs)
}

func TestVectorTailOnlyMatchesScalar(t *testing.T) {
	// A minibatch larger than the dataset turns the whole epoch into the
	// scalar remainder pass.
	ds := scenarioDataset(t)
	p := Params{Epochs: 10, MinibatchSize: 4, StepSize: 1e-3}

	scalar, err := NewScalarTrainer(quietOptions(report.Discard)...).Train(context.Background(), ds, p, nil)
	require.NoError(t, err)

	p.MinibatchSize = 8
	vector, err := NewVectorTrainer(quietOptions(report.Discard)...).Train(context.Background(), ds, p, nil)
	require.NoError(t, err)
	assert.Equal(t, scalar.Weights, vector.Weights)

	parallelModel, err := NewParallelTrainer(append(quietOptions(report.Discard), WithWorkers(2), WithPinning(false))...).
		Train(context.Background(), ds, p, nil)
	require.NoError(t, err)
	assert.Equal(t, scalar.Weights, parallelModel.Weights)
}

func TestCrossVariantEquivalence(t *testing.T) {
	const (
		samples  = 200
		features = 10
		epochs   = 10
	)
	ds := syntheticDataset(t, samples, features)
	p := Params{Epochs: epochs, MinibatchSize: 64, StepSize: 1e-3}

	histories := make(map[string]History)
	for _, tr := range allTrainers(report.Discard, 3) {
		h := NewHistory(epochs, features)
		model, err := tr.Train(context.Background(), ds, p, h)
		require.NoError(t, err, tr.Name())
		assert.Equal(t, h.Epoch(epochs-1, features), model.Weights, tr.Name())
		histories[tr.Name()] = h
	}

	ref := histories["ScalarTrainer"]
	for _, name := range []string{"VectorTrainer", "ParallelTrainer"} {
		for e := 0; e < epochs; e++ {
			requireClose(t, ref.Epoch(e, features), histories[name].Epoch(e, features), 1e-4,
				"%s epoch %d", name, e)
		}
	}
}

func TestParallelWorkerCounts(t *testing.T) {
	const features = 12
	ds := syntheticDataset(t, 96, features)
	p := Params{Epochs: 5, MinibatchSize: 32, StepSize: 1e-3}

	ref, err := NewScalarTrainer(quietOptions(report.Discard)...).Train(context.Background(), ds, p, nil)
	require.NoError(t, err)

	for _, w := range []int{1, 2, 5, features} {
		tr := NewParallelTrainer(append(quietOptions(report.Discard), WithWorkers(w), WithPinning(false))...)
		model, err := tr.Train(context.Background(), ds, p, nil)
		require.NoError(t, err, "workers=%d", w)
		requireClose(t, ref.Weights, model.Weights, 1e-4, "workers=%d", w)
	}
}

func TestZeroRemainder(t *testing.T) {
	ds := syntheticDataset(t, 128, 6)
	p := Params{Epochs: 3, MinibatchSize: 64, StepSize: 1e-3}
	for _, tr := range allTrainers(report.Discard, 2) {
		model, err := tr.Train(context.Background(), ds, p, nil)
		require.NoError(t, err, tr.Name())
		assert.Len(t, model.Weights, 6)
	}
}

func TestScheduleCoversSamples(t *testing.T) {
	for n := 1; n <= 100; n++ {
		for _, mb := range []int{1, 3, 8, 16, 64, 128} {
			s := newSchedule(n, mb)
			assert.Equal(t, n, s.minibatches*mb+s.rest, "n=%d mb=%d", n, mb)
			lo, hi := s.tail()
			assert.Equal(t, n, hi)
			assert.Equal(t, s.rest, hi-lo)
		}
	}
}

func TestHistoryRecording(t *testing.T) {
	ds := scenarioDataset(t)
	sink := &recordingSink{}
	h := NewHistory(5, 2)
	model, err := NewScalarTrainer(quietOptions(sink)...).
		Train(context.Background(), ds, Params{Epochs: 5, MinibatchSize: 2, StepSize: 1e-3}, h)
	require.NoError(t, err)

	require.Len(t, sink.epochs, 5)
	for e, r := range sink.epochs {
		assert.Equal(t, e, r.Epoch)
		assert.False(t, r.HasLoss, "epoch %d reported a loss while recording history", e)
	}
	assert.True(t, sink.starts[0].RecordsHistory)
	assert.Equal(t, h.Epoch(4, 2), model.Weights)
	assert.NotEqual(t, h.Epoch(0, 2), h.Epoch(4, 2))

	// A longer buffer is accepted and its tail untouched.
	long := make([]float32, 5*2+3)
	long[len(long)-1] = 42
	_, err = NewScalarTrainer(quietOptions(report.Discard)...).
		Train(context.Background(), ds, Params{Epochs: 5, MinibatchSize: 2, StepSize: 1e-3}, long)
	require.NoError(t, err)
	assert.Equal(t, float32(42), long[len(long)-1])
	assert.Equal(t, []float32(h), long[:10])
}

func TestTrainValidation(t *testing.T) {
	ds := scenarioDataset(t)
	released := scenarioDataset(t)
	released.Release()

	tests := []struct {
		name    string
		trainer func(sink report.Sink) Trainer
		ds      *dataset.Dataset
		params  Params
		history []float32
		check   func(t *testing.T, err error)
	}{
		{
			name:    "zero minibatch",
			trainer: func(s report.Sink) Trainer { return NewScalarTrainer(quietOptions(s)...) },
			ds:      ds,
			params:  Params{Epochs: 1, MinibatchSize: 0, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "minibatch size", ve.ParamName)
			},
		},
		{
			name:    "vector minibatch not a multiple of 8",
			trainer: func(s report.Sink) Trainer { return NewVectorTrainer(quietOptions(s)...) },
			ds:      ds,
			params:  Params{Epochs: 1, MinibatchSize: 12, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "minibatch size must be a multiple of 8")
			},
		},
		{
			name: "parallel minibatch not a multiple of 8",
			trainer: func(s report.Sink) Trainer {
				return NewParallelTrainer(append(quietOptions(s), WithWorkers(1))...)
			},
			ds:     ds,
			params: Params{Epochs: 1, MinibatchSize: 4, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "minibatch size must be a multiple of 8")
			},
		},
		{
			name: "more workers than features",
			trainer: func(s report.Sink) Trainer {
				return NewParallelTrainer(append(quietOptions(s), WithWorkers(3))...)
			},
			ds:     ds,
			params: Params{Epochs: 1, MinibatchSize: 8, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "worker count", ve.ParamName)
			},
		},
		{
			name:    "zero epochs",
			trainer: func(s report.Sink) Trainer { return NewScalarTrainer(quietOptions(s)...) },
			ds:      ds,
			params:  Params{Epochs: 0, MinibatchSize: 4, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "number of epochs")
			},
		},
		{
			name:    "NaN step",
			trainer: func(s report.Sink) Trainer { return NewScalarTrainer(quietOptions(s)...) },
			ds:      ds,
			params:  Params{Epochs: 1, MinibatchSize: 4, StepSize: float32(math.NaN())},
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "step size")
			},
		},
		{
			name:    "short history",
			trainer: func(s report.Sink) Trainer { return NewScalarTrainer(quietOptions(s)...) },
			ds:      ds,
			params:  Params{Epochs: 3, MinibatchSize: 4, StepSize: 1e-3},
			history: make([]float32, 5),
			check: func(t *testing.T, err error) {
				var de *errors.DimensionError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, 6, de.Expected)
				assert.Equal(t, 5, de.Got)
			},
		},
		{
			name:    "released dataset",
			trainer: func(s report.Sink) Trainer { return NewVectorTrainer(quietOptions(s)...) },
			ds:      released,
			params:  Params{Epochs: 1, MinibatchSize: 8, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrReleased))
			},
		},
		{
			name:    "nil dataset",
			trainer: func(s report.Sink) Trainer { return NewScalarTrainer(quietOptions(s)...) },
			ds:      nil,
			params:  Params{Epochs: 1, MinibatchSize: 4, StepSize: 1e-3},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			model, err := tt.trainer(sink).Train(context.Background(), tt.ds, tt.params, tt.history)
			require.Error(t, err)
			assert.Nil(t, model)
			assert.Empty(t, sink.starts, "run started despite invalid configuration")
			tt.check(t, err)
		})
	}
}

func TestTrainCancelledBeforeStart(t *testing.T) {
	ds := syntheticDataset(t, 64, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, tr := range allTrainers(report.Discard, 2) {
		model, err := tr.Train(ctx, ds, Params{Epochs: 3, MinibatchSize: 16, StepSize: 1e-3}, nil)
		require.Error(t, err, tr.Name())
		assert.ErrorIs(t, err, context.Canceled, tr.Name())
		assert.Nil(t, model)
	}
}

func TestTrainCancelledMidRun(t *testing.T) {
	ds := syntheticDataset(t, 64, 4)
	p := Params{Epochs: 20, MinibatchSize: 16, StepSize: 1e-3}

	for _, kind := range Kinds() {
		t.Run(kind, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sink := &recordingSink{onEpoch: func(r report.EpochReport) {
				if r.Epoch == 2 {
					cancel()
				}
			}}
			tr, err := NewTrainer(kind, append(quietOptions(sink), WithWorkers(2), WithPinning(false))...)
			require.NoError(t, err)

			model, err := tr.Train(ctx, ds, p, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, model)

			require.Len(t, sink.summary, 1)
			assert.Equal(t, 3, sink.summary[0].Epochs)
			assert.Error(t, sink.summary[0].Err)
		})
	}
}

func TestParallelPinned(t *testing.T) {
	ds := syntheticDataset(t, 64, 4)
	p := Params{Epochs: 2, MinibatchSize: 16, StepSize: 1e-3}
	tr := NewParallelTrainer(append(quietOptions(report.Discard), WithWorkers(2), WithPinning(true))...)

	model, err := tr.Train(context.Background(), ds, p, nil)
	var re *errors.ResourceError
	if errors.As(err, &re) {
		t.Skipf("thread pinning unavailable: %v", err)
	}
	require.NoError(t, err)

	ref, err := NewScalarTrainer(quietOptions(report.Discard)...).Train(context.Background(), ds, p, nil)
	require.NoError(t, err)
	requireClose(t, ref.Weights, model.Weights, 1e-4)
}

func TestNewTrainer(t *testing.T) {
	for kind, name := range map[string]string{
		"scalar":   "ScalarTrainer",
		"Vector":   "VectorTrainer",
		"PARALLEL": "ParallelTrainer",
	} {
		tr, err := NewTrainer(kind)
		require.NoError(t, err)
		assert.Equal(t, name, tr.Name())
	}

	_, err := NewTrainer("gpu")
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "trainer", ve.ParamName)

	assert.Equal(t, DefaultWorkers, NewParallelTrainer().Workers())
}

func TestDivergentRunWarns(t *testing.T) {
	warnings := captureWarnings(t)

	ds := scenarioDataset(t)
	p := Params{Epochs: 4, MinibatchSize: 8, StepSize: 1e30}
	for _, tr := range allTrainers(report.Discard, 1) {
		t.Run(tr.Name(), func(t *testing.T) {
			warnings()

			model, err := tr.Train(context.Background(), ds, p, nil)
			require.NoError(t, err)
			assert.True(t, math.IsInf(float64(model.FinalLoss), 0) || math.IsNaN(float64(model.FinalLoss)))

			got := warnings()
			require.Len(t, got, p.Epochs+1)
			for _, w := range got {
				var ni *errors.NumericalInstabilityError
				assert.True(t, errors.As(w, &ni), "%v", w)
			}
			assert.Contains(t, got[0].Error(), "loss")
			assert.Contains(t, got[p.Epochs].Error(), "weights")
		})
	}
}

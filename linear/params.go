package linear

import (
	"math"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/core/simd"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// Params are the per-run training parameters shared by every trainer.
type Params struct {
	Epochs        int
	MinibatchSize int
	StepSize      float32
}

// schedule splits the samples into full minibatches and a remainder.
type schedule struct {
	minibatches int
	size        int
	rest        int
}

// bounds returns the sample range of minibatch m.
func (s schedule) bounds(m int) (lo, hi int) {
	return m * s.size, (m + 1) * s.size
}

// tail returns the remainder range. It is empty when rest is zero.
func (s schedule) tail() (lo, hi int) {
	lo = s.minibatches * s.size
	return lo, lo + s.rest
}

func newSchedule(numSamples, minibatchSize int) schedule {
	return schedule{
		minibatches: numSamples / minibatchSize,
		size:        minibatchSize,
		rest:        numSamples % minibatchSize,
	}
}

// validate checks everything that can be checked before a run allocates.
func (p Params) validate(ds *dataset.Dataset, history []float32, lanes bool) (schedule, error) {
	if err := ds.Validate("linear.Train"); err != nil {
		return schedule{}, err
	}
	if p.Epochs < 1 {
		return schedule{}, errors.NewValidationError("number of epochs", "must be at least 1", p.Epochs)
	}
	if p.MinibatchSize <= 0 {
		return schedule{}, errors.NewValidationError("minibatch size", "must be positive", p.MinibatchSize)
	}
	if lanes && !simd.IsMultiple(p.MinibatchSize) {
		return schedule{}, errors.NewValidationError("minibatch size", "minibatch size must be a multiple of 8", p.MinibatchSize)
	}
	step := float64(p.StepSize)
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return schedule{}, errors.NewValidationError("step size", "must be a positive finite number", p.StepSize)
	}
	if history != nil {
		if need := p.Epochs * ds.NumFeatures(); len(history) < need {
			return schedule{}, errors.NewDimensionError("linear.Train history", need, len(history), 1)
		}
	}
	return newSchedule(ds.NumSamples(), p.MinibatchSize), nil
}

// History is a weight-history buffer with one snapshot per epoch.
type History []float32

// NewHistory allocates a history buffer for epochs snapshots of features weights.
func NewHistory(epochs, features int) History {
	return make(History, epochs*features)
}

// Epoch returns the snapshot recorded at the end of epoch e.
func (h History) Epoch(e, features int) []float32 {
	return h[e*features : (e+1)*features : (e+1)*features]
}

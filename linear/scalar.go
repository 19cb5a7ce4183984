package linear

import (
	"context"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// ScalarTrainer is the reference implementation of the update rule.
type ScalarTrainer struct {
	settings settings
}

// NewScalarTrainer creates a ScalarTrainer.
func NewScalarTrainer(opts ...Option) *ScalarTrainer {
	return &ScalarTrainer{settings: newSettings(opts)}
}

// Name returns "ScalarTrainer".
func (t *ScalarTrainer) Name() string { return "ScalarTrainer" }

// Train runs p.Epochs epochs of minibatched coordinate descent.
func (t *ScalarTrainer) Train(ctx context.Context, ds *dataset.Dataset, p Params, history []float32) (*Model, error) {
	sched, err := p.validate(ds, history, false)
	if err != nil {
		return nil, err
	}
	r, err := newRun(t.Name(), t.settings, ds, p, sched, history, 1)
	if err != nil {
		return nil, err
	}

	x := make([]float32, ds.NumFeatures())
	errv := make([]float32, ds.NumSamples())
	inference := make([]float32, ds.NumSamples())

	for epoch := 0; epoch < p.Epochs; epoch++ {
		for m := 0; m < sched.minibatches; m++ {
			if err := ctx.Err(); err != nil {
				return r.finish(x, errors.Wrapf(err, "%s: epoch %d", t.Name(), epoch))
			}
			lo, hi := sched.bounds(m)
			scalarBlock(ds, x, errv, inference, lo, hi, p.StepSize)
		}
		if lo, hi := sched.tail(); hi > lo {
			scalarBlock(ds, x, errv, inference, lo, hi, p.StepSize)
		}
		r.endEpoch(epoch, x)
	}
	return r.finish(x, nil)
}

// scalarBlock processes samples [lo, hi) against every coordinate.
// err is recomputed from the inference carried over from the previous pass,
// then inference is rebuilt while the coordinates are updated.
func scalarBlock(ds *dataset.Dataset, x, errv, inference []float32, lo, hi int, step float32) {
	labels := ds.Labels()[lo:hi]
	e := errv[lo:hi]
	inf := inference[lo:hi]
	for i := range e {
		e[i] = inf[i] - labels[i]
		inf[i] = 0
	}

	for j := range x {
		a := ds.Column(j)[lo:hi]
		w := x[j]
		var g float32
		for i, v := range a {
			g += v * e[i]
			inf[i] += v * w
		}
		x[j] = w - step*g
	}
}

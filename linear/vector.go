package linear

import (
	"context"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/core/parallel"
	"github.com/YuminosukeSato/goscd/core/simd"
	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// VectorTrainer runs the update rule with 8-lane kernels on one goroutine.
// The minibatch size must be a multiple of 8; the remainder pass is scalar.
type VectorTrainer struct {
	settings settings
}

// NewVectorTrainer creates a VectorTrainer.
func NewVectorTrainer(opts ...Option) *VectorTrainer {
	return &VectorTrainer{settings: newSettings(opts)}
}

// Name returns "VectorTrainer".
func (t *VectorTrainer) Name() string { return "VectorTrainer" }

// Train runs p.Epochs epochs of minibatched coordinate descent.
func (t *VectorTrainer) Train(ctx context.Context, ds *dataset.Dataset, p Params, history []float32) (*Model, error) {
	sched, err := p.validate(ds, history, true)
	if err != nil {
		return nil, err
	}
	r, err := newRun(t.Name(), t.settings, ds, p, sched, history, 1)
	if err != nil {
		return nil, err
	}

	x := make([]float32, ds.NumFeatures())
	errv := dataset.AlignedFloat32s(ds.NumSamples())
	inference := dataset.AlignedFloat32s(ds.NumSamples())
	all := parallel.Range{Start: 0, End: ds.NumFeatures()}
	labels := ds.Labels()

	for epoch := 0; epoch < p.Epochs; epoch++ {
		for m := 0; m < sched.minibatches; m++ {
			if err := ctx.Err(); err != nil {
				return r.finish(x, errors.Wrapf(err, "%s: epoch %d", t.Name(), epoch))
			}
			lo, hi := sched.bounds(m)
			simd.Residual(errv[lo:hi], inference[lo:hi], labels[lo:hi])
			vectorCoordinates(ds, x, errv, inference, lo, hi, all, p.StepSize)
		}
		if lo, hi := sched.tail(); hi > lo {
			scalarBlock(ds, x, errv, inference, lo, hi, p.StepSize)
		}
		r.endEpoch(epoch, x)
	}
	return r.finish(x, nil)
}

// vectorCoordinates updates coordinates in own against samples [lo, hi),
// accumulating their contribution into inference. err must already hold the
// residual of the minibatch.
func vectorCoordinates(ds *dataset.Dataset, x, errv, inference []float32, lo, hi int, own parallel.Range, step float32) {
	e := errv[lo:hi]
	inf := inference[lo:hi]
	for j := own.Start; j < own.End; j++ {
		g := simd.GradientInference(ds.Column(j)[lo:hi], e, inf, x[j])
		x[j] -= step * g
	}
}

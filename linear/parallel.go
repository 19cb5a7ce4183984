package linear

import (
	"context"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/core/parallel"
	"github.com/YuminosukeSato/goscd/core/simd"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/pkg/log"
)

// ParallelTrainer partitions the coordinates over a fixed group of workers
// synchronized by a barrier. Worker 0, the leader, owns the residual and
// the reduction accumulator.
//
// Per minibatch the leader sums the workers' partial inferences into the
// accumulator and computes the residual, all workers pass the barrier,
// each updates its own coordinate range into its private partial
// inference, and all pass the barrier again. The remainder samples, the
// history copy and the loss report are handled by the leader alone.
type ParallelTrainer struct {
	settings settings
}

// NewParallelTrainer creates a ParallelTrainer. See WithWorkers and WithPinning.
func NewParallelTrainer(opts ...Option) *ParallelTrainer {
	return &ParallelTrainer{settings: newSettings(opts)}
}

// Name returns "ParallelTrainer".
func (t *ParallelTrainer) Name() string { return "ParallelTrainer" }

// Workers returns the configured worker count.
func (t *ParallelTrainer) Workers() int { return t.settings.workers }

// Train runs p.Epochs epochs of minibatched coordinate descent.
// Configuration errors, including a worker count larger than the number of
// features, are returned before any goroutine starts.
func (t *ParallelTrainer) Train(ctx context.Context, ds *dataset.Dataset, p Params, history []float32) (*Model, error) {
	sched, err := p.validate(ds, history, true)
	if err != nil {
		return nil, err
	}
	ranges, err := parallel.Partition(ds.NumFeatures(), t.settings.workers)
	if err != nil {
		return nil, err
	}
	workers := len(ranges)
	r, err := newRun(t.Name(), t.settings, ds, p, sched, history, workers)
	if err != nil {
		return nil, err
	}

	n := ds.NumSamples()
	x := make([]float32, ds.NumFeatures())
	errv := dataset.AlignedFloat32s(n)
	acc := dataset.AlignedFloat32s(n)
	partials := make([][]float32, workers)
	for i := range partials {
		partials[i] = dataset.AlignedFloat32s(n)
	}
	labels := ds.Labels()

	cfg := parallel.SPMDConfig{Workers: workers, Pin: t.settings.pin}
	err = parallel.RunSPMD(ctx, cfg, func(w *parallel.Worker) error {
		own := ranges[w.ID()]
		partial := partials[w.ID()]
		if t.settings.pin {
			r.logger.Debug("Worker started", log.WorkerIDKey, w.ID(), log.CPUKey, w.CPU())
		}

		for epoch := 0; epoch < p.Epochs; epoch++ {
			for m := 0; m < sched.minibatches; m++ {
				lo, hi := sched.bounds(m)
				if err := w.LeaderPhase(func() error {
					for _, pi := range partials {
						simd.Accumulate(acc[lo:hi], pi[lo:hi])
					}
					simd.Residual(errv[lo:hi], acc[lo:hi], labels[lo:hi])
					return nil
				}); err != nil {
					return err
				}

				vectorCoordinates(ds, x, errv, partial, lo, hi, own, p.StepSize)
				if err := w.Sync(); err != nil {
					return err
				}
			}

			if !w.IsLeader() {
				continue
			}
			if lo, hi := sched.tail(); hi > lo {
				if err := ctx.Err(); err != nil {
					return err
				}
				scalarBlock(ds, x, errv, acc, lo, hi, p.StepSize)
			}
			r.endEpoch(epoch, x)
		}
		return nil
	})
	if err != nil {
		return r.finish(x, errors.Wrapf(err, "%s", t.Name()))
	}
	return r.finish(x, nil)
}

package parallel

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/goscd/pkg/errors"
)

// SPMDConfig configures a barrier-synchronized worker group.
type SPMDConfig struct {
	// Workers is the number of goroutines, all participants of one barrier.
	Workers int
	// Pin binds each worker's OS thread to its own CPU before body runs.
	Pin bool
}

// Worker is the handle a body function receives. Worker 0 is the leader.
type Worker struct {
	id      int
	cpu     int
	workers int
	ctx     context.Context
	barrier *Barrier
}

// ID returns the worker index in [0, Workers).
func (w *Worker) ID() int { return w.id }

// IsLeader reports whether this is worker 0.
func (w *Worker) IsLeader() bool { return w.id == 0 }

// CPU returns the CPU the worker is pinned to, or -1.
func (w *Worker) CPU() int { return w.cpu }

// Workers returns the group size.
func (w *Worker) Workers() int { return w.workers }

// Sync waits at the group barrier.
func (w *Worker) Sync() error {
	return w.barrier.Wait()
}

// LeaderPhase runs fn on the leader only, then synchronizes all workers.
// Non-leaders block until the leader finishes. The leader checks the
// group context first, so cancellation is observed at phase boundaries.
func (w *Worker) LeaderPhase(fn func() error) error {
	if w.IsLeader() {
		if err := w.ctx.Err(); err != nil {
			w.barrier.Break(err)
			return err
		}
		if err := fn(); err != nil {
			w.barrier.Break(err)
			return err
		}
	}
	return w.barrier.Wait()
}

// RunSPMD starts cfg.Workers goroutines running body and waits for all of
// them. The first failure, including a recovered panic or a pinning error,
// breaks the barrier so no worker stays blocked, and is returned.
func RunSPMD(ctx context.Context, cfg SPMDConfig, body func(w *Worker) error) error {
	if cfg.Workers < 1 {
		return errors.NewValidationError("worker count", "must be at least 1", cfg.Workers)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.Pin {
		// Workers past the allowed set wrap around and share CPUs.
		if n, err := AllowedCPUs(); err == nil && n > 0 && cfg.Workers > n {
			errors.Warn(errors.NewValueError("parallel.RunSPMD",
				fmt.Sprintf("%d pinned workers share %d allowed CPUs", cfg.Workers, n)))
		}
	}
	barrier, err := NewBarrier(cfg.Workers)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for id := 0; id < cfg.Workers; id++ {
		w := &Worker{id: id, cpu: -1, workers: cfg.Workers, ctx: ctx, barrier: barrier}
		g.Go(func() (err error) {
			defer func() {
				if err != nil {
					barrier.Break(err)
				}
			}()
			defer errors.Recover(&err, fmt.Sprintf("worker %d", w.id))

			if cfg.Pin {
				cpu, err := PinCurrentThread(w.id)
				if err != nil {
					return err
				}
				w.cpu = cpu
			}
			return body(w)
		})
	}
	return g.Wait()
}

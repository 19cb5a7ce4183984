package linear

import (
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/pkg/log"
	"github.com/YuminosukeSato/goscd/report"
)

// run holds the bookkeeping shared by all trainers: epoch timing, history
// recording, loss evaluation and sink notifications. It is used from one
// goroutine only.
type run struct {
	id      string
	trainer string
	ds      *dataset.Dataset
	params  Params
	sched   schedule
	history []float32
	logger  log.Logger
	sink    report.Sink

	started    time.Time
	epochStart time.Time
	epochs     int
}

func newRun(name string, s settings, ds *dataset.Dataset, p Params, sched schedule, history []float32, workers int) (*run, error) {
	r := &run{
		id:      uuid.NewString(),
		trainer: name,
		ds:      ds,
		params:  p,
		sched:   sched,
		history: history,
		sink:    s.sink,
	}
	r.logger = s.logger.With(log.RunIDKey, r.id, log.ModelNameKey, name)

	x := make([]float32, ds.NumFeatures())
	initial, err := Loss(ds, x)
	if err != nil {
		return nil, err
	}
	r.sink.Start(report.RunInfo{
		RunID:          r.id,
		Trainer:        name,
		Samples:        ds.NumSamples(),
		Features:       ds.NumFeatures(),
		Epochs:         p.Epochs,
		MinibatchSize:  p.MinibatchSize,
		Minibatches:    sched.minibatches,
		Rest:           sched.rest,
		StepSize:       p.StepSize,
		Workers:        workers,
		InitialLoss:    initial,
		RecordsHistory: history != nil,
	})
	r.started = time.Now()
	r.epochStart = r.started
	return r, nil
}

// endEpoch records x for the given epoch, or evaluates and reports the loss.
func (r *run) endEpoch(epoch int, x []float32) {
	elapsed := time.Since(r.epochStart)
	rep := report.EpochReport{RunID: r.id, Trainer: r.trainer, Epoch: epoch, Elapsed: elapsed}

	if r.history != nil {
		f := len(x)
		copy(r.history[epoch*f:(epoch+1)*f], x)
	} else {
		loss, err := Loss(r.ds, x)
		if err == nil {
			err = errors.CheckScalar("loss", loss, epoch)
		}
		if err != nil {
			errors.Warn(errors.Wrapf(err, "%s run %s", r.trainer, r.id))
		}
		rep.Loss, rep.HasLoss = loss, true
	}
	r.sink.Epoch(rep)
	r.epochs = epoch + 1
	r.epochStart = time.Now()
}

// finish reports the end of the run and builds the model.
func (r *run) finish(x []float32, err error) (*Model, error) {
	sum := report.Summary{
		RunID:   r.id,
		Trainer: r.trainer,
		Epochs:  r.epochs,
		Elapsed: time.Since(r.started),
		Err:     err,
	}
	if err != nil {
		r.sink.Finish(sum)
		return nil, err
	}
	loss, lossErr := Loss(r.ds, x)
	if lossErr != nil {
		sum.Err = lossErr
		r.sink.Finish(sum)
		return nil, lossErr
	}
	sum.FinalLoss = loss
	r.sink.Finish(sum)
	if err := errors.CheckVector("weights", x, r.epochs); err != nil {
		errors.Warn(errors.Wrapf(err, "%s run %s", r.trainer, r.id))
	}

	return &Model{
		Weights:   x,
		Trainer:   r.trainer,
		Epochs:    r.epochs,
		FinalLoss: loss,
		labels:    r.ds.LabelTransform(),
	}, nil
}

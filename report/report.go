// Package report contains observers of training runs. Sinks receive the
// run parameters, one report per epoch, and a summary; they never influence
// the run.
package report

import (
	"time"
)

// RunInfo describes a training run at its start.
type RunInfo struct {
	RunID          string
	Trainer        string
	Samples        int
	Features       int
	Epochs         int
	MinibatchSize  int
	Minibatches    int
	Rest           int
	StepSize       float32
	Workers        int
	InitialLoss    float32
	RecordsHistory bool
}

// EpochReport is emitted once per finished epoch. Loss is only set when
// the run does not record a weight history.
type EpochReport struct {
	RunID   string
	Trainer string
	Epoch   int
	Elapsed time.Duration
	Loss    float32
	HasLoss bool
}

// Summary is emitted when a run ends, successfully or not.
type Summary struct {
	RunID     string
	Trainer   string
	Epochs    int
	Elapsed   time.Duration
	FinalLoss float32
	Err       error
}

// Sink observes training runs. Calls for one run are made sequentially from
// a single goroutine.
type Sink interface {
	Start(info RunInfo)
	Epoch(r EpochReport)
	Finish(s Summary)
}

// Discard is a Sink that ignores everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Start(RunInfo)     {}
func (discard) Epoch(EpochReport) {}
func (discard) Finish(Summary)    {}

// Multi fans out to several sinks in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Start(info RunInfo) {
	for _, s := range m {
		s.Start(info)
	}
}

func (m multi) Epoch(r EpochReport) {
	for _, s := range m {
		s.Epoch(r)
	}
}

func (m multi) Finish(sum Summary) {
	for _, s := range m {
		s.Finish(sum)
	}
}

package linear

import (
	"github.com/YuminosukeSato/goscd/pkg/log"
	"github.com/YuminosukeSato/goscd/report"
)

// DefaultWorkers is the default worker count of ParallelTrainer.
const DefaultWorkers = 14

// Option configures a trainer.
type Option func(*settings)

type settings struct {
	workers int
	pin     bool
	logger  log.Logger
	sink    report.Sink
}

func newSettings(opts []Option) settings {
	s := settings{
		workers: DefaultWorkers,
		pin:     true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	if s.sink == nil {
		s.sink = report.NewLogSink(s.logger)
	}
	return s
}

// WithWorkers sets the number of ParallelTrainer workers.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

// WithPinning sets whether ParallelTrainer pins each worker to its own CPU.
func WithPinning(pin bool) Option {
	return func(s *settings) {
		s.pin = pin
	}
}

// WithLogger sets the logger used for warnings and run diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithSink sets the reporting sink. The default logs progress through the logger.
func WithSink(sink report.Sink) Option {
	return func(s *settings) {
		s.sink = sink
	}
}

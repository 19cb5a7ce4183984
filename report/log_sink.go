package report

import (
	"github.com/YuminosukeSato/goscd/pkg/log"
)

// LogSink writes run progress to a Logger: parameters and initial loss at
// Info on start, one Info line per epoch, and the summary.
type LogSink struct {
	logger log.Logger
}

// NewLogSink creates a LogSink. A nil logger uses log.GetLogger().
func NewLogSink(logger log.Logger) *LogSink {
	if logger == nil {
		logger = log.GetLoggerWithName("report")
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Start(info RunInfo) {
	s.logger.Info("Training started",
		log.RunIDKey, info.RunID,
		log.ModelNameKey, info.Trainer,
		log.SamplesKey, info.Samples,
		log.FeaturesKey, info.Features,
		log.EpochsKey, info.Epochs,
		log.MinibatchSizeKey, info.MinibatchSize,
		log.MinibatchesKey, info.Minibatches,
		log.RestKey, info.Rest,
		log.StepSizeKey, info.StepSize,
		log.WorkersKey, info.Workers,
		"initial_loss", info.InitialLoss,
	)
}

func (s *LogSink) Epoch(r EpochReport) {
	fields := []any{
		log.RunIDKey, r.RunID,
		log.ModelNameKey, r.Trainer,
		log.EpochKey, r.Epoch,
		log.DurationMsKey, r.Elapsed.Milliseconds(),
	}
	if r.HasLoss {
		fields = append(fields, log.LossKey, r.Loss)
	}
	s.logger.Info("Epoch finished", fields...)
}

func (s *LogSink) Finish(sum Summary) {
	if sum.Err != nil {
		s.logger.Error("Training failed", sum.Err,
			log.RunIDKey, sum.RunID,
			log.ModelNameKey, sum.Trainer,
			log.EpochKey, sum.Epochs,
		)
		return
	}
	s.logger.Info("Training finished",
		log.RunIDKey, sum.RunID,
		log.ModelNameKey, sum.Trainer,
		log.EpochsKey, sum.Epochs,
		log.DurationMsKey, sum.Elapsed.Milliseconds(),
		log.LossKey, sum.FinalLoss,
	)
}

package report

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exports epoch timings and losses.
type PrometheusSink struct {
	epochDuration *prometheus.HistogramVec
	epochLoss     *prometheus.GaugeVec
	epochs        *prometheus.CounterVec
	runs          *prometheus.CounterVec
}

// NewPrometheusSink creates the collectors and registers them on reg.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		epochDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scd",
			Name:      "epoch_duration_seconds",
			Help:      "Wall time of one training epoch.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"trainer"}),
		epochLoss: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "scd",
			Name:      "epoch_loss",
			Help:      "Mean squared residual after the last epoch.",
		}, []string{"trainer"}),
		epochs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scd",
			Name:      "epochs_total",
			Help:      "Finished training epochs.",
		}, []string{"trainer"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scd",
			Name:      "runs_total",
			Help:      "Finished training runs by outcome.",
		}, []string{"trainer", "outcome"}),
	}
	for _, c := range []prometheus.Collector{s.epochDuration, s.epochLoss, s.epochs, s.runs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PrometheusSink) Start(info RunInfo) {
	s.epochLoss.WithLabelValues(info.Trainer).Set(float64(info.InitialLoss))
}

func (s *PrometheusSink) Epoch(r EpochReport) {
	s.epochDuration.WithLabelValues(r.Trainer).Observe(r.Elapsed.Seconds())
	s.epochs.WithLabelValues(r.Trainer).Inc()
	if r.HasLoss {
		s.epochLoss.WithLabelValues(r.Trainer).Set(float64(r.Loss))
	}
}

func (s *PrometheusSink) Finish(sum Summary) {
	outcome := "ok"
	if sum.Err != nil {
		outcome = "error"
	} else {
		s.epochLoss.WithLabelValues(sum.Trainer).Set(float64(sum.FinalLoss))
	}
	s.runs.WithLabelValues(sum.Trainer, outcome).Inc()
}

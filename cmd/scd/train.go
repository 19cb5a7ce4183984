package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/goscd/config"
	"github.com/YuminosukeSato/goscd/core/dataset"
	"github.com/YuminosukeSato/goscd/datasets"
	"github.com/YuminosukeSato/goscd/linear"
	"github.com/YuminosukeSato/goscd/metrics"
	"github.com/YuminosukeSato/goscd/pkg/errors"
	"github.com/YuminosukeSato/goscd/pkg/log"
	"github.com/YuminosukeSato/goscd/preprocessing"
	"github.com/YuminosukeSato/goscd/report"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model",
		Long: `Load or generate a dataset, normalize it, and train one trainer for a
fixed number of epochs. Per-epoch loss is logged unless --history is set,
in which case the per-epoch weights are printed instead.`,
		Args: cobra.NoArgs,
		RunE: runTrain,
	}
	addDatasetFlags(cmd.Flags())
	addTrainFlags(cmd.Flags())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	applyDatasetFlags(cmd.Flags(), cfg)
	applyTrainFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("scd")

	ds, err := loadDataset(cfg.Dataset, logger)
	if err != nil {
		return err
	}
	defer ds.Release()

	if err := preprocessing.Apply(ds, cfg.NormalizeOptions()); err != nil {
		return err
	}

	sinks := []report.Sink{report.NewLogSink(logger)}
	var plotSink *report.PlotSink
	if cfg.Report.Plot != "" {
		plotSink = report.NewPlotSink()
		sinks = append(sinks, plotSink)
	}
	if cfg.Report.MetricsAddr != "" {
		stop, sink, err := serveMetrics(cfg.Report.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer stop()
		sinks = append(sinks, sink)
	}

	opts := append(cfg.TrainerOptions(), linear.WithLogger(logger), linear.WithSink(report.Multi(sinks...)))
	trainer, err := linear.NewTrainer(cfg.Train.Trainer, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p := cfg.Params()
	var history linear.History
	if cfg.Train.RecordHistory {
		history = linear.NewHistory(p.Epochs, ds.NumFeatures())
	}

	model, err := trainer.Train(ctx, ds, p, history)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if history != nil {
		for e := 0; e < p.Epochs; e++ {
			fmt.Fprintf(out, "epoch %d: %s\n", e, formatWeights(history.Epoch(e, ds.NumFeatures())))
		}
	}
	if err := printSummary(out, ds, model, logger); err != nil {
		return err
	}

	if cfg.Train.Reference {
		if err := printReference(out, ds, model); err != nil {
			return err
		}
	}
	if plotSink != nil {
		if err := plotSink.Save(cfg.Report.Plot); err != nil {
			return err
		}
		logger.Info("Loss curve written", log.PathKey, cfg.Report.Plot)
	}
	return nil
}

func loadDataset(dc config.DatasetConfig, logger log.Logger) (*dataset.Dataset, error) {
	start := time.Now()
	var (
		ds  *dataset.Dataset
		err error
	)
	switch dc.Format {
	case config.FormatLibSVM:
		ds, err = datasets.LoadLibSVM(dc.Path, dc.Samples, dc.Features)
	case config.FormatRaw:
		ds, err = datasets.LoadRaw(dc.Path, dc.Samples, dc.Features)
	default:
		ds, err = datasets.GenerateSynthetic(dc.Samples, dc.Features, dc.Binary, dc.Seed)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Dataset ready",
		log.OperationKey, log.OperationLoad,
		log.FormatKey, dc.Format,
		log.PathKey, dc.Path,
		log.SamplesKey, ds.NumSamples(),
		log.FeaturesKey, ds.NumFeatures(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func printSummary(out io.Writer, ds *dataset.Dataset, model *linear.Model, logger log.Logger) error {
	pred, err := model.Predict(ds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "trainer: %s\n", model.Trainer)
	fmt.Fprintf(out, "loss:    %g\n", model.FinalLoss)
	fmt.Fprintf(out, "weights: %s\n", formatWeights(model.Weights))

	r, err := metrics.Evaluate(ds.Labels(), pred)
	if err != nil {
		// Constant labels have no R²; the loss above is still meaningful.
		logger.Warn("Metrics unavailable", err)
		return nil
	}
	fmt.Fprintf(out, "rmse:    %g\n", r.RMSE)
	fmt.Fprintf(out, "r2:      %g\n", r.R2)
	logger.Info("Model evaluated", log.RMSEKey, r.RMSE, log.R2ScoreKey, r.R2)
	return nil
}

func printReference(out io.Writer, ds *dataset.Dataset, model *linear.Model) error {
	ref, err := linear.LeastSquares(ds)
	if err != nil {
		return err
	}
	refLoss, err := linear.Loss(ds, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "reference loss: %g\n", refLoss)
	fmt.Fprintf(out, "optimality gap: %g\n", model.FinalLoss-refLoss)
	return nil
}

func formatWeights(w []float32) string {
	const maxShown = 8
	s := "["
	for i, v := range w {
		if i == maxShown {
			s += fmt.Sprintf(" ... (%d more)", len(w)-maxShown)
			break
		}
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%.6g", v)
	}
	return s + "]"
}

// serveMetrics exposes a fresh Prometheus registry on addr until stop is called.
func serveMetrics(addr string, logger log.Logger) (stop func(), sink *report.PrometheusSink, err error) {
	reg := prometheus.NewRegistry()
	sink, err = report.NewPrometheusSink(reg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "register metrics")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.NewResourceError("serveMetrics", "listen "+addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", err)
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, sink, nil
}

// Package goscd trains least-squares linear regression models with
// minibatched stochastic coordinate descent on float32 column-major data.
//
// Three trainers share one update rule and produce the same weights up to
// float rounding:
//
//   - linear.ScalarTrainer: single goroutine, one coordinate at a time
//   - linear.VectorTrainer: 8-lane kernels from core/simd
//   - linear.ParallelTrainer: a fixed team of workers that split the
//     features and meet at a barrier twice per minibatch
//
// # Quick Start
//
//	ds, _ := datasets.GenerateSynthetic(4096, 32, false, datasets.DefaultSeed)
//	_ = preprocessing.NormalizeFeatures(ds, false, preprocessing.ColumnWise)
//	_ = preprocessing.NormalizeLabels(ds, false)
//
//	tr := linear.NewVectorTrainer()
//	model, err := tr.Train(ctx, ds, linear.Params{
//	    Epochs:        10,
//	    MinibatchSize: 256,
//	    StepSize:      1.0 / (1 << 24),
//	}, nil)
//
// # Packages
//
//   - core/dataset: aligned column-major storage
//   - core/parallel: partitioning, barrier and pinned SPMD teams
//   - core/simd: lane kernels
//   - datasets: LIBSVM and raw loaders, synthetic generator
//   - preprocessing: min-max normalization of features and labels
//   - linear: trainers, loss, reference least-squares solve
//   - metrics: regression metrics
//   - report: per-epoch sinks (logging, Prometheus, loss curve plots)
//   - config: YAML run configuration
//
// The scd command in cmd/scd wires these together.
package goscd

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the trainer variant.
	// Examples: "ScalarTrainer", "VectorTrainer", "ParallelTrainer"
	ModelNameKey = "model.name"

	// RunIDKey identifies one training run; set once per Train call.
	RunIDKey = "run.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"
)

// Data Shape
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	PathKey     = "data.path"
	FormatKey   = "data.format"
)

// Training parameters and progress
const (
	EpochKey         = "train.epoch"
	EpochsKey        = "train.epochs"
	LossKey          = "train.loss"
	MinibatchSizeKey = "train.minibatch_size"
	MinibatchesKey   = "train.minibatches"
	RestKey          = "train.rest"
	StepSizeKey      = "train.step_size"
	WorkersKey       = "train.workers"
	WorkerIDKey      = "train.worker_id"
	CPUKey           = "train.cpu"
)

// Performance Metrics
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	RMSEKey       = "metrics.rmse"
)

// Standard operation values.
const (
	OperationTrain     = "train"
	OperationLoad      = "load"
	OperationNormalize = "normalize"
	OperationGenerate  = "generate"
	OperationPredict   = "predict"
)

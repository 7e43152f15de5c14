// Package log defines standard attribute keys for preference learning operations.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that training runs of different algorithm families can be
// filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the algorithm or model kind.
	// Examples: "KNN", "LinearRegression", "KemenyYoung"
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one algorithm instance (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"

	// ConfigurationKindKey identifies the configuration kind being loaded or overridden.
	ConfigurationKindKey = "config.kind"

	// ConfigurationStateKey is the lifecycle state of a configuration ("default", "overridden").
	ConfigurationStateKey = "config.state"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of instances in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features of the dataset header.
	FeaturesKey = "data.features"

	// DatasetKindKey is the dataset kind ("baselearner", "object_ranking", "rank_aggregation").
	DatasetKindKey = "data.kind"

	// LabelsKey indicates the number of labels taking part in a rank aggregation.
	LabelsKey = "data.labels"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the current iteration number during iterative processes.
	IterationKey = "training.iteration"

	// ChangeNormKey records the norm of the latest weight update.
	ChangeNormKey = "training.change_norm"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Hyperparameters and Configuration
const (
	// HyperParamsKey contains the configuration fingerprint of a training run.
	HyperParamsKey = "model.hyperparams"

	// LearningRateKey records the learning rate for gradient-based algorithms.
	LearningRateKey = "hyperparams.learning_rate"

	// GradientStepKey records the registered gradient step identifier.
	GradientStepKey = "hyperparams.gradient_step"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants.
const (
	OperationTrain    = "train"
	OperationPredict  = "predict"
	OperationOverride = "override"
	OperationDefault  = "load_default"

	ErrorTrainModelsFailed   = "TRAIN_MODELS_FAILED"
	ErrorValidationFailed    = "PARAMETER_VALIDATION_FAILED"
	ErrorDimensionMismatch   = "DIMENSION_MISMATCH"
	ErrorConvergence         = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix      = "SINGULAR_MATRIX"
	ErrorUnsupportedRelation = "UNSUPPORTED_RELATION"
)

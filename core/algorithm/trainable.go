package algorithm

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// TrainableAlgorithm is an algorithm that produces a model from a dataset.
type TrainableAlgorithm interface {
	Algorithm
	DatasetKind() dataset.Kind
	Train(ds dataset.Interface) (model.LearningModel, error)
}

// TrainFunc performs the algorithm specific training. cfg is a private
// snapshot of the configuration and ds already has the expected kind.
type TrainFunc[C config.Configuration] func(cfg C, ds dataset.Interface) (model.LearningModel, error)

// Trainable adds the training lifecycle to Base.
type Trainable[C config.Configuration] struct {
	Base[C]
	kind  dataset.Kind
	train TrainFunc[C]
}

// NewTrainable creates a trainable algorithm accepting datasets of kind.
func NewTrainable[C config.Configuration](tag string, kind dataset.Kind, newConfig func() C, train TrainFunc[C], opts ...Option) *Trainable[C] {
	return &Trainable[C]{
		Base:  NewBase(tag, newConfig, opts...),
		kind:  kind,
		train: train,
	}
}

// DatasetKind is the dataset kind accepted by Train.
func (t *Trainable[C]) DatasetKind() dataset.Kind { return t.kind }

// Train checks the dataset kind, validates a copy of the current
// configuration and runs the training function on it. Any failure or panic inside the training
// function is returned as a TrainModelsFailedError carrying the cause.
func (t *Trainable[C]) Train(ds dataset.Interface) (model.LearningModel, error) {
	if ds == nil {
		return nil, errors.NewDatasetKindError(t.tag, string(t.kind), "<nil>")
	}
	header := ds.Header()
	if header.Kind != t.kind {
		return nil, errors.NewDatasetKindError(t.tag, string(t.kind), string(header.Kind))
	}

	snapshot := t.Configuration()
	if err := config.Validate(snapshot); err != nil {
		t.logger.Error("Training rejected invalid configuration", err,
			log.OperationKey, log.OperationTrain,
			log.ErrorCodeKey, log.ErrorValidationFailed,
		)
		return nil, errors.NewTrainModelsFailedError(t.tag, err)
	}

	t.logger.Info("Training started",
		log.OperationKey, log.OperationTrain,
		log.DatasetKindKey, string(header.Kind),
		log.SamplesKey, ds.NumberOfInstances(),
		log.FeaturesKey, header.ContextDimensions+header.ItemDimensions,
		log.ConfigurationStateKey, t.state.String(),
	)
	start := time.Now()

	m, err := t.run(snapshot, ds)
	if err != nil {
		t.logger.Error("Training failed", err,
			log.OperationKey, log.OperationTrain,
			log.ErrorCodeKey, log.ErrorTrainModelsFailed,
		)
		return nil, err
	}

	t.logger.Info("Training completed",
		log.OperationKey, log.OperationTrain,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}

func (t *Trainable[C]) run(cfg C, ds dataset.Interface) (m model.LearningModel, err error) {
	defer func() {
		if err != nil {
			err = asTrainFailure(t.tag, err)
		}
	}()
	defer errors.Recover(&err, t.tag+".Train")

	m, err = t.train(cfg, ds)
	if err == nil && m == nil {
		err = errors.NewValueError(t.tag+".Train", "training produced no model")
	}
	return m, err
}

func asTrainFailure(tag string, err error) error {
	var trainErr *errors.TrainModelsFailedError
	if errors.As(err, &trainErr) {
		return err
	}
	return errors.NewTrainModelsFailedError(tag, err)
}

// Narrow converts ds to its concrete dataset type inside a TrainFunc.
func Narrow[D dataset.Interface](tag string, ds dataset.Interface) (D, error) {
	typed, ok := ds.(D)
	if !ok {
		var zero D
		return zero, errors.NewDatasetKindError(tag, fmt.Sprintf("%T", zero), fmt.Sprintf("%T", ds))
	}
	return typed, nil
}

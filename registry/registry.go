// Package registry maps base learner identifiers to their constructors.
//
// Algorithms that delegate to a configurable base learner (for example the
// expected rank regression) look the learner up here, so the choice of base
// learner is plain configuration data.
package registry

import (
	"sort"
	"sync"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/linear"
	"github.com/YuminosukeSato/preflearn/neighbors"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Factory creates a fresh base learner.
type Factory func(opts ...algorithm.Option) algorithm.TrainableAlgorithm

const (
	LinearRegression       = "linear_regression"
	KNN                    = "knn"
	Perceptron             = "perceptron"
	Pegasos                = "pegasos"
	LogisticClassification = "logistic_classification"
)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func init() {
	Register(LinearRegression, func(opts ...algorithm.Option) algorithm.TrainableAlgorithm {
		return linear.NewLinearRegression(opts...)
	})
	Register(KNN, func(opts ...algorithm.Option) algorithm.TrainableAlgorithm {
		return neighbors.NewKNN(opts...)
	})
	Register(Perceptron, func(opts ...algorithm.Option) algorithm.TrainableAlgorithm {
		return linear.NewPerceptron(opts...)
	})
	Register(Pegasos, func(opts ...algorithm.Option) algorithm.TrainableAlgorithm {
		return linear.NewPegasos(opts...)
	})
	Register(LogisticClassification, func(opts ...algorithm.Option) algorithm.TrainableAlgorithm {
		return linear.NewLogisticClassification(opts...)
	})
}

// Register adds or replaces the factory for id.
func Register(id string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[id] = factory
}

// Has reports whether id is registered.
func Has(id string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[id]
	return ok
}

// IDs lists the registered identifiers in ascending order.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// New creates the base learner registered under id.
func New(id string, opts ...algorithm.Option) (algorithm.TrainableAlgorithm, error) {
	mu.RLock()
	factory, ok := factories[id]
	mu.RUnlock()
	if !ok {
		return nil, errors.Newf("registry: unknown base learner %q", id)
	}
	return factory(opts...), nil
}

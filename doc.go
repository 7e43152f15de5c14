// Package preflearn is a preference learning library for Go: classification,
// regression, object ranking and rank aggregation algorithms sharing one
// configuration and training lifecycle.
//
// # Features
//
//   - Uniform configuration lifecycle: defaults from JSON resources, atomic
//     partial overrides, validation after every merge
//   - Explicit random source for reproducible training
//   - Structured logging and typed errors with stack traces
//   - Value-based algorithm equality, usable as a model cache key
//
// # Quick Start
//
// Train a k-nearest-neighbor classifier:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/preflearn/core/dataset"
//	    "github.com/YuminosukeSato/preflearn/core/model"
//	    "github.com/YuminosukeSato/preflearn/neighbors"
//	)
//
//	func main() {
//	    ds, err := dataset.FromRows(
//	        [][]float64{{0, 0}, {0, 1}, {5, 5}, {6, 5}},
//	        []float64{0, 0, 1, 1},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    knn := neighbors.NewKNN()
//	    if err := knn.SetParameters([]byte(`{"k": 1}`)); err != nil {
//	        log.Fatal(err)
//	    }
//	    m, err := knn.Train(ds)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := m.(model.BaselearnerModel).Predict(dataset.BaselearnerInstance{Context: []float64{5, 6}})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Prediction:", pred)
//	}
//
// # Packages
//
//   - core/config: configuration schema, default resources, override and validation
//   - core/algorithm: algorithm/configuration binding and the training lifecycle
//   - core/dataset, core/ranking: datasets, instances and rankings
//   - core/model: trained model contracts
//   - core/cache: (algorithm, dataset) → model cache
//   - neighbors, linear: base learners (KNN, least squares, perceptron, Pegasos, logistic)
//   - optimize: gradient descent with pluggable gradient steps
//   - aggregation: Borda count and Kemeny-Young
//   - objectranking: expected rank regression
//   - registry: base learner identifiers
//   - metrics: regression, classification and ranking metrics
//   - pkg/errors, pkg/log, pkg/settings, pkg/validation: shared infrastructure
//
// # License
//
// preflearn is released under the MIT License.
package preflearn

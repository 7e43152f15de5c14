// Package neighbors implements k-nearest-neighbor classification over a
// k-d tree.
package neighbors

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// KNNConfiguration holds the neighborhood size.
type KNNConfiguration struct {
	K int `json:"k" validate:"min=1"`
}

// NewKNNConfiguration returns an unfilled configuration.
func NewKNNConfiguration() *KNNConfiguration { return &KNNConfiguration{} }

func (c *KNNConfiguration) Kind() string            { return "knn" }
func (c *KNNConfiguration) DefaultFileName() string { return "knn.json" }
func (c *KNNConfiguration) Fields() []config.Field {
	return []config.Field{{Name: "k", Target: &c.K}}
}
func (c *KNNConfiguration) Validate() error { return nil }
func (c *KNNConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

// KNN is a k-nearest-neighbor classifier.
type KNN struct {
	*algorithm.Trainable[*KNNConfiguration]
}

// NewKNN creates a KNN classifier.
func NewKNN(opts ...algorithm.Option) *KNN {
	k := &KNN{}
	k.Trainable = algorithm.NewTrainable("KNN", dataset.KindBaselearner, NewKNNConfiguration, k.train, opts...)
	return k
}

func (k *KNN) train(cfg *KNNConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.BaselearnerDataset](k.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances := data.Instances()
	if len(instances) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	points := make(ratedPoints, len(instances))
	for i, inst := range instances {
		points[i] = ratedPoint{
			coords: append(kdtree.Point(nil), inst.Context...),
			rating: inst.Rating,
			order:  i,
		}
	}
	return &KNNModel{
		tree: kdtree.New(points, false),
		k:    cfg.K,
		dims: data.Header().ContextDimensions,
	}, nil
}

// KNNModel owns the k-d tree built at training time.
type KNNModel struct {
	tree *kdtree.Tree
	k    int
	dims int
}

// Name implements model.LearningModel.
func (m *KNNModel) Name() string { return "KNNModel" }

// FeatureDimensions implements model.LearningModel.
func (m *KNNModel) FeatureDimensions() int { return m.dims }

// Predict returns the most frequent rating among the k nearest neighbors.
// On a tie the rating that first reached the maximum count, walking the
// neighbors from nearest to farthest, wins.
func (m *KNNModel) Predict(inst dataset.BaselearnerInstance) (float64, error) {
	if err := model.CheckDimensions(m, "KNNModel.Predict", len(inst.Context)); err != nil {
		return 0, err
	}
	return vote(m.Neighbors(inst.Context)), nil
}

// PredictDataset predicts every instance of ds.
func (m *KNNModel) PredictDataset(ds *dataset.BaselearnerDataset) ([]float64, error) {
	return model.PredictAll(ds.Instances(), m.Predict)
}

// Neighbors returns the ratings of the k nearest training points, nearest
// first. Equidistant points keep their training order.
func (m *KNNModel) Neighbors(x []float64) []float64 {
	keeper := kdtree.NewNKeeper(m.k)
	m.tree.NearestSet(keeper, ratedPoint{coords: kdtree.Point(x)})

	found := make([]kdtree.ComparableDist, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		// NKeeper starts with a nil sentinel at infinite distance.
		if cd.Comparable == nil {
			continue
		}
		found = append(found, cd)
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(ratedPoint).order < found[j].Comparable.(ratedPoint).order
	})

	ratings := make([]float64, len(found))
	for i, cd := range found {
		ratings[i] = cd.Comparable.(ratedPoint).rating
	}
	return ratings
}

// Bias is not defined for KNN.
func (m *KNNModel) Bias() (float64, error) {
	return 0, errors.NewUnsupportedOperationError(m.Name(), "Bias")
}

// WeightVector is not defined for KNN.
func (m *KNNModel) WeightVector() ([]float64, error) {
	return nil, errors.NewUnsupportedOperationError(m.Name(), "WeightVector")
}

func vote(ratings []float64) float64 {
	counts := make(map[float64]int, len(ratings))
	var winner float64
	best := 0
	for _, r := range ratings {
		counts[r]++
		if counts[r] > best {
			best = counts[r]
			winner = r
		}
	}
	return winner
}

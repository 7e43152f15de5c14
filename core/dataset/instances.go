package dataset

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// BaselearnerInstance is a feature vector with a scalar rating. Classifiers
// read the rating as a class label.
type BaselearnerInstance struct {
	Context []float64
	Rating  float64
}

// Kind implements Instance.
func (BaselearnerInstance) Kind() Kind { return KindBaselearner }

// Copy implements Instance.
func (b BaselearnerInstance) Copy() BaselearnerInstance {
	return BaselearnerInstance{Context: append([]float64(nil), b.Context...), Rating: b.Rating}
}

func (b BaselearnerInstance) check(h Header) error {
	if len(b.Context) != h.ContextDimensions {
		return errors.NewDimensionError("Dataset.AddInstance", h.ContextDimensions, len(b.Context), 1)
	}
	return nil
}

func (b BaselearnerInstance) hash(d *xxhash.Digest) {
	writeFloats(d, b.Context)
	writeFloats(d, []float64{b.Rating})
}

// ObjectRankingInstance is a context with a ranking of item ids. Item ids
// index the item feature table of the dataset header.
type ObjectRankingInstance struct {
	Context []float64
	Ranking *ranking.Ranking
}

// Kind implements Instance.
func (ObjectRankingInstance) Kind() Kind { return KindObjectRanking }

// Copy implements Instance.
func (o ObjectRankingInstance) Copy() ObjectRankingInstance {
	return ObjectRankingInstance{Context: append([]float64(nil), o.Context...), Ranking: o.Ranking.Copy()}
}

func (o ObjectRankingInstance) check(h Header) error {
	if len(o.Context) != h.ContextDimensions {
		return errors.NewDimensionError("Dataset.AddInstance", h.ContextDimensions, len(o.Context), 1)
	}
	if o.Ranking == nil {
		return errors.NewValueError("Dataset.AddInstance", "object ranking instance without ranking")
	}
	if err := o.Ranking.Validate(); err != nil {
		return err
	}
	for _, item := range o.Ranking.Objects {
		if item < 0 || item >= len(h.ItemFeatures) {
			return errors.NewIndexOutOfRangeError("Dataset.AddInstance", item, len(h.ItemFeatures))
		}
	}
	return nil
}

func (o ObjectRankingInstance) hash(d *xxhash.Digest) {
	writeFloats(d, o.Context)
	hashRanking(d, o.Ranking)
}

// RankAggregationInstance is a ranking of labels observed Count times.
type RankAggregationInstance struct {
	Ranking *ranking.Ranking
	Count   int
}

// Kind implements Instance.
func (RankAggregationInstance) Kind() Kind { return KindRankAggregation }

// Copy implements Instance.
func (r RankAggregationInstance) Copy() RankAggregationInstance {
	return RankAggregationInstance{Ranking: r.Ranking.Copy(), Count: r.Count}
}

func (r RankAggregationInstance) check(h Header) error {
	if r.Ranking == nil {
		return errors.NewValueError("Dataset.AddInstance", "rank aggregation instance without ranking")
	}
	if r.Count < 1 {
		return errors.NewValueError("Dataset.AddInstance", fmt.Sprintf("count must be positive, got %d", r.Count))
	}
	if err := r.Ranking.Validate(); err != nil {
		return err
	}
	labels := make(map[int]struct{}, len(h.Labels))
	for _, l := range h.Labels {
		labels[l] = struct{}{}
	}
	for _, o := range r.Ranking.Objects {
		if _, ok := labels[o]; !ok {
			return errors.NewValueError("Dataset.AddInstance", fmt.Sprintf("label %d is not part of the label set", o))
		}
	}
	return nil
}

func (r RankAggregationInstance) hash(d *xxhash.Digest) {
	hashRanking(d, r.Ranking)
	writeInt(d, r.Count)
}

func hashRanking(d *xxhash.Digest, r *ranking.Ranking) {
	writeInts(d, r.Objects)
	rels := make([]int, len(r.Relations))
	for i, rel := range r.Relations {
		rels[i] = int(rel)
	}
	writeInts(d, rels)
}

type (
	BaselearnerDataset     = Dataset[BaselearnerInstance]
	ObjectRankingDataset   = Dataset[ObjectRankingInstance]
	RankAggregationDataset = Dataset[RankAggregationInstance]
)

// NewBaselearnerDataset creates an unbounded base learner dataset.
func NewBaselearnerDataset(contextDimensions int) *BaselearnerDataset {
	return New[BaselearnerInstance](Header{Kind: KindBaselearner, ContextDimensions: contextDimensions})
}

// NewObjectRankingDataset creates an object ranking dataset over the given
// item feature table. All rows must have the same length.
func NewObjectRankingDataset(contextDimensions int, itemFeatures [][]float64) (*ObjectRankingDataset, error) {
	itemDims := 0
	if len(itemFeatures) > 0 {
		itemDims = len(itemFeatures[0])
	}
	for _, row := range itemFeatures {
		if len(row) != itemDims {
			return nil, errors.NewDimensionError("NewObjectRankingDataset", itemDims, len(row), 1)
		}
	}
	return New[ObjectRankingInstance](Header{
		Kind:              KindObjectRanking,
		ContextDimensions: contextDimensions,
		ItemDimensions:    itemDims,
		ItemFeatures:      itemFeatures,
	}), nil
}

// NewRankAggregationDataset creates a rank aggregation dataset over labels.
func NewRankAggregationDataset(labels []int) *RankAggregationDataset {
	return New[RankAggregationInstance](Header{Kind: KindRankAggregation, Labels: labels})
}

// FromRows builds a sealed base learner dataset from parallel slices.
func FromRows(features [][]float64, ratings []float64) (*BaselearnerDataset, error) {
	if len(features) != len(ratings) {
		return nil, errors.NewDimensionError("dataset.FromRows", len(features), len(ratings), 0)
	}
	dims := 0
	if len(features) > 0 {
		dims = len(features[0])
	}
	ds := NewBaselearnerDataset(dims)
	for i := range features {
		if err := ds.AddInstance(BaselearnerInstance{Context: features[i], Rating: ratings[i]}); err != nil {
			return nil, err
		}
	}
	ds.Seal()
	return ds, nil
}

// Package aggregation combines a multiset of label rankings into a single
// consensus ranking.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// AggregatedRankingModel holds a consensus ranking over all labels.
type AggregatedRankingModel struct {
	name      string
	consensus *ranking.Ranking
	scores    map[int]float64
}

// Name implements model.LearningModel.
func (m *AggregatedRankingModel) Name() string { return m.name }

// FeatureDimensions is 0: aggregation models take no features.
func (m *AggregatedRankingModel) FeatureDimensions() int { return 0 }

// Consensus returns a copy of the aggregated ranking.
func (m *AggregatedRankingModel) Consensus() *ranking.Ranking { return m.consensus.Copy() }

// Score returns the aggregation score of label and whether it was ranked.
func (m *AggregatedRankingModel) Score(label int) (float64, bool) {
	s, ok := m.scores[label]
	return s, ok
}

// PredictRanking orders the labels of inst by the consensus.
func (m *AggregatedRankingModel) PredictRanking(inst dataset.RankAggregationInstance) (*ranking.Ranking, error) {
	if inst.Ranking == nil {
		return nil, errors.NewPredictionFailedError(m.name, "instance has no ranking", nil)
	}
	wanted := make(map[int]struct{}, inst.Ranking.Len())
	for _, o := range inst.Ranking.Objects {
		if !m.consensus.Contains(o) {
			return nil, errors.NewPredictionFailedError(m.name,
				fmt.Sprintf("label %d was not part of the training labels", o), nil)
		}
		wanted[o] = struct{}{}
	}
	objects := make([]int, 0, len(wanted))
	for _, o := range m.consensus.Objects {
		if _, ok := wanted[o]; ok {
			objects = append(objects, o)
		}
	}
	return ranking.NewLinear(objects...), nil
}

// totalOrders checks that every ranking is a strict total order and returns
// the instances together with the sorted label set.
func totalOrders(tag string, logger log.Logger, ds *dataset.RankAggregationDataset) ([]dataset.RankAggregationInstance, []int, error) {
	labels := append([]int(nil), ds.Header().Labels...)
	if len(labels) == 0 || ds.NumberOfInstances() == 0 {
		return nil, nil, errors.WithStack(errors.ErrEmptyData)
	}
	sort.Ints(labels)

	instances := ds.Instances()
	for i, inst := range instances {
		if !inst.Ranking.IsTotalOrder() {
			logger.Warn("Ranking is not a total order",
				log.ErrorCodeKey, log.ErrorUnsupportedRelation,
				"ranking", inst.Ranking.String(),
			)
			return nil, nil, errors.NewValueError(tag+".Train",
				fmt.Sprintf("ranking %d (%s) may only contain %q relations", i, inst.Ranking, ranking.Ordered))
		}
	}
	return instances, labels, nil
}

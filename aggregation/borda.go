package aggregation

import (
	"sort"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// BordaCountConfiguration controls the handling of unranked labels.
type BordaCountConfiguration struct {
	CreditMissingLabels bool `json:"credit_missing_labels"`
}

// NewBordaCountConfiguration returns an unfilled configuration.
func NewBordaCountConfiguration() *BordaCountConfiguration { return &BordaCountConfiguration{} }

func (c *BordaCountConfiguration) Kind() string            { return "borda_count" }
func (c *BordaCountConfiguration) DefaultFileName() string { return "borda_count.json" }
func (c *BordaCountConfiguration) Validate() error         { return nil }
func (c *BordaCountConfiguration) Fields() []config.Field {
	return []config.Field{{Name: "credit_missing_labels", Target: &c.CreditMissingLabels}}
}
func (c *BordaCountConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

// BordaCount ranks labels by their accumulated positional score.
type BordaCount struct {
	*algorithm.Trainable[*BordaCountConfiguration]
}

// NewBordaCount creates a Borda count aggregator.
func NewBordaCount(opts ...algorithm.Option) *BordaCount {
	b := &BordaCount{}
	b.Trainable = algorithm.NewTrainable("BordaCount", dataset.KindRankAggregation,
		NewBordaCountConfiguration, b.train, opts...)
	return b
}

// train scores the label at 0-indexed position p of a ranking observed count
// times with count·(n − p), n being the size of the label set. With
// credit_missing_labels the mass of the unfilled positions is shared evenly
// by the labels absent from that ranking. Equal scores are ordered by
// ascending label id.
func (b *BordaCount) train(cfg *BordaCountConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.RankAggregationDataset](b.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances, labels, err := totalOrders(b.Tag(), b.Logger(), data)
	if err != nil {
		return nil, err
	}

	n := len(labels)
	scores := make(map[int]float64, n)
	for _, l := range labels {
		scores[l] = 0
	}

	for _, inst := range instances {
		count := float64(inst.Count)
		for pos, label := range inst.Ranking.Objects {
			scores[label] += count * float64(n-pos)
		}
		if !cfg.CreditMissingLabels || inst.Ranking.Len() == n {
			continue
		}

		var leftover float64
		for pos := inst.Ranking.Len(); pos < n; pos++ {
			leftover += count * float64(n-pos)
		}
		missing := make([]int, 0, n-inst.Ranking.Len())
		for _, l := range labels {
			if !inst.Ranking.Contains(l) {
				missing = append(missing, l)
			}
		}
		share := leftover / float64(len(missing))
		for _, l := range missing {
			scores[l] += share
		}
	}

	order := append([]int(nil), labels...)
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	b.Logger().Debug("Borda count aggregated", log.LabelsKey, n)
	return &AggregatedRankingModel{
		name:      "BordaCountModel",
		consensus: ranking.NewLinear(order...),
		scores:    scores,
	}, nil
}

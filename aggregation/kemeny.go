package aggregation

import (
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// ExhaustiveThreshold is the label count from which Kemeny-Young switches
// from exhaustive permutation search to the row-sum heuristic.
const ExhaustiveThreshold = 6

// KemenyYoungConfiguration has no parameters.
type KemenyYoungConfiguration struct{}

// NewKemenyYoungConfiguration returns an empty configuration.
func NewKemenyYoungConfiguration() *KemenyYoungConfiguration { return &KemenyYoungConfiguration{} }

func (c *KemenyYoungConfiguration) Kind() string            { return "kemeny_young" }
func (c *KemenyYoungConfiguration) DefaultFileName() string { return "kemeny_young.json" }
func (c *KemenyYoungConfiguration) Fields() []config.Field  { return nil }
func (c *KemenyYoungConfiguration) Validate() error         { return nil }
func (c *KemenyYoungConfiguration) Clone() config.Configuration {
	return &KemenyYoungConfiguration{}
}

// KemenyYoung searches the ordering that agrees most with the pairwise
// majorities of the input rankings.
type KemenyYoung struct {
	*algorithm.Trainable[*KemenyYoungConfiguration]
}

// NewKemenyYoung creates a Kemeny-Young aggregator.
func NewKemenyYoung(opts ...algorithm.Option) *KemenyYoung {
	k := &KemenyYoung{}
	k.Trainable = algorithm.NewTrainable("KemenyYoung", dataset.KindRankAggregation,
		NewKemenyYoungConfiguration, k.train, opts...)
	return k
}

func (k *KemenyYoung) train(_ *KemenyYoungConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.RankAggregationDataset](k.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances, labels, err := totalOrders(k.Tag(), k.Logger(), data)
	if err != nil {
		return nil, err
	}

	m := reduce(pairwiseWins(instances, labels))

	var order []int
	if len(labels) < ExhaustiveThreshold {
		order = exhaustiveOrder(m)
	} else {
		order = rowSumOrder(m)
	}
	k.Logger().Debug("Kemeny-Young aggregated",
		log.LabelsKey, len(labels),
		"exhaustive", len(labels) < ExhaustiveThreshold,
	)

	objects := make([]int, len(order))
	scores := make(map[int]float64, len(order))
	for pos, idx := range order {
		objects[pos] = labels[idx]
		scores[labels[idx]] = rowSum(m, idx)
	}
	return &AggregatedRankingModel{
		name:      "KemenyYoungModel",
		consensus: ranking.NewLinear(objects...),
		scores:    scores,
	}, nil
}

// PairwiseMatrix returns the sorted label set of ds and its reduced pairwise
// matrix: M[i][j] holds by how much labels[i] beats labels[j], or 0.
func PairwiseMatrix(ds *dataset.RankAggregationDataset) ([]int, [][]float64, error) {
	instances, labels, err := totalOrders("KemenyYoung", log.GetLogger(), ds)
	if err != nil {
		return nil, nil, err
	}
	return labels, reduce(pairwiseWins(instances, labels)), nil
}

// PairwiseScore sums M[order[i]][order[j]] over all i < j.
func PairwiseScore(m [][]float64, order []int) float64 {
	var score float64
	for i := range order {
		for j := i + 1; j < len(order); j++ {
			score += m[order[i]][order[j]]
		}
	}
	return score
}

// pairwiseWins counts, for each ordered pair, how often the first label was
// ranked above the second.
func pairwiseWins(instances []dataset.RankAggregationInstance, labels []int) [][]float64 {
	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	m := make([][]float64, len(labels))
	for i := range m {
		m[i] = make([]float64, len(labels))
	}
	for _, inst := range instances {
		objects := inst.Ranking.Objects
		for a := range objects {
			for b := a + 1; b < len(objects); b++ {
				m[index[objects[a]]][index[objects[b]]] += float64(inst.Count)
			}
		}
	}
	return m
}

// reduce keeps, for every pair, only the margin of the majority direction.
func reduce(m [][]float64) [][]float64 {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] >= m[j][i] {
				m[i][j] -= m[j][i]
				m[j][i] = 0
			} else {
				m[j][i] -= m[i][j]
				m[i][j] = 0
			}
		}
	}
	return m
}

// exhaustiveOrder scores every permutation in lexicographic order and keeps
// the first one with the maximum score.
func exhaustiveOrder(m [][]float64) []int {
	n := len(m)
	perms := combin.Permutations(n, n)
	sort.Slice(perms, func(a, b int) bool {
		for i := range perms[a] {
			if perms[a][i] != perms[b][i] {
				return perms[a][i] < perms[b][i]
			}
		}
		return false
	})

	var best []int
	bestScore := 0.0
	for _, p := range perms {
		if s := PairwiseScore(m, p); best == nil || s > bestScore {
			best, bestScore = p, s
		}
	}
	return best
}

// rowSumOrder sorts labels by total outgoing margin, descending, with ties in
// ascending label order.
func rowSumOrder(m [][]float64) []int {
	order := make([]int, len(m))
	sums := make([]float64, len(m))
	for i := range order {
		order[i] = i
		sums[i] = rowSum(m, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sums[order[a]] > sums[order[b]]
	})
	return order
}

func rowSum(m [][]float64, i int) float64 {
	var s float64
	for _, v := range m[i] {
		s += v
	}
	return s
}

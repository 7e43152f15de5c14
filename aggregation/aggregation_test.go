package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

func testOptions() []algorithm.Option {
	logger, _ := log.NewTestLogger(log.LevelError)
	return []algorithm.Option{algorithm.WithLogger(logger)}
}

type observed struct {
	objects []int
	count   int
}

func rankings(t *testing.T, labels []int, obs ...observed) *dataset.RankAggregationDataset {
	t.Helper()
	ds := dataset.NewRankAggregationDataset(labels)
	for _, o := range obs {
		require.NoError(t, ds.AddInstance(dataset.RankAggregationInstance{
			Ranking: ranking.NewLinear(o.objects...),
			Count:   o.count,
		}))
	}
	return ds
}

func TestBordaCount_ScoresOpposedRankings(t *testing.T) {
	ds := rankings(t, []int{1, 2, 3},
		observed{[]int{1, 2, 3}, 1},
		observed{[]int{3, 2, 1}, 1},
	)
	m, err := NewBordaCount(testOptions()...).Train(ds)
	require.NoError(t, err)
	agg := m.(*AggregatedRankingModel)

	for _, label := range []int{1, 2, 3} {
		score, ok := agg.Score(label)
		require.True(t, ok)
		assert.Equal(t, 4.0, score, "label %d", label)
	}
	// 三者同点なのでラベル昇順
	assert.Equal(t, []int{1, 2, 3}, agg.Consensus().Objects)
}

func TestBordaCount_Counts(t *testing.T) {
	ds := rankings(t, []int{1, 2, 3},
		observed{[]int{1, 2, 3}, 1},
		observed{[]int{3, 2, 1}, 3},
	)
	m, err := NewBordaCount(testOptions()...).Train(ds)
	require.NoError(t, err)
	agg := m.(*AggregatedRankingModel)

	assert.Equal(t, []int{3, 2, 1}, agg.Consensus().Objects)
	s3, _ := agg.Score(3)
	assert.Equal(t, 10.0, s3)
}

func TestBordaCount_CreditMissingLabels(t *testing.T) {
	ds := rankings(t, []int{1, 2, 3, 4}, observed{[]int{2, 1}, 1})

	plain, err := NewBordaCount(testOptions()...).Train(ds)
	require.NoError(t, err)
	s3, _ := plain.(*AggregatedRankingModel).Score(3)
	assert.Equal(t, 0.0, s3)

	b := NewBordaCount(testOptions()...)
	require.NoError(t, b.SetParameters([]byte(`{"credit_missing_labels": true}`)))
	m, err := b.Train(ds)
	require.NoError(t, err)
	agg := m.(*AggregatedRankingModel)

	// 残りの位置の得点 2 + 1 を未出現の 3, 4 で等分
	for _, label := range []int{3, 4} {
		s, _ := agg.Score(label)
		assert.Equal(t, 1.5, s)
	}
	s2, _ := agg.Score(2)
	assert.Equal(t, 4.0, s2)
	assert.Equal(t, []int{2, 1, 3, 4}, agg.Consensus().Objects)
}

func TestAggregation_RejectsNonTotalOrders(t *testing.T) {
	tied, err := ranking.New([]int{1, 2, 3}, []ranking.Relation{ranking.Ordered, ranking.Equal})
	require.NoError(t, err)
	ds := dataset.NewRankAggregationDataset([]int{1, 2, 3})
	require.NoError(t, ds.AddInstance(dataset.RankAggregationInstance{Ranking: tied, Count: 1}))

	for _, alg := range []algorithm.TrainableAlgorithm{
		NewBordaCount(testOptions()...),
		NewKemenyYoung(testOptions()...),
	} {
		t.Run(alg.Tag(), func(t *testing.T) {
			_, err := alg.Train(ds)
			require.Error(t, err)
			var trainErr *errors.TrainModelsFailedError
			require.True(t, errors.As(err, &trainErr))
			var valueErr *errors.ValueError
			assert.True(t, errors.As(err, &valueErr))
		})
	}
}

func TestAggregation_RejectsEmptyDataset(t *testing.T) {
	_, err := NewKemenyYoung(testOptions()...).Train(dataset.NewRankAggregationDataset([]int{1, 2}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestAggregation_RejectsOtherDatasetKinds(t *testing.T) {
	_, err := NewBordaCount(testOptions()...).Train(dataset.NewBaselearnerDataset(1))
	var kindErr *errors.DatasetKindError
	assert.True(t, errors.As(err, &kindErr))
}

func fiveLabelRankings(t *testing.T) *dataset.RankAggregationDataset {
	return rankings(t, []int{10, 20, 30, 40, 50},
		observed{[]int{10, 20, 30, 40, 50}, 2},
		observed{[]int{30, 10, 50, 20, 40}, 3},
		observed{[]int{50, 40, 30, 20, 10}, 1},
		observed{[]int{20, 30, 10, 50, 40}, 2},
	)
}

func TestKemenyYoung_ExhaustiveIsOptimal(t *testing.T) {
	ds := fiveLabelRankings(t)
	m, err := NewKemenyYoung(testOptions()...).Train(ds)
	require.NoError(t, err)
	consensus := m.(*AggregatedRankingModel).Consensus()
	require.True(t, consensus.IsTotalOrder())

	labels, pairwise, err := PairwiseMatrix(ds)
	require.NoError(t, err)
	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	chosen := make([]int, consensus.Len())
	for i, o := range consensus.Objects {
		chosen[i] = index[o]
	}
	best := PairwiseScore(pairwise, chosen)

	perms := combin.Permutations(5, 5)
	require.Len(t, perms, 120)
	for _, p := range perms {
		assert.GreaterOrEqual(t, best, PairwiseScore(pairwise, p))
	}
}

func TestKemenyYoung_ExhaustiveTieTakesSmallestPermutation(t *testing.T) {
	// 完全に対立する二つの順位: 全順列が同点
	ds := rankings(t, []int{1, 2, 3},
		observed{[]int{3, 1, 2}, 1},
		observed{[]int{2, 1, 3}, 1},
	)
	m, err := NewKemenyYoung(testOptions()...).Train(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, m.(*AggregatedRankingModel).Consensus().Objects)
}

func TestKemenyYoung_HeuristicAboveThreshold(t *testing.T) {
	labels := []int{1, 2, 3, 4, 5, 6, 7}
	ds := rankings(t, labels,
		observed{[]int{7, 6, 5, 4, 3, 2, 1}, 3},
		observed{[]int{1, 2, 3, 4, 5, 6, 7}, 1},
		observed{[]int{7, 4}, 2},
	)
	m, err := NewKemenyYoung(testOptions()...).Train(ds)
	require.NoError(t, err)
	consensus := m.(*AggregatedRankingModel).Consensus()

	require.Equal(t, 7, consensus.Len())
	require.NoError(t, consensus.Validate())
	for _, l := range labels {
		assert.True(t, consensus.Contains(l), "label %d", l)
	}
	assert.Equal(t, 7, consensus.Objects[0])
}

// cycleRankings は 1 が 2 に w 差で勝ち、2 が残り全てに勝ち、残り全てが 1 に勝つ循環を作る
func cycleRankings(t *testing.T, labels []int, w int) *dataset.RankAggregationDataset {
	t.Helper()
	obs := []observed{{[]int{1, 2}, w}}
	for _, z := range labels[2:] {
		obs = append(obs, observed{[]int{2, z}, 1}, observed{[]int{z, 1}, 1})
	}
	return rankings(t, labels, obs...)
}

func indexOrder(labels, objects []int) []int {
	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	order := make([]int, len(objects))
	for i, o := range objects {
		order[i] = index[o]
	}
	return order
}

func TestKemenyYoung_FiveLabelsSearchesExhaustively(t *testing.T) {
	ds := cycleRankings(t, []int{1, 2, 3, 4, 5}, 2)
	labels, pairwise, err := PairwiseMatrix(ds)
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 2, 3, 4}, rowSumOrder(pairwise))

	m, err := NewKemenyYoung(testOptions()...).Train(ds)
	require.NoError(t, err)
	got := m.(*AggregatedRankingModel).Consensus().Objects
	assert.Equal(t, []int{2, 3, 4, 5, 1}, got)
	assert.Equal(t, 6.0, PairwiseScore(pairwise, indexOrder(labels, got)))
	assert.Equal(t, 3.0, PairwiseScore(pairwise, rowSumOrder(pairwise)))
}

func TestKemenyYoung_SixLabelsUsesRowSums(t *testing.T) {
	ds := cycleRankings(t, []int{1, 2, 3, 4, 5, 6}, 3)
	labels, pairwise, err := PairwiseMatrix(ds)
	require.NoError(t, err)

	best := 0.0
	for _, p := range combin.Permutations(6, 6) {
		if s := PairwiseScore(pairwise, p); s > best {
			best = s
		}
	}
	require.Equal(t, 8.0, best)

	m, err := NewKemenyYoung(testOptions()...).Train(ds)
	require.NoError(t, err)
	got := m.(*AggregatedRankingModel).Consensus().Objects
	assert.Equal(t, []int{2, 1, 3, 4, 5, 6}, got)
	assert.Equal(t, 4.0, PairwiseScore(pairwise, indexOrder(labels, got)))
}

func TestKemenyYoung_ReducedMatrix(t *testing.T) {
	ds := rankings(t, []int{1, 2},
		observed{[]int{1, 2}, 3},
		observed{[]int{2, 1}, 1},
	)
	labels, m, err := PairwiseMatrix(ds)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, labels)
	assert.Equal(t, [][]float64{{0, 2}, {0, 0}}, m)
}

func TestAggregatedRankingModel_PredictRanking(t *testing.T) {
	m, err := NewKemenyYoung(testOptions()...).Train(fiveLabelRankings(t))
	require.NoError(t, err)
	agg, ok := m.(model.AggregationModel)
	require.True(t, ok)
	assert.Equal(t, 0, agg.FeatureDimensions())

	consensus := agg.Consensus()
	subset := []int{consensus.Objects[4], consensus.Objects[1]}
	pred, err := agg.PredictRanking(dataset.RankAggregationInstance{
		Ranking: ranking.NewLinear(subset...), Count: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{consensus.Objects[1], consensus.Objects[4]}, pred.Objects)

	again, err := agg.PredictRanking(dataset.RankAggregationInstance{
		Ranking: ranking.NewLinear(subset...), Count: 1,
	})
	require.NoError(t, err)
	assert.True(t, pred.Equal(again))

	_, err = agg.PredictRanking(dataset.RankAggregationInstance{
		Ranking: ranking.NewLinear(99), Count: 1,
	})
	var predErr *errors.PredictionFailedError
	assert.True(t, errors.As(err, &predErr))
}

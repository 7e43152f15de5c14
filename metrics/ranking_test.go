package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/preflearn/core/ranking"
)

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]float64{1, 0, 1, 1}, []float64{1, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)

	loss, err := ZeroOneLoss([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, loss)

	_, err = Accuracy([]float64{1}, []float64{1, 0})
	assert.Error(t, err)
}

func TestRankCorrelations(t *testing.T) {
	truth := ranking.NewLinear(1, 2, 3, 4)
	tests := []struct {
		name         string
		pred         *ranking.Ranking
		wantKendall  float64
		wantSpearman float64
	}{
		{"identical", ranking.NewLinear(1, 2, 3, 4), 1, 1},
		{"reversed", ranking.NewLinear(4, 3, 2, 1), -1, -1},
		{"one swap", ranking.NewLinear(2, 1, 3, 4), 4.0 / 6.0, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tau, err := KendallTau(truth, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantKendall, tau, 1e-12)

			rho, err := Spearman(truth, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSpearman, rho, 1e-12)
		})
	}
}

func TestRankCorrelations_RequireSameObjects(t *testing.T) {
	_, err := KendallTau(ranking.NewLinear(1, 2), ranking.NewLinear(1, 3))
	assert.Error(t, err)
	_, err = Spearman(ranking.NewLinear(1, 2), ranking.NewLinear(1))
	assert.Error(t, err)
}

func TestZeroOneRankingLoss(t *testing.T) {
	truth := []*ranking.Ranking{ranking.NewLinear(1, 2), ranking.NewLinear(3, 4)}
	pred := []*ranking.Ranking{ranking.NewLinear(1, 2), ranking.NewLinear(4, 3)}

	loss, err := ZeroOneRankingLoss(truth, pred)
	require.NoError(t, err)
	assert.Equal(t, 0.5, loss)

	mean, err := MeanKendallTau(truth, pred)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mean, 1e-12)

	_, err = ZeroOneRankingLoss(truth, pred[:1])
	assert.Error(t, err)
}

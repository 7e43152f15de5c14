package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/preflearn/core/ranking"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// positions returns the positions of the objects of truth in truth and pred.
// Both rankings must contain the same objects.
func positions(op string, truth, pred *ranking.Ranking) ([]float64, []float64, error) {
	if truth == nil || pred == nil || truth.Len() == 0 {
		return nil, nil, errors.NewValueError(op, "empty ranking")
	}
	if truth.Len() != pred.Len() {
		return nil, nil, errors.NewDimensionError(op, truth.Len(), pred.Len(), 0)
	}
	a := make([]float64, truth.Len())
	b := make([]float64, truth.Len())
	for i, o := range truth.Objects {
		p := pred.Position(o)
		if p < 0 {
			return nil, nil, errors.NewValueError(op, fmt.Sprintf("object %d is missing from the predicted ranking", o))
		}
		a[i] = float64(i)
		b[i] = float64(p)
	}
	return a, b, nil
}

// KendallTau は一致ペアと不一致ペアの差をペア数で割った値を返す。
// 同じ順位なら 1、逆順なら -1。
func KendallTau(truth, pred *ranking.Ranking) (float64, error) {
	a, b, err := positions("KendallTau", truth, pred)
	if err != nil {
		return 0, err
	}
	n := len(a)
	if n < 2 {
		return 1, nil
	}
	var concordant, discordant int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (a[i]-a[j])*(b[i]-b[j]) > 0 {
				concordant++
			} else {
				discordant++
			}
		}
	}
	return float64(concordant-discordant) / float64(n*(n-1)/2), nil
}

// Spearman は順位どうしのピアソン相関（スピアマンの順位相関）を返す
func Spearman(truth, pred *ranking.Ranking) (float64, error) {
	a, b, err := positions("Spearman", truth, pred)
	if err != nil {
		return 0, err
	}
	if len(a) < 2 {
		return 1, nil
	}
	return stat.Correlation(a, b, nil), nil
}

// ZeroOneRankingLoss は予測ランキングが正解と完全一致しない割合を返す
func ZeroOneRankingLoss(truth, pred []*ranking.Ranking) (float64, error) {
	if len(truth) == 0 {
		return 0, errors.NewValueError("ZeroOneRankingLoss", "no rankings")
	}
	if len(pred) != len(truth) {
		return 0, errors.NewDimensionError("ZeroOneRankingLoss", len(truth), len(pred), 0)
	}
	wrong := 0
	for i := range truth {
		if !truth[i].Equal(pred[i]) {
			wrong++
		}
	}
	return float64(wrong) / float64(len(truth)), nil
}

// MeanKendallTau は対応するランキング組ごとの KendallTau の平均を返す
func MeanKendallTau(truth, pred []*ranking.Ranking) (float64, error) {
	if len(truth) == 0 {
		return 0, errors.NewValueError("MeanKendallTau", "no rankings")
	}
	if len(pred) != len(truth) {
		return 0, errors.NewDimensionError("MeanKendallTau", len(truth), len(pred), 0)
	}
	taus := make([]float64, len(truth))
	for i := range truth {
		tau, err := KendallTau(truth[i], pred[i])
		if err != nil {
			return 0, err
		}
		taus[i] = tau
	}
	return stat.Mean(taus, nil), nil
}

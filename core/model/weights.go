package model

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// LinearWeights は線形モデルの重みと切片を保持する
//
// 線形回帰・パーセプトロン・Pegasos・ロジスティック分類のモデルが埋め込む。
type LinearWeights struct {
	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`
}

// NewLinearWeights は重みをコピーして LinearWeights を作成
func NewLinearWeights(coefficients []float64, intercept float64) LinearWeights {
	return LinearWeights{
		Coefficients: append([]float64(nil), coefficients...),
		Intercept:    intercept,
	}
}

// FeatureDimensions は重みベクトルの長さ
func (w LinearWeights) FeatureDimensions() int {
	return len(w.Coefficients)
}

// Decision は w·x + b を計算する。次元は呼び出し側で確認済みであること
func (w LinearWeights) Decision(x []float64) float64 {
	return floats.Dot(w.Coefficients, x) + w.Intercept
}

// Bias は切片を返す
func (w LinearWeights) Bias() (float64, error) {
	return w.Intercept, nil
}

// WeightVector は重みのコピーを返す
func (w LinearWeights) WeightVector() ([]float64, error) {
	return append([]float64(nil), w.Coefficients...), nil
}

// Validate は重みの数値的妥当性を検証
func (w LinearWeights) Validate() error {
	if err := errors.CheckNumericalStability("LinearWeights.Validate", w.Coefficients, 0); err != nil {
		return err
	}
	return errors.CheckScalar("LinearWeights.Validate", w.Intercept, 0)
}

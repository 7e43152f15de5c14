// Package metrics evaluates predictions of trained models: regression
// errors, classification accuracy and ranking agreement.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// checkPair は入力の長さを検証する
func checkPair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	// 全変動が0の場合（すべてのyTrueが同じ値）
	if stat.Variance(yTrue, nil) == 0 || len(yTrue) == 1 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return stat.RSquaredFrom(yPred, yTrue, nil), nil
}

// Package linear は線形のベースラーナー（最小二乗回帰、パーセプトロン、
// Pegasos、ロジスティック分類）を提供します。
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/core/parallel"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LinearRegression は最小二乗法による線形回帰
type LinearRegression struct {
	*algorithm.Trainable[*LinearRegressionConfiguration]
}

// NewLinearRegression は新しい線形回帰アルゴリズムを作成する
func NewLinearRegression(opts ...algorithm.Option) *LinearRegression {
	lr := &LinearRegression{}
	lr.Trainable = algorithm.NewTrainable("LinearRegression", dataset.KindBaselearner,
		NewLinearRegressionConfiguration, lr.train, opts...)
	return lr
}

// train は [1, X] のQR分解から係数を求める
// ランク落ちした計画行列は近似せずにエラーとする
func (lr *LinearRegression) train(_ *LinearRegressionConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.BaselearnerDataset](lr.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances := data.Instances()
	r, c := len(instances), data.Header().ContextDimensions
	if r == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if r < c+1 {
		return nil, errors.Wrapf(errors.ErrSingularMatrix,
			"LinearRegression: %d instances cannot determine %d coefficients", r, c+1)
	}

	// 切片項のために X に 1 の列を追加
	// X_with_intercept = [1, X]
	XWithIntercept := mat.NewDense(r, c+1, nil)
	y := mat.NewDense(r, 1, nil)
	parallel.RangeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j, v := range instances[i].Context {
				XWithIntercept.Set(i, j+1, v)
			}
			y.Set(i, 0, instances[i].Rating)
		}
	})

	// Q^T b を作り、上三角系を後退代入で解く
	var qr mat.QR
	qr.Factorize(XWithIntercept)
	solution := mat.NewDense(c+1, 1, nil)
	if err := qr.SolveTo(solution, false, y); err != nil {
		return nil, errors.Wrapf(errors.ErrSingularMatrix, "LinearRegression: QR solve: %v", err)
	}

	coefficients := make([]float64, c)
	for i := range coefficients {
		coefficients[i] = solution.At(i+1, 0)
	}
	weights := model.NewLinearWeights(coefficients, solution.At(0, 0))
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &LinearRegressionModel{LinearWeights: weights}, nil
}

// LinearRegressionModel は学習済みの線形回帰モデル
type LinearRegressionModel struct {
	model.LinearWeights
}

// Name implements model.LearningModel.
func (m *LinearRegressionModel) Name() string { return "LinearRegressionModel" }

// Predict は w·x + b を返す
func (m *LinearRegressionModel) Predict(inst dataset.BaselearnerInstance) (float64, error) {
	if err := model.CheckDimensions(m, "LinearRegressionModel.Predict", len(inst.Context)); err != nil {
		return 0, err
	}
	return m.Decision(inst.Context), nil
}

// PredictDataset は全インスタンスを予測する
func (m *LinearRegressionModel) PredictDataset(ds *dataset.BaselearnerDataset) ([]float64, error) {
	return model.PredictAll(ds.Instances(), m.Predict)
}

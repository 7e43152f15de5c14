// Package preprocessing transforms the feature vectors of datasets before
// training.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// StandardScaler は特徴量を平均0、標準偏差1に変換する
//
// FitStandardScaler で生成した後は不変で、複数のデータセットに適用できる。
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// ScalerOption は StandardScaler の計算方法を変更する
type ScalerOption func(*scalerOptions)

type scalerOptions struct {
	withMean bool
	withStd  bool
}

// WithoutMean は平均を引かない
func WithoutMean() ScalerOption { return func(o *scalerOptions) { o.withMean = false } }

// WithoutStd は標準偏差で割らない
func WithoutStd() ScalerOption { return func(o *scalerOptions) { o.withStd = false } }

// FitStandardScaler は ds の各特徴量の平均と標準偏差（母分散）を計算する
//
// 使用例:
//
//	scaler, err := preprocessing.FitStandardScaler(train)
//	scaled, err := scaler.Transform(train)
func FitStandardScaler(ds *dataset.BaselearnerDataset, opts ...ScalerOption) (*StandardScaler, error) {
	o := scalerOptions{withMean: true, withStd: true}
	for _, opt := range opts {
		opt(&o)
	}

	n := ds.NumberOfInstances()
	c := ds.Header().ContextDimensions
	if n == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s := &StandardScaler{mean: make([]float64, c), scale: make([]float64, c)}
	column := make([]float64, n)
	instances := ds.Instances()
	for j := 0; j < c; j++ {
		for i, inst := range instances {
			column[i] = inst.Context[j]
		}
		mean := stat.Mean(column, nil)
		if o.withMean {
			s.mean[j] = mean
		}
		s.scale[j] = 1
		if o.withStd {
			// 標準偏差が0に近い場合は1のまま（ゼロ除算を避ける）
			if sd := math.Sqrt(stat.MomentAbout(2, column, mean, nil)); sd >= 1e-8 {
				s.scale[j] = sd
			}
		}
	}
	return s, nil
}

// Mean は各特徴量の平均値のコピーを返す
func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale は各特徴量の標準偏差のコピーを返す
func (s *StandardScaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

// TransformVector は1つの特徴ベクトルを標準化する
func (s *StandardScaler) TransformVector(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, errors.NewDimensionError("StandardScaler.Transform", len(s.mean), len(x), 1)
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out, nil
}

// InverseTransformVector は標準化された特徴ベクトルを元のスケールに戻す
func (s *StandardScaler) InverseTransformVector(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", len(s.mean), len(x), 1)
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = v*s.scale[j] + s.mean[j]
	}
	return out, nil
}

// Transform は ds の全インスタンスを標準化した封印済みデータセットを返す。
// 評価値はそのまま引き継ぐ。
func (s *StandardScaler) Transform(ds *dataset.BaselearnerDataset) (*dataset.BaselearnerDataset, error) {
	out := dataset.NewBaselearnerDataset(len(s.mean))
	for _, inst := range ds.Instances() {
		x, err := s.TransformVector(inst.Context)
		if err != nil {
			return nil, err
		}
		if err := out.AddInstance(dataset.BaselearnerInstance{Context: x, Rating: inst.Rating}); err != nil {
			return nil, err
		}
	}
	out.Seal()
	return out, nil
}

package linear

import (
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// PositiveLabel は正例の評価値。それ以外の値は全て負例として扱う
const PositiveLabel = 1.0

// NegativeLabel は負例の予測値
const NegativeLabel = 0.0

// signedLabel は評価値を {-1, +1} に変換する
func signedLabel(rating float64) float64 {
	if rating == PositiveLabel {
		return 1
	}
	return -1
}

// ClassificationModel は w·x + b の符号で分類する線形モデル
type ClassificationModel struct {
	model.LinearWeights
	name string
}

// newClassificationModel は学習結果の重みを検査してからモデルを作る
func newClassificationModel(name string, w []float64, b float64) (*ClassificationModel, error) {
	weights := model.NewLinearWeights(w, b)
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &ClassificationModel{LinearWeights: weights, name: name}, nil
}

// Name implements model.LearningModel.
func (m *ClassificationModel) Name() string { return m.name }

// Predict は w·x + b >= 0 なら PositiveLabel、そうでなければ NegativeLabel を返す
func (m *ClassificationModel) Predict(inst dataset.BaselearnerInstance) (float64, error) {
	if err := model.CheckDimensions(m, m.name+".Predict", len(inst.Context)); err != nil {
		return 0, err
	}
	if m.Decision(inst.Context) >= 0 {
		return PositiveLabel, nil
	}
	return NegativeLabel, nil
}

// PredictDataset は全インスタンスを分類する
func (m *ClassificationModel) PredictDataset(ds *dataset.BaselearnerDataset) ([]float64, error) {
	return model.PredictAll(ds.Instances(), m.Predict)
}

func classificationInstances(ds *dataset.BaselearnerDataset) ([]dataset.BaselearnerInstance, error) {
	instances := ds.Instances()
	if len(instances) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	return instances, nil
}

package linear

import (
	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/optimize"
)

// LogisticClassification はロジスティック損失を勾配降下法で最小化する分類器
//
// 最適化は optimize.GradientDescent に委譲し、入れ子の gradient_descent
// 設定をそのまま渡す。
type LogisticClassification struct {
	*algorithm.Trainable[*LogisticClassificationConfiguration]
}

// NewLogisticClassification は新しいロジスティック分類器を作成する
func NewLogisticClassification(opts ...algorithm.Option) *LogisticClassification {
	l := &LogisticClassification{}
	l.Trainable = algorithm.NewTrainable("LogisticClassification", dataset.KindBaselearner,
		NewLogisticClassificationConfiguration, l.train, opts...)
	return l
}

func (l *LogisticClassification) train(cfg *LogisticClassificationConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.BaselearnerDataset](l.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances, err := classificationInstances(data)
	if err != nil {
		return nil, err
	}

	// 切片は末尾の定数1列の重みとして学習する
	d := data.Header().ContextDimensions
	samples := make([]optimize.Sample, len(instances))
	for i, inst := range instances {
		x := make([]float64, d+1)
		copy(x, inst.Context)
		x[d] = 1
		samples[i] = optimize.Sample{Features: x, Label: signedLabel(inst.Rating), Weight: 1}
	}

	gd := optimize.NewGradientDescent(optimize.LogisticLoss{}, l.Options()...)
	if err := gd.SetConfiguration(&cfg.GradientDescent); err != nil {
		return nil, err
	}
	res, err := gd.Optimize(samples, d+1)
	if err != nil {
		return nil, err
	}

	cm, err := newClassificationModel("LogisticClassificationModel", res.Weights[:d], res.Weights[d])
	if err != nil {
		return nil, err
	}
	return &LogisticClassificationModel{ClassificationModel: cm, threshold: cfg.Threshold}, nil
}

// LogisticClassificationModel は σ(w·x+b) を閾値と比較して分類する
type LogisticClassificationModel struct {
	*ClassificationModel
	threshold float64
}

// Probability は正例である確率 σ(w·x+b) を返す
func (m *LogisticClassificationModel) Probability(inst dataset.BaselearnerInstance) (float64, error) {
	if err := model.CheckDimensions(m, "LogisticClassificationModel.Probability", len(inst.Context)); err != nil {
		return 0, err
	}
	return optimize.Sigmoid(m.Decision(inst.Context)), nil
}

// Predict は確率が threshold 以上なら PositiveLabel を返す
func (m *LogisticClassificationModel) Predict(inst dataset.BaselearnerInstance) (float64, error) {
	p, err := m.Probability(inst)
	if err != nil {
		return 0, err
	}
	if p >= m.threshold {
		return PositiveLabel, nil
	}
	return NegativeLabel, nil
}

// PredictDataset は全インスタンスを分類する
func (m *LogisticClassificationModel) PredictDataset(ds *dataset.BaselearnerDataset) ([]float64, error) {
	return model.PredictAll(ds.Instances(), m.Predict)
}

package linear

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// Perceptron は誤分類時にのみ更新するパーセプトロン
type Perceptron struct {
	*algorithm.Trainable[*PerceptronConfiguration]
}

// NewPerceptron は新しいパーセプトロンを作成する
func NewPerceptron(opts ...algorithm.Option) *Perceptron {
	p := &Perceptron{}
	p.Trainable = algorithm.NewTrainable("Perceptron", dataset.KindBaselearner,
		NewPerceptronConfiguration, p.train, opts...)
	return p
}

// train は iterations エポックの間、y(w·x+b) <= 0 のインスタンスで
// w += η·y·x, b += η·y と更新する。誤分類がなくなったエポックで終了する
func (p *Perceptron) train(cfg *PerceptronConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.BaselearnerDataset](p.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances, err := classificationInstances(data)
	if err != nil {
		return nil, err
	}

	w := make([]float64, data.Header().ContextDimensions)
	b := 0.0
	for epoch := 0; epoch < cfg.Iterations; epoch++ {
		mistakes := 0
		for _, inst := range instances {
			y := signedLabel(inst.Rating)
			if y*(floats.Dot(w, inst.Context)+b) > 0 {
				continue
			}
			floats.AddScaled(w, cfg.LearningRate*y, inst.Context)
			b += cfg.LearningRate * y
			mistakes++
		}
		if mistakes == 0 {
			p.Logger().Debug("Perceptron separated the data", log.IterationKey, epoch+1)
			break
		}
	}
	return newClassificationModel("PerceptronModel", w, b)
}

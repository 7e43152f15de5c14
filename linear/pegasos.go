package linear

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Pegasos はミニバッチ版のPegasos（劣勾配法による線形SVM）
type Pegasos struct {
	*algorithm.Trainable[*PegasosConfiguration]
}

// NewPegasos は新しいPegasosを作成する
func NewPegasos(opts ...algorithm.Option) *Pegasos {
	p := &Pegasos{}
	p.Trainable = algorithm.NewTrainable("Pegasos", dataset.KindBaselearner,
		NewPegasosConfiguration, p.train, opts...)
	return p
}

// train は iterations 回だけ次を繰り返す（t は1始まり）:
//
//  1. 訓練データから subset_size 個を非復元抽出する
//  2. y(w·x+b) < 1 のインスタンスに絞り込む
//  3. step = 1/(λt) として
//     w ← (1 − step·λ)w + (step/|絞り込み後|)·Σ y·x
//     b ← (1 − step·λ)b + (step/|絞り込み後|)·Σ y
//
// 収束判定は行わない。
func (p *Pegasos) train(cfg *PegasosConfiguration, ds dataset.Interface) (model.LearningModel, error) {
	data, err := algorithm.Narrow[*dataset.BaselearnerDataset](p.Tag(), ds)
	if err != nil {
		return nil, err
	}
	instances, err := classificationInstances(data)
	if err != nil {
		return nil, err
	}
	n := len(instances)
	if cfg.SubsetSize > n {
		return nil, errors.NewValueError("Pegasos.Train",
			fmt.Sprintf("subset_size %d exceeds the number of instances %d", cfg.SubsetSize, n))
	}

	rng := p.Rand()
	lambda := cfg.RegularizationParameter
	w := make([]float64, data.Header().ContextDimensions)
	b := 0.0
	sum := make([]float64, len(w))

	for t := 1; t <= cfg.Iterations; t++ {
		subset := rng.Perm(n)[:cfg.SubsetSize]

		for i := range sum {
			sum[i] = 0
		}
		sumY := 0.0
		violated := 0
		for _, idx := range subset {
			inst := instances[idx]
			y := signedLabel(inst.Rating)
			if y*(floats.Dot(w, inst.Context)+b) < 1 {
				floats.AddScaled(sum, y, inst.Context)
				sumY += y
				violated++
			}
		}

		step := 1 / (lambda * float64(t))
		shrink := 1 - step*lambda
		floats.Scale(shrink, w)
		b *= shrink
		if violated > 0 {
			scale := step / float64(violated)
			floats.AddScaled(w, scale, sum)
			b += scale * sumY
		}
		if err := errors.CheckNumericalStability("Pegasos.Update", w, t); err != nil {
			return nil, err
		}
	}
	return newClassificationModel("PegasosModel", w, b)
}

package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// LogisticLoss is the logistic loss for labels in {-1, +1}. Its gradient is
// −mean(w_i·y_i·x_i / (1 + exp(y_i·(w·x_i)))) with w_i the sample weight.
type LogisticLoss struct{}

// Gradient implements Objective.
func (LogisticLoss) Gradient(weights []float64, samples []Sample, grad []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for _, s := range samples {
		margin := s.Label * floats.Dot(weights, s.Features)
		coef := -s.Label * sampleWeight(s) / (1 + errors.StabilizeExp(margin))
		floats.AddScaled(grad, coef, s.Features)
	}
	floats.Scale(1/float64(len(samples)), grad)
}

// Loss implements Objective.
func (LogisticLoss) Loss(weights []float64, samples []Sample) float64 {
	var total float64
	for _, s := range samples {
		margin := s.Label * floats.Dot(weights, s.Features)
		total += sampleWeight(s) * math.Log1p(errors.StabilizeExp(-margin))
	}
	return total / float64(len(samples))
}

// Sigmoid is the logistic function.
func Sigmoid(z float64) float64 {
	return 1 / (1 + errors.StabilizeExp(-z))
}

func sampleWeight(s Sample) float64 {
	if s.Weight == 0 {
		return 1
	}
	return s.Weight
}

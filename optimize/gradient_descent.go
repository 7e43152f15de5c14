// Package optimize provides batch gradient descent with pluggable step
// strategies. The loop decides how long to run; the Step decides how the
// weights move.
package optimize

import (
	"math"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// KindGradientDescent is the configuration kind of GradientDescent.
const KindGradientDescent = "gradient_descent"

// GradientDescentConfiguration controls the stopping criteria and selects the
// step strategy.
type GradientDescentConfiguration struct {
	GradientStep         string         `json:"gradient_step" validate:"required"`
	LearningRate         float64        `json:"learning_rate" validate:"gt=0"`
	IterationMultiplier  int            `json:"iteration_multiplier" validate:"min=1"`
	MinChange            float64        `json:"min_change" validate:"gte=0"`
	RandomInitialization bool           `json:"random_initialization"`
	StepParameters       map[string]any `json:"step_parameters"`

	loader config.ResourceLoader
}

// NewGradientDescentConfiguration returns an unfilled configuration.
func NewGradientDescentConfiguration() *GradientDescentConfiguration {
	return &GradientDescentConfiguration{StepParameters: map[string]any{}}
}

func (c *GradientDescentConfiguration) Kind() string            { return KindGradientDescent }
func (c *GradientDescentConfiguration) DefaultFileName() string { return "gradient_descent.json" }

func (c *GradientDescentConfiguration) Fields() []config.Field {
	return []config.Field{
		{Name: "gradient_step", Target: &c.GradientStep},
		{Name: "learning_rate", Target: &c.LearningRate},
		{Name: "iteration_multiplier", Target: &c.IterationMultiplier},
		{Name: "min_change", Target: &c.MinChange},
		{Name: "random_initialization", Target: &c.RandomInitialization},
		{Name: "step_parameters", Target: &c.StepParameters},
	}
}

// UseResourceLoader sets the loader for the step defaults checked by Validate.
func (c *GradientDescentConfiguration) UseResourceLoader(loader config.ResourceLoader) {
	c.loader = loader
}

// Validate checks that the step is registered and accepts StepParameters.
func (c *GradientDescentConfiguration) Validate() error {
	if !HasStep(c.GradientStep) {
		return errors.NewParameterValidationError(c.Kind(), "gradient_step", "unknown gradient step", c.GradientStep)
	}
	if _, err := NewStep(c.GradientStep, c.StepParameters, c.loader); err != nil {
		return errors.WrapParameterValidationError(c.Kind(), "step_parameters", err)
	}
	return nil
}

func (c *GradientDescentConfiguration) Clone() config.Configuration {
	cp := *c
	cp.StepParameters = make(map[string]any, len(c.StepParameters))
	for k, v := range c.StepParameters {
		cp.StepParameters[k] = v
	}
	return &cp
}

// Sample is one (features, label, weight) training tuple. A zero Weight is
// read as 1.
type Sample struct {
	Features []float64
	Label    float64
	Weight   float64
}

// Objective computes the gradient of a loss over the full sample list.
type Objective interface {
	// Gradient writes the gradient at weights into grad.
	Gradient(weights []float64, samples []Sample, grad []float64)
	// Loss evaluates the loss at weights.
	Loss(weights []float64, samples []Sample) float64
}

// Result is the outcome of one optimisation run.
type Result struct {
	Weights    []float64
	Iterations int
	LastChange float64
	Converged  bool
}

// GradientDescent minimises an Objective with batch gradient descent.
type GradientDescent struct {
	algorithm.Base[*GradientDescentConfiguration]
	objective Objective
}

// NewGradientDescent creates an optimizer for objective.
func NewGradientDescent(objective Objective, opts ...algorithm.Option) *GradientDescent {
	return &GradientDescent{
		Base:      algorithm.NewBase("GradientDescent", NewGradientDescentConfiguration, opts...),
		objective: objective,
	}
}

// Optimize runs until the iteration budget len(samples)·iteration_multiplier
// is spent or the last weight change is at most min_change. All samples must
// have len(Features) == dimensions. Exhausting the budget emits a
// ConvergenceWarning but is not an error.
func (g *GradientDescent) Optimize(samples []Sample, dimensions int) (Result, error) {
	if len(samples) == 0 {
		return Result{}, errors.WithStack(errors.ErrEmptyData)
	}
	for _, s := range samples {
		if len(s.Features) != dimensions {
			return Result{}, errors.NewDimensionError("GradientDescent.Optimize", dimensions, len(s.Features), 1)
		}
	}

	cfg := g.Configuration()
	step, err := NewStep(cfg.GradientStep, cfg.StepParameters, g.ResourceLoader())
	if err != nil {
		return Result{}, err
	}

	run := &gradientRun{
		cfg:       cfg,
		objective: g.objective,
		step:      step,
		samples:   samples,
		budget:    len(samples) * cfg.IterationMultiplier,
	}
	run.initialize(dimensions, g)

	logger := g.Logger()
	logger.Debug("Gradient descent started",
		log.GradientStepKey, cfg.GradientStep,
		log.LearningRateKey, cfg.LearningRate,
		log.SamplesKey, len(samples),
	)

	for run.shouldRun() {
		run.computeGradient()
		run.step.Update(run.weights, run.gradient, cfg.LearningRate, 1)
		if err := errors.CheckNumericalStability("GradientDescent.Update", run.weights, run.iteration); err != nil {
			return Result{}, err
		}
		run.finishIteration()
	}

	res := Result{
		Weights:    run.weights,
		Iterations: run.iteration,
		LastChange: step.LastChangeNorm(),
		Converged:  step.LastChangeNorm() <= cfg.MinChange,
	}
	if !res.Converged {
		errors.Warn(errors.NewConvergenceWarning("GradientDescent", res.Iterations,
			"iteration budget exhausted before the weight change fell below min_change"))
		logger.Warn("Gradient descent did not converge",
			log.IterationKey, res.Iterations,
			log.ChangeNormKey, res.LastChange,
			log.ErrorCodeKey, log.ErrorConvergence,
		)
	}
	logger.Debug("Gradient descent finished",
		log.IterationKey, res.Iterations,
		log.LossKey, g.objective.Loss(res.Weights, samples),
	)
	return res, nil
}

type gradientRun struct {
	cfg       *GradientDescentConfiguration
	objective Objective
	step      Step
	samples   []Sample
	weights   []float64
	gradient  []float64
	iteration int
	budget    int
}

func (r *gradientRun) initialize(dimensions int, g *GradientDescent) {
	r.weights = make([]float64, dimensions)
	r.gradient = make([]float64, dimensions)
	if r.cfg.RandomInitialization {
		rng := g.Rand()
		for i := range r.weights {
			r.weights[i] = rng.NormFloat64() * 0.01
		}
	}
	r.step.Init(dimensions)
}

func (r *gradientRun) shouldRun() bool {
	last := r.step.LastChangeNorm()
	if math.IsNaN(last) {
		return false
	}
	return r.iteration < r.budget && last > r.cfg.MinChange
}

func (r *gradientRun) computeGradient() {
	r.objective.Gradient(r.weights, r.samples, r.gradient)
}

func (r *gradientRun) finishIteration() {
	r.iteration++
}

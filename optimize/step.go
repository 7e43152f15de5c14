package optimize

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

// Step is a gradient step strategy. A Step carries per-run state and is
// owned by the optimisation run that created it.
type Step interface {
	// ID is the registry identifier of the strategy.
	ID() string
	// Init resets the state for a weight vector of the given length.
	Init(dimensions int)
	// Update applies one step to weights in place.
	Update(weights, gradient []float64, learningRate, updateWeight float64)
	// LastChangeNorm is the Euclidean norm of the most recent weight change.
	LastChangeNorm() float64
}

// StepFactory builds a step from its parameter overrides. Defaults are read
// through loader.
type StepFactory func(params map[string]any, loader config.ResourceLoader) (Step, error)

const (
	StepFixed = "fixed"
	StepAdam  = "adam"
)

var (
	stepMu       sync.RWMutex
	stepRegistry = map[string]StepFactory{}
)

func init() {
	RegisterStep(StepFixed, newFixedStep)
	RegisterStep(StepAdam, newAdamStep)
}

// RegisterStep adds or replaces a step strategy.
func RegisterStep(id string, factory StepFactory) {
	stepMu.Lock()
	defer stepMu.Unlock()
	stepRegistry[id] = factory
}

// HasStep reports whether id is registered.
func HasStep(id string) bool {
	stepMu.RLock()
	defer stepMu.RUnlock()
	_, ok := stepRegistry[id]
	return ok
}

// StepIDs lists the registered identifiers in ascending order.
func StepIDs() []string {
	stepMu.RLock()
	defer stepMu.RUnlock()
	ids := make([]string, 0, len(stepRegistry))
	for id := range stepRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewStep builds the step registered under id.
func NewStep(id string, params map[string]any, loader config.ResourceLoader) (Step, error) {
	stepMu.RLock()
	factory, ok := stepRegistry[id]
	stepMu.RUnlock()
	if !ok {
		return nil, errors.NewParameterValidationError(KindGradientDescent, "gradient_step", "unknown gradient step", id)
	}
	return factory(params, loader)
}

// FixedStepConfiguration has no parameters.
type FixedStepConfiguration struct{}

// NewFixedStepConfiguration returns an empty configuration.
func NewFixedStepConfiguration() *FixedStepConfiguration { return &FixedStepConfiguration{} }

func (c *FixedStepConfiguration) Kind() string            { return "fixed_step" }
func (c *FixedStepConfiguration) DefaultFileName() string { return "fixed_step.json" }
func (c *FixedStepConfiguration) Fields() []config.Field  { return nil }
func (c *FixedStepConfiguration) Validate() error         { return nil }
func (c *FixedStepConfiguration) Clone() config.Configuration {
	return &FixedStepConfiguration{}
}

// FixedStep moves against the gradient by learningRate·updateWeight.
type FixedStep struct {
	delta      []float64
	lastChange float64
}

func newFixedStep(params map[string]any, loader config.ResourceLoader) (Step, error) {
	cfg, err := config.NewDefault(NewFixedStepConfiguration, loader)
	if err != nil {
		return nil, err
	}
	if _, err := config.OverrideMap(cfg, params); err != nil {
		return nil, err
	}
	return &FixedStep{}, nil
}

func (s *FixedStep) ID() string { return StepFixed }

func (s *FixedStep) Init(dimensions int) {
	s.delta = make([]float64, dimensions)
	s.lastChange = math.Inf(1)
}

func (s *FixedStep) Update(weights, gradient []float64, learningRate, updateWeight float64) {
	floats.ScaleTo(s.delta, -learningRate*updateWeight, gradient)
	floats.Add(weights, s.delta)
	s.lastChange = floats.Norm(s.delta, 2)
}

func (s *FixedStep) LastChangeNorm() float64 { return s.lastChange }

// AdamStepConfiguration holds the moment decay rates of AdamStep.
type AdamStepConfiguration struct {
	Beta1   float64 `json:"beta1" validate:"gte=0,lt=1"`
	Beta2   float64 `json:"beta2" validate:"gte=0,lt=1"`
	Epsilon float64 `json:"epsilon" validate:"gt=0"`
}

// NewAdamStepConfiguration returns an unfilled configuration.
func NewAdamStepConfiguration() *AdamStepConfiguration { return &AdamStepConfiguration{} }

func (c *AdamStepConfiguration) Kind() string            { return "adam_step" }
func (c *AdamStepConfiguration) DefaultFileName() string { return "adam_step.json" }
func (c *AdamStepConfiguration) Validate() error         { return nil }
func (c *AdamStepConfiguration) Fields() []config.Field {
	return []config.Field{
		{Name: "beta1", Target: &c.Beta1},
		{Name: "beta2", Target: &c.Beta2},
		{Name: "epsilon", Target: &c.Epsilon},
	}
}
func (c *AdamStepConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

// AdamStep scales the step with bias-corrected first and second moment
// estimates of the gradient.
type AdamStep struct {
	cfg        AdamStepConfiguration
	m, v       []float64
	delta      []float64
	t          int
	lastChange float64
}

func newAdamStep(params map[string]any, loader config.ResourceLoader) (Step, error) {
	cfg, err := config.NewDefault(NewAdamStepConfiguration, loader)
	if err != nil {
		return nil, err
	}
	cfg, err = config.OverrideMap(cfg, params)
	if err != nil {
		return nil, err
	}
	return &AdamStep{cfg: *cfg}, nil
}

func (s *AdamStep) ID() string { return StepAdam }

func (s *AdamStep) Init(dimensions int) {
	s.m = make([]float64, dimensions)
	s.v = make([]float64, dimensions)
	s.delta = make([]float64, dimensions)
	s.t = 0
	s.lastChange = math.Inf(1)
}

func (s *AdamStep) Update(weights, gradient []float64, learningRate, updateWeight float64) {
	s.t++
	b1, b2 := s.cfg.Beta1, s.cfg.Beta2
	c1 := 1 - math.Pow(b1, float64(s.t))
	c2 := 1 - math.Pow(b2, float64(s.t))
	for i, g := range gradient {
		s.m[i] = b1*s.m[i] + (1-b1)*g
		s.v[i] = b2*s.v[i] + (1-b2)*g*g
		mHat := s.m[i] / c1
		vHat := s.v[i] / c2
		s.delta[i] = -learningRate * updateWeight * mHat / (math.Sqrt(vHat) + s.cfg.Epsilon)
	}
	floats.Add(weights, s.delta)
	s.lastChange = floats.Norm(s.delta, 2)
}

func (s *AdamStep) LastChangeNorm() float64 { return s.lastChange }

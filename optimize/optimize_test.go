package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// quadratic is ½·Σ‖w − x_i‖² / n, minimised at the mean of the features.
type quadratic struct{}

func (quadratic) Gradient(weights []float64, samples []Sample, grad []float64) {
	for i := range grad {
		grad[i] = 0
	}
	for _, s := range samples {
		for j := range grad {
			grad[j] += weights[j] - s.Features[j]
		}
	}
	floats.Scale(1/float64(len(samples)), grad)
}

func (quadratic) Loss(weights []float64, samples []Sample) float64 {
	var total float64
	for _, s := range samples {
		d := floats.Distance(weights, s.Features, 2)
		total += d * d / 2
	}
	return total / float64(len(samples))
}

func testOptions(t *testing.T) []algorithm.Option {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return []algorithm.Option{algorithm.WithLogger(logger), algorithm.WithSeed(7)}
}

func TestDefaultConfiguration(t *testing.T) {
	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	cfg := gd.Configuration()
	assert.Equal(t, StepFixed, cfg.GradientStep)
	assert.Equal(t, 0.1, cfg.LearningRate)
	assert.Equal(t, 10, cfg.IterationMultiplier)
	assert.NotNil(t, cfg.StepParameters)
}

func TestConfiguration_UnknownStepRejected(t *testing.T) {
	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	err := gd.SetParameters([]byte(`{"gradient_step": "momentum"}`))

	var pvErr *errors.ParameterValidationFailedError
	require.True(t, errors.As(err, &pvErr))
	assert.Equal(t, "gradient_step", pvErr.Field)
	assert.Equal(t, StepFixed, gd.Configuration().GradientStep)
}

func TestConfiguration_InvalidStepParameters(t *testing.T) {
	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	err := gd.SetParameters([]byte(`{"gradient_step": "adam", "step_parameters": {"beta1": 1.5}}`))
	var pvErr *errors.ParameterValidationFailedError
	assert.True(t, errors.As(err, &pvErr))
	assert.Empty(t, gd.Configuration().StepParameters)
}

func TestFixedStep(t *testing.T) {
	step, err := NewStep(StepFixed, nil, config.EmbeddedLoader{})
	require.NoError(t, err)
	step.Init(2)
	assert.True(t, math.IsInf(step.LastChangeNorm(), 1))

	w := []float64{1, 1}
	step.Update(w, []float64{3, 4}, 0.1, 2)
	assert.InDeltaSlice(t, []float64{0.4, 0.2}, w, 1e-12)
	assert.InDelta(t, 1.0, step.LastChangeNorm(), 1e-12)
}

func TestAdamStep(t *testing.T) {
	step, err := NewStep(StepAdam, map[string]any{"epsilon": 1e-12}, config.EmbeddedLoader{})
	require.NoError(t, err)
	step.Init(2)

	// The first bias-corrected step has magnitude learningRate per coordinate.
	w := []float64{0, 0}
	step.Update(w, []float64{10, -0.5}, 0.01, 1)
	assert.InDeltaSlice(t, []float64{-0.01, 0.01}, w, 1e-9)
	assert.InDelta(t, 0.01*math.Sqrt2, step.LastChangeNorm(), 1e-9)

	step.Init(2)
	assert.True(t, math.IsInf(step.LastChangeNorm(), 1), "Init resets the run state")
}

func TestRegisterStep(t *testing.T) {
	RegisterStep("halving", func(map[string]any, config.ResourceLoader) (Step, error) {
		return &halvingStep{}, nil
	})
	assert.Contains(t, StepIDs(), "halving")

	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	require.NoError(t, gd.SetParameters([]byte(`{"gradient_step": "halving", "min_change": 0.01, "iteration_multiplier": 100}`)))

	res, err := gd.Optimize([]Sample{{Features: []float64{4}}}, 1)
	require.NoError(t, err)
	assert.True(t, res.Converged)
}

type halvingStep struct{ last float64 }

func (s *halvingStep) ID() string  { return "halving" }
func (s *halvingStep) Init(int)    { s.last = math.Inf(1) }
func (s *halvingStep) Update(w, g []float64, _, _ float64) {
	for i := range w {
		w[i] -= g[i] / 2
	}
	s.last = floats.Norm(g, 2) / 2
}
func (s *halvingStep) LastChangeNorm() float64 { return s.last }

// overlayLoader serves its own resources before the embedded ones.
type overlayLoader config.MapLoader

func (l overlayLoader) Load(name string) ([]byte, error) {
	if data, ok := l[name]; ok {
		return data, nil
	}
	return config.EmbeddedLoader{}.Load(name)
}

type dampedStepConfiguration struct {
	Factor float64 `json:"factor" validate:"gt=0,lte=1"`
}

func (c *dampedStepConfiguration) Kind() string            { return "damped_step" }
func (c *dampedStepConfiguration) DefaultFileName() string { return "damped_step.json" }
func (c *dampedStepConfiguration) Fields() []config.Field {
	return []config.Field{{Name: "factor", Target: &c.Factor}}
}
func (c *dampedStepConfiguration) Validate() error { return nil }
func (c *dampedStepConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

func newDampedStep(params map[string]any, loader config.ResourceLoader) (Step, error) {
	cfg, err := config.NewDefault(func() *dampedStepConfiguration { return &dampedStepConfiguration{} }, loader)
	if err != nil {
		return nil, err
	}
	if _, err := config.OverrideMap(cfg, params); err != nil {
		return nil, err
	}
	return &halvingStep{}, nil
}

func TestConfiguration_StepDefaultsComeFromAlgorithmLoader(t *testing.T) {
	RegisterStep("damped", newDampedStep)
	loader := overlayLoader{"damped_step.json": []byte(`{"default_parameter_values": {"factor": 0.5}}`)}

	gd := NewGradientDescent(quadratic{}, append(testOptions(t), algorithm.WithResourceLoader(loader))...)
	require.NoError(t, gd.SetParameters([]byte(`{"gradient_step": "damped", "step_parameters": {"factor": 0.25}}`)))
	err := gd.SetParameters([]byte(`{"step_parameters": {"factor": 2}}`))
	var pvErr *errors.ParameterValidationFailedError
	require.True(t, errors.As(err, &pvErr))
	assert.Equal(t, "step_parameters", pvErr.Field)

	_, err = gd.Optimize([]Sample{{Features: []float64{4}}}, 1)
	require.NoError(t, err)

	embedded := NewGradientDescent(quadratic{}, testOptions(t)...)
	err = embedded.SetParameters([]byte(`{"gradient_step": "damped"}`))
	assert.True(t, errors.As(err, &pvErr), "no damped_step.json in the embedded resources")
}

func TestOptimize_ConvergesOnQuadratic(t *testing.T) {
	for _, step := range []string{StepFixed, StepAdam} {
		t.Run(step, func(t *testing.T) {
			gd := NewGradientDescent(quadratic{}, testOptions(t)...)
			require.NoError(t, gd.SetParameterMap(map[string]any{
				"gradient_step":        step,
				"learning_rate":        0.5,
				"iteration_multiplier": 1000,
				"min_change":           1e-9,
			}))
			if step == StepAdam {
				require.NoError(t, gd.SetParameterMap(map[string]any{"learning_rate": 0.05}))
			}

			samples := []Sample{{Features: []float64{1, 3}}, {Features: []float64{3, 5}}}
			res, err := gd.Optimize(samples, 2)
			require.NoError(t, err)
			tolerance := 1e-3
			if step == StepAdam {
				tolerance = 1e-2
			}
			assert.InDeltaSlice(t, []float64{2, 4}, res.Weights, tolerance)
			assert.LessOrEqual(t, res.Iterations, 2000)
		})
	}
}

func TestOptimize_BudgetExhaustedWarns(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	require.NoError(t, gd.SetParameterMap(map[string]any{"iteration_multiplier": 2, "min_change": 0, "learning_rate": 0.01}))

	samples := []Sample{{Features: []float64{10}}, {Features: []float64{20}}, {Features: []float64{30}}}
	res, err := gd.Optimize(samples, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Iterations)
	assert.False(t, res.Converged)

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(warnings[0], &cw))
}

func TestOptimize_InputChecks(t *testing.T) {
	gd := NewGradientDescent(quadratic{}, testOptions(t)...)
	_, err := gd.Optimize(nil, 1)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = gd.Optimize([]Sample{{Features: []float64{1, 2}}}, 3)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestOptimize_RandomInitializationIsSeeded(t *testing.T) {
	run := func() []float64 {
		gd := NewGradientDescent(quadratic{}, testOptions(t)...)
		require.NoError(t, gd.SetParameterMap(map[string]any{"random_initialization": true, "iteration_multiplier": 1}))
		res, err := gd.Optimize([]Sample{{Features: []float64{1, 1, 1}}}, 3)
		require.NoError(t, err)
		return res.Weights
	}
	assert.Equal(t, run(), run())
}

func TestLogisticLoss(t *testing.T) {
	samples := []Sample{
		{Features: []float64{1, 2}, Label: 1},
		{Features: []float64{1, -2}, Label: -1},
	}
	w := []float64{0, 0}
	grad := make([]float64, 2)
	LogisticLoss{}.Gradient(w, samples, grad)

	// At w = 0 every term is −y·x/2.
	assert.InDeltaSlice(t, []float64{0, -1}, grad, 1e-12)
	assert.InDelta(t, math.Log(2), LogisticLoss{}.Loss(w, samples), 1e-12)
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
}

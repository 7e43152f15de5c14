package objectranking

import (
	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
	"github.com/YuminosukeSato/preflearn/registry"
)

const KindExpectedRankRegression = "expected_rank_regression"

// ExpectedRankRegressionConfiguration selects the base learner trained on
// the transformed dataset and the parameters passed to it.
type ExpectedRankRegressionConfiguration struct {
	BaseLearner           string         `json:"base_learner" validate:"required"`
	BaseLearnerParameters map[string]any `json:"base_learner_parameters"`

	loader config.ResourceLoader
}

// NewExpectedRankRegressionConfiguration returns an unfilled configuration.
func NewExpectedRankRegressionConfiguration() *ExpectedRankRegressionConfiguration {
	return &ExpectedRankRegressionConfiguration{}
}

func (c *ExpectedRankRegressionConfiguration) Kind() string { return KindExpectedRankRegression }
func (c *ExpectedRankRegressionConfiguration) DefaultFileName() string {
	return "expected_rank_regression.json"
}

func (c *ExpectedRankRegressionConfiguration) Fields() []config.Field {
	return []config.Field{
		{Name: "base_learner", Target: &c.BaseLearner},
		{Name: "base_learner_parameters", Target: &c.BaseLearnerParameters},
	}
}

// UseResourceLoader sets the loader for the base learner defaults checked by
// Validate.
func (c *ExpectedRankRegressionConfiguration) UseResourceLoader(loader config.ResourceLoader) {
	c.loader = loader
}

// Validate checks that the base learner exists and accepts the parameters.
func (c *ExpectedRankRegressionConfiguration) Validate() error {
	learner, err := registry.New(c.BaseLearner, algorithm.WithLogger(log.Nop()), algorithm.WithResourceLoader(c.loader))
	if err != nil {
		return errors.NewParameterValidationError(c.Kind(), "base_learner", "unknown base learner", c.BaseLearner)
	}
	// 既定値リソースが見つからない場合、SetParameterMap はパニックする
	err = errors.SafeExecute(c.Kind()+".Validate", func() error {
		return learner.SetParameterMap(c.BaseLearnerParameters)
	})
	if err != nil {
		return errors.WrapParameterValidationError(c.Kind(), "base_learner_parameters", err)
	}
	return nil
}

func (c *ExpectedRankRegressionConfiguration) Clone() config.Configuration {
	cp := *c
	cp.BaseLearnerParameters = copyMap(c.BaseLearnerParameters)
	return &cp
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = copyMap(nested)
		}
		out[k] = v
	}
	return out
}

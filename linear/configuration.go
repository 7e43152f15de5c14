package linear

import (
	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/optimize"
)

// LinearRegressionConfiguration は最小二乗法の設定（パラメータなし）
type LinearRegressionConfiguration struct{}

// NewLinearRegressionConfiguration は空の設定を返す
func NewLinearRegressionConfiguration() *LinearRegressionConfiguration {
	return &LinearRegressionConfiguration{}
}

func (c *LinearRegressionConfiguration) Kind() string            { return "linear_regression" }
func (c *LinearRegressionConfiguration) DefaultFileName() string { return "linear_regression.json" }
func (c *LinearRegressionConfiguration) Fields() []config.Field  { return nil }
func (c *LinearRegressionConfiguration) Validate() error         { return nil }
func (c *LinearRegressionConfiguration) Clone() config.Configuration {
	return &LinearRegressionConfiguration{}
}

// ClassificationConfiguration は線形分類器で共通のパラメータ
type ClassificationConfiguration struct {
	LearningRate float64 `json:"learning_rate" validate:"gt=0"`
	Iterations   int     `json:"iterations" validate:"min=1"`
}

func (c *ClassificationConfiguration) fields() []config.Field {
	return []config.Field{
		{Name: "learning_rate", Target: &c.LearningRate},
		{Name: "iterations", Target: &c.Iterations},
	}
}

// PerceptronConfiguration はパーセプトロンの設定
type PerceptronConfiguration struct {
	ClassificationConfiguration
}

// NewPerceptronConfiguration は未設定の設定を返す
func NewPerceptronConfiguration() *PerceptronConfiguration {
	return &PerceptronConfiguration{}
}

func (c *PerceptronConfiguration) Kind() string            { return "perceptron" }
func (c *PerceptronConfiguration) DefaultFileName() string { return "perceptron.json" }
func (c *PerceptronConfiguration) Fields() []config.Field  { return c.fields() }
func (c *PerceptronConfiguration) Validate() error         { return nil }
func (c *PerceptronConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

// PegasosConfiguration はミニバッチPegasosの設定
//
// subset_size がデータセットのサイズを超える場合は学習時に失敗する。
type PegasosConfiguration struct {
	ClassificationConfiguration
	SubsetSize              int     `json:"subset_size" validate:"min=1"`
	RegularizationParameter float64 `json:"regularization_parameter" validate:"gt=0"`
}

// NewPegasosConfiguration は未設定の設定を返す
func NewPegasosConfiguration() *PegasosConfiguration {
	return &PegasosConfiguration{}
}

func (c *PegasosConfiguration) Kind() string            { return "pegasos" }
func (c *PegasosConfiguration) DefaultFileName() string { return "pegasos.json" }
func (c *PegasosConfiguration) Validate() error         { return nil }
func (c *PegasosConfiguration) Fields() []config.Field {
	return append(c.fields(),
		config.Field{Name: "subset_size", Target: &c.SubsetSize},
		config.Field{Name: "regularization_parameter", Target: &c.RegularizationParameter},
	)
}
func (c *PegasosConfiguration) Clone() config.Configuration {
	cp := *c
	return &cp
}

// LogisticClassificationConfiguration はロジスティック分類の設定
//
// 最適化は入れ子の gradient_descent 設定に従う。
type LogisticClassificationConfiguration struct {
	Threshold       float64                               `json:"threshold" validate:"gt=0,lt=1"`
	GradientDescent optimize.GradientDescentConfiguration `json:"gradient_descent"`
}

// NewLogisticClassificationConfiguration は未設定の設定を返す
func NewLogisticClassificationConfiguration() *LogisticClassificationConfiguration {
	return &LogisticClassificationConfiguration{
		GradientDescent: *optimize.NewGradientDescentConfiguration(),
	}
}

func (c *LogisticClassificationConfiguration) Kind() string { return "logistic_classification" }
func (c *LogisticClassificationConfiguration) DefaultFileName() string {
	return "logistic_classification.json"
}
func (c *LogisticClassificationConfiguration) Validate() error { return nil }
func (c *LogisticClassificationConfiguration) Fields() []config.Field {
	return []config.Field{
		{Name: "threshold", Target: &c.Threshold},
		{Name: "gradient_descent", Target: &c.GradientDescent},
	}
}
func (c *LogisticClassificationConfiguration) Clone() config.Configuration {
	gd, _ := c.GradientDescent.Clone().(*optimize.GradientDescentConfiguration)
	return &LogisticClassificationConfiguration{Threshold: c.Threshold, GradientDescent: *gd}
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

type sample struct {
	K         int     `json:"k" validate:"min=1"`
	Threshold float64 `json:"threshold" validate:"gt=0,lt=1"`
	Step      string  `json:"gradient_step" validate:"oneof=fixed adam"`
}

func TestStruct(t *testing.T) {
	assert.Empty(t, Struct(&sample{K: 1, Threshold: 0.5, Step: "adam"}))

	failures := Struct(&sample{K: 0, Threshold: 1, Step: "sgd"})
	require.Len(t, failures, 3)
	assert.Equal(t, "k", failures[0].Field)
	assert.Equal(t, "k must be at least 1", failures[0].Message)
	assert.Equal(t, "threshold must be less than 1", failures[1].Message)
	assert.Equal(t, "gradient_step must be one of: fixed adam", failures[2].Message)
}

func TestValidateConfiguration(t *testing.T) {
	err := ValidateConfiguration("knn", &sample{K: 0, Threshold: 0.5, Step: "fixed"})
	require.Error(t, err)

	var pvErr *errors.ParameterValidationFailedError
	require.True(t, errors.As(err, &pvErr))
	assert.Equal(t, "knn", pvErr.Configuration)
	assert.Equal(t, "k", pvErr.Field)
	assert.Equal(t, 0, pvErr.Value)
}

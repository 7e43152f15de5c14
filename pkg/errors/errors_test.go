package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrainModelsFailedError(t *testing.T) {
	cause := NewValueError("Pegasos.Train", "subset_size exceeds dataset size")
	err := NewTrainModelsFailedError("Pegasos", cause)

	// 元の原因を保持していること
	assert.True(t, Is(err, cause))

	var trainErr *TrainModelsFailedError
	require.True(t, As(err, &trainErr))
	assert.Equal(t, "Pegasos", trainErr.Algorithm)

	var valueErr *ValueError
	assert.True(t, As(err, &valueErr), "cause should stay reachable through As")

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	assert.True(t, strings.Contains(formatted, "errors_test.go"))
}

func TestNewTrainModelsFailedError_NilCause(t *testing.T) {
	err := NewTrainModelsFailedError("KNN", nil)
	var trainErr *TrainModelsFailedError
	require.True(t, As(err, &trainErr))
	assert.Error(t, trainErr.Cause)
}

func TestParameterValidationFailedError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "field with value",
			err:     NewParameterValidationError("knn", "k", "must be at least 1", 0),
			wantMsg: "preflearn: knn: parameter validation failed for 'k': must be at least 1 (got: 0)",
		},
		{
			name:    "wrapped cause",
			err:     WrapParameterValidationError("pegasos", "", New("bad payload")),
			wantMsg: "preflearn: pegasos: parameter validation failed: bad payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			var pvErr *ParameterValidationFailedError
			assert.True(t, As(tt.err, &pvErr))
		})
	}
}

func TestWrongConfigurationTypeError(t *testing.T) {
	err := NewWrongConfigurationTypeError("KNN", "knn", "pegasos")
	assert.Equal(t, `preflearn: KNN: wrong configuration type, expected "knn", got "pegasos"`, err.Error())

	var wrongErr *WrongConfigurationTypeError
	require.True(t, As(err, &wrongErr))
	assert.Equal(t, "pegasos", wrongErr.Got)
}

func TestPredictionAndUnsupportedErrors(t *testing.T) {
	dimErr := NewDimensionError("LinearRegressionModel.Predict", 2, 3, 1)
	err := NewPredictionFailedError("LinearRegressionModel", "incompatible instance", dimErr)
	assert.True(t, Is(err, dimErr))
	assert.Contains(t, err.Error(), "incompatible instance")

	unsupported := NewUnsupportedOperationError("KNNModel", "Bias")
	var unsupportedErr *UnsupportedOperationError
	require.True(t, As(unsupported, &unsupportedErr))
	assert.Equal(t, "preflearn: KNNModel does not support Bias", unsupported.Error())
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 5, 1)
	assert.Equal(t, "preflearn: Predict: dimension mismatch on axis 1 (features). Expected 10, got 5", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 10, dimErr.Expected)
	assert.Equal(t, 5, dimErr.Got)
}

func TestIndexOutOfRangeError(t *testing.T) {
	err := NewIndexOutOfRangeError("Dataset.Instance", 4, 4)
	assert.Equal(t, "preflearn: Dataset.Instance: index 4 out of range [0, 4)", err.Error())
}

func TestAssertionFailure(t *testing.T) {
	err := AssertionFailedf("default resource %s is invalid", "knn.json")
	assert.True(t, IsAssertionFailure(err))
	assert.False(t, IsAssertionFailure(New("plain")))
}

func TestNewConvergenceWarning(t *testing.T) {
	w := NewConvergenceWarning("GradientDescent", 40, "")
	assert.Contains(t, w.Error(), "failed to converge after 40 iterations")

	var captured error
	SetWarningHandler(func(err error) { captured = err })
	defer SetWarningHandler(func(error) {})
	Warn(w)
	assert.Equal(t, w, captured)
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("ok", []float64{1, 2}, 0))
	err := CheckNumericalStability("update", []float64{1, nan()}, 3)
	var numErr *NumericalInstabilityError
	require.True(t, As(err, &numErr))
	assert.Equal(t, 3, numErr.Iteration)
}

func TestWrapf(t *testing.T) {
	baseErr := New("base error")
	err := Wrapf(baseErr, "operation %s failed with code %d", "test", 42)
	assert.Equal(t, "operation test failed with code 42: base error", err.Error())
	assert.True(t, Is(err, baseErr))
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

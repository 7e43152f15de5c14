// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 設定ライフサイクル、学習、予測の各段階で発生するエラーを構造化された型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("preflearn-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は最適化アルゴリズムが収束しなかった場合に発生する警告です。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing iteration_multiplier or min_change.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	設定ライフサイクルのエラー型
//
// ===========================================================================

// WrongConfigurationTypeError はアルゴリズムに種類の異なる設定が渡された場合のエラーです。
type WrongConfigurationTypeError struct {
	Algorithm string
	Expected  string
	Got       string
}

func (e *WrongConfigurationTypeError) Error() string {
	return fmt.Sprintf("preflearn: %s: wrong configuration type, expected %q, got %q", e.Algorithm, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *WrongConfigurationTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Str("expected", e.Expected).
		Str("got", e.Got).
		Str("type", "WrongConfigurationTypeError")
}

// NewWrongConfigurationTypeError は新しいWrongConfigurationTypeErrorを作成し、スタックトレースを付与します。
func NewWrongConfigurationTypeError(algorithm, expected, got string) error {
	return errors.WithStack(&WrongConfigurationTypeError{Algorithm: algorithm, Expected: expected, Got: got})
}

// ParameterValidationFailedError は設定値の検証に失敗した場合のエラーです。
// 上書き処理はこのエラーを返したとき、設定を一切変更しません。
type ParameterValidationFailedError struct {
	Configuration string
	Field         string
	Reason        string
	Value         interface{}
	Cause         error
}

func (e *ParameterValidationFailedError) Error() string {
	msg := fmt.Sprintf("preflearn: %s: parameter validation failed", e.Configuration)
	if e.Field != "" {
		msg += fmt.Sprintf(" for '%s'", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (got: %v)", e.Value)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ParameterValidationFailedError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ParameterValidationFailedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("configuration", e.Configuration).
		Str("param_name", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ParameterValidationFailedError")
}

// NewParameterValidationError は単一フィールドの検証失敗を表すエラーを作成します。
func NewParameterValidationError(configuration, field, reason string, value interface{}) error {
	return errors.WithStack(&ParameterValidationFailedError{
		Configuration: configuration,
		Field:         field,
		Reason:        reason,
		Value:         value,
	})
}

// WrapParameterValidationError は下位のエラーを検証失敗として包みます。
func WrapParameterValidationError(configuration, field string, cause error) error {
	return errors.WithStack(&ParameterValidationFailedError{
		Configuration: configuration,
		Field:         field,
		Cause:         cause,
	})
}

// ===========================================================================
//
//	学習・予測のエラー型
//
// ===========================================================================

// DatasetKindError はアルゴリズムが扱えない種類のデータセットが渡された場合のエラーです。
// 学習開始前に検出されるため、TrainModelsFailedErrorにはなりません。
type DatasetKindError struct {
	Algorithm string
	Expected  string
	Got       string
}

func (e *DatasetKindError) Error() string {
	return fmt.Sprintf("preflearn: %s: incompatible dataset kind, expected %q, got %q", e.Algorithm, e.Expected, e.Got)
}

// NewDatasetKindError は新しいDatasetKindErrorを作成し、スタックトレースを付与します。
func NewDatasetKindError(algorithm, expected, got string) error {
	return errors.WithStack(&DatasetKindError{Algorithm: algorithm, Expected: expected, Got: got})
}

// TrainModelsFailedError は学習処理中のあらゆる失敗を表します。
// 元の原因を必ず保持します。
type TrainModelsFailedError struct {
	Algorithm string
	Cause     error
}

func (e *TrainModelsFailedError) Error() string {
	return fmt.Sprintf("preflearn: %s: training failed: %v", e.Algorithm, e.Cause)
}

func (e *TrainModelsFailedError) Unwrap() error {
	return e.Cause
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TrainModelsFailedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Str("cause", fmt.Sprintf("%v", e.Cause)).
		Str("type", "TrainModelsFailedError")
}

// NewTrainModelsFailedError は原因を包んだTrainModelsFailedErrorを作成します。
func NewTrainModelsFailedError(algorithm string, cause error) error {
	if cause == nil {
		cause = errors.New("unknown cause")
	}
	return errors.WithStack(&TrainModelsFailedError{Algorithm: algorithm, Cause: cause})
}

// PredictionFailedError はモデルと互換性のないインスタンス・データセットで予測した場合のエラーです。
type PredictionFailedError struct {
	Model  string
	Reason string
	Cause  error
}

func (e *PredictionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("preflearn: %s: prediction failed: %s: %v", e.Model, e.Reason, e.Cause)
	}
	return fmt.Sprintf("preflearn: %s: prediction failed: %s", e.Model, e.Reason)
}

func (e *PredictionFailedError) Unwrap() error {
	return e.Cause
}

// NewPredictionFailedError は新しいPredictionFailedErrorを作成し、スタックトレースを付与します。
func NewPredictionFailedError(model, reason string, cause error) error {
	return errors.WithStack(&PredictionFailedError{Model: model, Reason: reason, Cause: cause})
}

// UnsupportedOperationError はモデルが要求されたアクセサをサポートしない場合のエラーです。
type UnsupportedOperationError struct {
	Model     string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("preflearn: %s does not support %s", e.Model, e.Operation)
}

// NewUnsupportedOperationError は新しいUnsupportedOperationErrorを作成し、スタックトレースを付与します。
func NewUnsupportedOperationError(model, operation string) error {
	return errors.WithStack(&UnsupportedOperationError{Model: model, Operation: operation})
}

// ===========================================================================
//
//	データ形状のエラー型
//
// ===========================================================================

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("preflearn: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// IndexOutOfRangeError はデータセットの範囲外のインデックスにアクセスした場合のエラーです。
type IndexOutOfRangeError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("preflearn: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

// NewIndexOutOfRangeError は新しいIndexOutOfRangeErrorを作成し、スタックトレースを付与します。
func NewIndexOutOfRangeError(op string, index, length int) error {
	return errors.WithStack(&IndexOutOfRangeError{Op: op, Index: index, Len: length})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("preflearn: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// AssertionFailedf は出荷されたデフォルト設定の破損など、利用者ではなく実装側のバグを表すエラーを作成します。
func AssertionFailedf(format string, args ...interface{}) error {
	return errors.AssertionFailedf(format, args...)
}

// IsAssertionFailure はエラーがAssertionFailedfで作成されたものかどうかを判定します。
func IsAssertionFailure(err error) bool {
	return errors.IsAssertionFailure(err)
}

// ===========================================================================
//
//	数値計算のエラー型
//
// ===========================================================================

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Inf、オーバーフロー、アンダーフローなどを検出します。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "gradient_update"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("preflearn: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrDatasetSealed は封印済みまたは満杯のデータセットに追加しようとした場合のエラーです。
	ErrDatasetSealed = New("dataset is sealed")
)

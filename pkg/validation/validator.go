// Package validation wraps go-playground/validator with a shared instance and
// translates field errors into the parameter naming used by JSON configurations.
//
// Struct fields are reported by their `json` tag name, so a failure on
//
//	K int `json:"k" validate:"min=1"`
//
// reads "k must be at least 1".
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single translated validation failure.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "koanf"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates s and returns the translated field failures, or nil.
// Errors other than field failures (e.g. a nil pointer) come back as a single
// entry with Tag "invalid".
func Struct(s interface{}) []FieldError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldError{{Field: "unknown", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translateError(fe),
		}
	}
	return out
}

// ValidateConfiguration runs Struct and converts the first failure into a
// ParameterValidationFailedError for the named configuration kind.
func ValidateConfiguration(kind string, s interface{}) error {
	failures := Struct(s)
	if len(failures) == 0 {
		return nil
	}
	first := failures[0]
	return errors.NewParameterValidationError(kind, first.Field, first.Message, first.Value)
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

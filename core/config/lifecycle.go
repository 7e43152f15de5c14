package config

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/validation"
)

// NewDefault builds a configuration through newFn and fills it from its
// default resource. Every schema field must be present in the resource.
//
// A resource that is missing, malformed or invalid is a defect of the shipped
// defaults, so the error is an assertion failure rather than a
// ParameterValidationFailedError.
func NewDefault[C Configuration](newFn func() C, loader ResourceLoader) (C, error) {
	cfg := newFn()
	if loader == nil {
		loader = EmbeddedLoader{}
	}
	AttachLoader(cfg, loader)

	data, err := loader.Load(cfg.DefaultFileName())
	if err != nil {
		return cfg, errors.AssertionFailedf("config: %s: default resource unavailable: %v", cfg.Kind(), err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return cfg, errors.AssertionFailedf("config: %s: default resource %s is not a JSON object: %v",
			cfg.Kind(), cfg.DefaultFileName(), err)
	}
	values, ok := doc[DefaultValuesKey]
	if !ok {
		return cfg, errors.AssertionFailedf("config: %s: default resource %s has no %q object",
			cfg.Kind(), cfg.DefaultFileName(), DefaultValuesKey)
	}

	if err := mergeRaw(cfg, values, true); err != nil {
		return cfg, errors.AssertionFailedf("config: %s: default resource %s: %v", cfg.Kind(), cfg.DefaultFileName(), err)
	}
	if err := validate(cfg); err != nil {
		return cfg, errors.AssertionFailedf("config: %s: default values are invalid: %v", cfg.Kind(), err)
	}
	return cfg, nil
}

// Override merges the fields present in payload into a copy of cfg and
// validates the result. Absent and unknown fields are left alone. cfg itself is
// never modified, so a rejected payload leaves the caller's state unchanged.
func Override[C Configuration](cfg C, payload []byte) (C, error) {
	merged, ok := cfg.Clone().(C)
	if !ok {
		return cfg, errors.AssertionFailedf("config: %s: Clone returned %T", cfg.Kind(), cfg.Clone())
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return merged, nil
	}
	if err := mergeRaw(merged, payload, false); err != nil {
		return cfg, err
	}
	if err := validate(merged); err != nil {
		return cfg, err
	}
	return merged, nil
}

// OverrideMap is Override for an already decoded payload.
func OverrideMap[C Configuration](cfg C, values map[string]any) (C, error) {
	if len(values) == 0 {
		return Override(cfg, nil)
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return cfg, errors.WrapParameterValidationError(cfg.Kind(), "", err)
	}
	return Override(cfg, payload)
}

// Validate runs the tag constraints and the kind's own predicate, including
// nested configurations.
func Validate(cfg Configuration) error {
	return validate(cfg)
}

func validate(cfg Configuration) error {
	if err := validation.ValidateConfiguration(cfg.Kind(), cfg); err != nil {
		return err
	}
	for _, f := range cfg.Fields() {
		if nested, ok := f.Target.(Configuration); ok {
			if err := validate(nested); err != nil {
				return err
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		var pvErr *errors.ParameterValidationFailedError
		if errors.As(err, &pvErr) {
			return err
		}
		return errors.WrapParameterValidationError(cfg.Kind(), "", err)
	}
	return nil
}

// mergeRaw decodes payload into the schema fields of cfg. With requireAll set,
// every field must be present.
func mergeRaw(cfg Configuration, payload []byte, requireAll bool) error {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(payload, &values); err != nil {
		return errors.WrapParameterValidationError(cfg.Kind(), "", errors.Wrap(err, "payload is not a JSON object"))
	}

	for _, f := range cfg.Fields() {
		raw, present := values[f.Name]
		if !present || isNull(raw) {
			if requireAll {
				return errors.NewParameterValidationError(cfg.Kind(), f.Name, "missing default value", nil)
			}
			continue
		}
		if nested, ok := f.Target.(Configuration); ok {
			if err := mergeRaw(nested, raw, requireAll); err != nil {
				return err
			}
			continue
		}
		if err := json.Unmarshal(raw, f.Target); err != nil {
			return errors.WrapParameterValidationError(cfg.Kind(), f.Name, err)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Values returns the schema fields as a name → value map.
func Values(cfg Configuration) map[string]any {
	fields := cfg.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if nested, ok := f.Target.(Configuration); ok {
			out[f.Name] = Values(nested)
			continue
		}
		out[f.Name] = f.Target
	}
	return out
}

// Canonical encodes the kind and the schema values as JSON with sorted keys.
func Canonical(cfg Configuration) ([]byte, error) {
	return json.Marshal(map[string]any{
		"kind":   cfg.Kind(),
		"values": Values(cfg),
	})
}

// Equal reports whether a and b are the same kind with equal values.
func Equal(a, b Configuration) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	ca, errA := Canonical(a)
	cb, errB := Canonical(b)
	return errA == nil && errB == nil && bytes.Equal(ca, cb)
}

// Fingerprint hashes the canonical encoding of cfg.
func Fingerprint(cfg Configuration) (uint64, error) {
	data, err := Canonical(cfg)
	if err != nil {
		return 0, errors.Wrapf(err, "config: %s: fingerprint", cfg.Kind())
	}
	return xxhash.Sum64(data), nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/preflearn/pkg/errors"
)

type innerConfiguration struct {
	Rate float64 `json:"rate" validate:"gt=0"`
}

func (c *innerConfiguration) Kind() string            { return "inner" }
func (c *innerConfiguration) DefaultFileName() string { return "inner.json" }
func (c *innerConfiguration) Validate() error         { return nil }
func (c *innerConfiguration) Clone() Configuration {
	cp := *c
	return &cp
}
func (c *innerConfiguration) Fields() []Field {
	return []Field{{Name: "rate", Target: &c.Rate}}
}

type sampleConfiguration struct {
	K         int                `json:"k" validate:"min=1"`
	Threshold float64            `json:"threshold" validate:"gt=0,lt=1"`
	Name      string             `json:"name"`
	Enabled   bool               `json:"enabled"`
	Inner     innerConfiguration `json:"inner"`
}

func newSample() *sampleConfiguration { return &sampleConfiguration{} }

func (c *sampleConfiguration) Kind() string            { return "sample" }
func (c *sampleConfiguration) DefaultFileName() string { return "sample.json" }
func (c *sampleConfiguration) Clone() Configuration {
	cp := *c
	return &cp
}
func (c *sampleConfiguration) Fields() []Field {
	return []Field{
		{Name: "k", Target: &c.K},
		{Name: "threshold", Target: &c.Threshold},
		{Name: "name", Target: &c.Name},
		{Name: "enabled", Target: &c.Enabled},
		{Name: "inner", Target: &c.Inner},
	}
}
func (c *sampleConfiguration) Validate() error {
	if c.Name == "forbidden" {
		return errors.NewParameterValidationError(c.Kind(), "name", "reserved name", c.Name)
	}
	return nil
}

var sampleLoader = MapLoader{
	"sample.json": []byte(`{"default_parameter_values": {"k": 3, "threshold": 0.5, "name": "x", "enabled": false, "inner": {"rate": 0.1}}}`),
}

func defaultSample(t *testing.T) *sampleConfiguration {
	t.Helper()
	cfg, err := NewDefault(newSample, sampleLoader)
	require.NoError(t, err)
	return cfg
}

func TestNewDefault(t *testing.T) {
	cfg := defaultSample(t)
	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, "x", cfg.Name)
	assert.Equal(t, 0.1, cfg.Inner.Rate)
}

func TestNewDefault_BrokenResourceIsAssertionFailure(t *testing.T) {
	tests := map[string]string{
		"missing key":   `{"k": 3}`,
		"missing field": `{"default_parameter_values": {"k": 3}}`,
		"invalid value": `{"default_parameter_values": {"k": 0, "threshold": 0.5, "name": "x", "enabled": false, "inner": {"rate": 0.1}}}`,
		"not json":      `{`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewDefault(newSample, MapLoader{"sample.json": []byte(doc)})
			require.Error(t, err)
			assert.True(t, errors.IsAssertionFailure(err))
		})
	}

	_, err := NewDefault(newSample, MapLoader{})
	assert.True(t, errors.IsAssertionFailure(err))
}

func TestOverride_MergesPresentFields(t *testing.T) {
	cfg := defaultSample(t)
	merged, err := Override(cfg, []byte(`{"k": 7, "unknown": true, "inner": {"rate": 2}}`))
	require.NoError(t, err)

	assert.Equal(t, 7, merged.K)
	assert.Equal(t, 0.5, merged.Threshold, "absent fields keep their value")
	assert.Equal(t, 2.0, merged.Inner.Rate)
	assert.Equal(t, 3, cfg.K, "input must not change")
}

func TestOverride_ZeroIsAValue(t *testing.T) {
	cfg := defaultSample(t)
	cfg.Enabled = true
	merged, err := Override(cfg, []byte(`{"enabled": false}`))
	require.NoError(t, err)
	assert.False(t, merged.Enabled)
}

func TestOverride_RoundTripWithEmptyPayload(t *testing.T) {
	cfg := defaultSample(t)
	overridden, err := Override(cfg, []byte(`{"k": 9, "name": "y"}`))
	require.NoError(t, err)

	for _, payload := range [][]byte{[]byte(`{}`), nil} {
		again, err := Override(overridden, payload)
		require.NoError(t, err)
		assert.True(t, Equal(overridden, again))
	}

	again, err := OverrideMap(overridden, map[string]any{})
	require.NoError(t, err)
	assert.True(t, Equal(overridden, again))
}

func TestOverride_AtomicReject(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{name: "range", payload: `{"k": 2, "threshold": 1.5}`, field: "threshold"},
		{name: "wrong type", payload: `{"k": "three"}`, field: "k"},
		{name: "nested range", payload: `{"inner": {"rate": -1}}`, field: "rate"},
		{name: "cross field", payload: `{"name": "forbidden"}`, field: "name"},
		{name: "not an object", payload: `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultSample(t)
			before := *cfg

			got, err := Override(cfg, []byte(tt.payload))
			require.Error(t, err)

			var pvErr *errors.ParameterValidationFailedError
			require.True(t, errors.As(err, &pvErr), "got %T", err)
			if tt.field != "" {
				assert.Equal(t, tt.field, pvErr.Field)
			}
			assert.Equal(t, before, *cfg)
			assert.Same(t, cfg, got)
		})
	}
}

func TestEqualAndFingerprint(t *testing.T) {
	a := defaultSample(t)
	b := defaultSample(t)
	assert.NotSame(t, a, b)
	assert.True(t, Equal(a, b))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	c, err := OverrideMap(b, map[string]any{"k": 4})
	require.NoError(t, err)
	assert.False(t, Equal(a, c))
	fc, err := Fingerprint(c)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fc)

	assert.False(t, Equal(a, &innerConfiguration{Rate: 0.1}))
}

func TestEmbeddedResourcesAreObjects(t *testing.T) {
	entries, err := defaultResources.ReadDir(BasePath)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		data, err := EmbeddedLoader{}.Load(e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(data), DefaultValuesKey, e.Name())
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sample.json"),
		[]byte(`{"default_parameter_values": {"k": 11, "threshold": 0.25, "name": "disk", "enabled": true, "inner": {"rate": 1}}}`), 0o600))

	cfg, err := NewDefault(newSample, LoaderFor(dir))
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.K)
	assert.True(t, cfg.Enabled)

	_, isEmbedded := LoaderFor("").(EmbeddedLoader)
	assert.True(t, isEmbedded)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unset", StateUnset.String())
	assert.Equal(t, "default", StateDefault.String())
	assert.Equal(t, "overridden", StateOverridden.String())
}

// Package algorithm binds algorithms to their configuration kind and provides
// the shared training lifecycle.
//
// Concrete algorithms compose a Trainable and hand it their training function:
//
//	k := &KNN{}
//	k.Trainable = algorithm.NewTrainable("KNN", dataset.KindBaselearner,
//		NewKNNConfiguration, k.train, opts...)
package algorithm

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// Algorithm is the configuration side of every algorithm.
type Algorithm interface {
	Tag() string
	ID() string
	Config() config.Configuration
	State() config.State
	SetConfiguration(cfg config.Configuration) error
	SetParameters(payload []byte) error
	SetParameterMap(values map[string]any) error
	ResetToDefault()
	Fingerprint() (uint64, error)
	Equal(other Algorithm) bool
}

// Base owns one configuration of kind C.
type Base[C config.Configuration] struct {
	tag       string
	id        string
	newConfig func() C
	cfg       C
	state     config.State
	opts      options
	logger    log.Logger
}

// NewBase creates an algorithm whose configuration is materialised lazily.
func NewBase[C config.Configuration](tag string, newConfig func() C, opts ...Option) Base[C] {
	o := applyOptions(opts)
	id := uuid.NewString()
	return Base[C]{
		tag:       tag,
		id:        id,
		newConfig: newConfig,
		opts:      o,
		logger:    o.logger.With(log.ModelNameKey, tag, log.EstimatorIDKey, id),
	}
}

// Tag is the human readable algorithm name.
func (b *Base[C]) Tag() string { return b.tag }

// ID identifies this instance in logs.
func (b *Base[C]) ID() string { return b.id }

// Logger returns the logger carrying the algorithm identity.
func (b *Base[C]) Logger() log.Logger { return b.logger }

// Rand returns the injected random source.
func (b *Base[C]) Rand() *rand.Rand { return b.opts.rng }

// ResourceLoader returns the loader used for default configurations.
func (b *Base[C]) ResourceLoader() config.ResourceLoader { return b.opts.loader }

// Options returns options that reproduce the logger, loader and random source
// of b. Wrapping algorithms pass them to the algorithms they delegate to.
func (b *Base[C]) Options() []Option {
	return []Option{WithLogger(b.opts.logger), WithResourceLoader(b.opts.loader), WithRand(b.opts.rng)}
}

// State returns the lifecycle state of the configuration.
func (b *Base[C]) State() config.State { return b.state }

// Configuration returns a copy of the current configuration, loading the
// default on first use. Changes to the copy do not affect the algorithm; use
// SetConfiguration or SetParameters. A broken shipped default is a
// programming error and panics.
func (b *Base[C]) Configuration() C {
	return cloneAs(b.current())
}

// current returns the owned configuration itself.
func (b *Base[C]) current() C {
	if b.state == config.StateUnset {
		cfg, err := config.NewDefault(b.newConfig, b.opts.loader)
		if err != nil {
			b.logger.Error("default configuration is invalid", err,
				log.OperationKey, log.OperationDefault)
			panic(err)
		}
		b.cfg = cfg
		b.state = config.StateDefault
	}
	return b.cfg
}

func cloneAs[C config.Configuration](cfg C) C {
	cp, ok := cfg.Clone().(C)
	if !ok {
		panic(errors.AssertionFailedf("%T.Clone returned %T", cfg, cfg.Clone()))
	}
	return cp
}

// Config is Configuration without the type parameter.
func (b *Base[C]) Config() config.Configuration {
	return b.Configuration()
}

// SetConfiguration replaces the configuration with a copy of cfg. cfg must be
// of the kind this algorithm was built for.
func (b *Base[C]) SetConfiguration(cfg config.Configuration) error {
	expected := b.newConfig().Kind()
	if cfg == nil {
		return errors.NewWrongConfigurationTypeError(b.tag, expected, "<nil>")
	}
	typed, ok := cfg.Clone().(C)
	if !ok || cfg.Kind() != expected {
		return errors.NewWrongConfigurationTypeError(b.tag, expected, cfg.Kind())
	}
	config.AttachLoader(typed, b.opts.loader)
	if err := config.Validate(typed); err != nil {
		return err
	}
	b.cfg = typed
	b.state = config.StateOverridden
	return nil
}

// SetParameters merges a JSON payload into the current configuration. On
// failure the configuration is unchanged.
func (b *Base[C]) SetParameters(payload []byte) error {
	merged, err := config.Override(b.current(), payload)
	return b.commit(merged, err)
}

// SetParameterMap is SetParameters for decoded values.
func (b *Base[C]) SetParameterMap(values map[string]any) error {
	merged, err := config.OverrideMap(b.current(), values)
	return b.commit(merged, err)
}

func (b *Base[C]) commit(merged C, err error) error {
	if err != nil {
		b.logger.Warn("configuration override rejected", err,
			log.OperationKey, log.OperationOverride,
			log.ErrorCodeKey, log.ErrorValidationFailed)
		return err
	}
	b.cfg = merged
	b.state = config.StateOverridden
	b.logger.Debug("configuration overridden",
		log.OperationKey, log.OperationOverride,
		log.ConfigurationKindKey, merged.Kind())
	return nil
}

// ResetToDefault discards the configuration; the next access reloads the default.
func (b *Base[C]) ResetToDefault() {
	var zero C
	b.cfg = zero
	b.state = config.StateUnset
}

// Fingerprint hashes the algorithm tag and configuration values.
func (b *Base[C]) Fingerprint() (uint64, error) {
	canonical, err := config.Canonical(b.current())
	if err != nil {
		return 0, errors.Wrapf(err, "%s: fingerprint", b.tag)
	}
	d := xxhash.New()
	_, _ = d.WriteString(b.tag)
	_, _ = d.Write(canonical)
	return d.Sum64(), nil
}

// Equal reports whether other is the same algorithm kind with an equal
// configuration. Identity is irrelevant.
func (b *Base[C]) Equal(other Algorithm) bool {
	if other == nil || other.Tag() != b.tag {
		return false
	}
	return config.Equal(b.current(), other.Config())
}

package algorithm

import (
	"math/rand"

	"github.com/YuminosukeSato/preflearn/core/config"
	"github.com/YuminosukeSato/preflearn/pkg/log"
)

// DefaultSeed seeds the random source of algorithms created without WithRand.
const DefaultSeed int64 = 42

type options struct {
	logger log.Logger
	loader config.ResourceLoader
	rng    *rand.Rand
}

// Option configures an algorithm at construction.
type Option func(*options)

// WithLogger overrides the process-wide logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResourceLoader changes where default configurations are read from.
func WithResourceLoader(l config.ResourceLoader) Option {
	return func(o *options) { o.loader = l }
}

// WithRand injects the random source. The source is not safe for concurrent
// use, so share it only between algorithms trained sequentially.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed is WithRand with a fresh source seeded by seed.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.GetLogger()
	}
	if o.loader == nil {
		o.loader = config.EmbeddedLoader{}
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(DefaultSeed))
	}
	return o
}

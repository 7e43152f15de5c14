// Package cache memoises trained models per (algorithm, dataset) pair.
//
// Keys are derived from the algorithm fingerprint, which hashes the algorithm
// tag with its configuration values, and the dataset fingerprint. Two
// distinct algorithm instances with equal configurations therefore share
// entries.
package cache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/core/model"
	"github.com/YuminosukeSato/preflearn/pkg/errors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
	"github.com/YuminosukeSato/preflearn/pkg/settings"
)

// ModelCache is a bounded cache of trained models. Every model costs 1.
type ModelCache struct {
	models *ristretto.Cache[uint64, model.LearningModel]
	logger log.Logger
}

// New creates a cache holding at most maxModels models.
func New(maxModels int64, logger log.Logger) (*ModelCache, error) {
	if maxModels < 1 {
		return nil, errors.NewValueError("cache.New", "maxModels must be at least 1")
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	c, err := ristretto.NewCache(&ristretto.Config[uint64, model.LearningModel]{
		NumCounters:        maxModels * 10,
		MaxCost:            maxModels,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model cache")
	}
	return &ModelCache{models: c, logger: logger.With(log.ComponentKey, "model_cache")}, nil
}

// FromSettings creates a cache sized by s.ModelCache.
func FromSettings(s settings.Settings, logger log.Logger) (*ModelCache, error) {
	return New(s.ModelCache.MaxModels, logger)
}

// Key combines the fingerprints of alg and ds.
func Key(alg algorithm.Algorithm, ds dataset.Interface) (uint64, error) {
	af, err := alg.Fingerprint()
	if err != nil {
		return 0, err
	}
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], af)
	binary.LittleEndian.PutUint64(buf[8:], ds.Fingerprint())
	return xxhash.Sum64(buf[:]), nil
}

// Get returns the cached model for (alg, ds).
func (c *ModelCache) Get(alg algorithm.Algorithm, ds dataset.Interface) (model.LearningModel, bool) {
	key, err := Key(alg, ds)
	if err != nil {
		return nil, false
	}
	return c.models.Get(key)
}

// GetOrTrain returns the cached model for (alg, ds), training and storing it
// on a miss. Failed trainings are not cached.
func (c *ModelCache) GetOrTrain(alg algorithm.TrainableAlgorithm, ds dataset.Interface) (model.LearningModel, error) {
	key, err := Key(alg, ds)
	if err != nil {
		return nil, err
	}
	if m, ok := c.models.Get(key); ok {
		c.logger.Debug("Model cache hit", log.ModelNameKey, alg.Tag())
		return m, nil
	}

	m, err := alg.Train(ds)
	if err != nil {
		return nil, err
	}
	if !c.models.Set(key, m, 1) {
		c.logger.Debug("Model cache rejected entry", log.ModelNameKey, alg.Tag())
	}
	c.models.Wait()
	return m, nil
}

// Hits is the number of successful lookups so far.
func (c *ModelCache) Hits() uint64 { return c.models.Metrics.Hits() }

// Misses is the number of failed lookups so far.
func (c *ModelCache) Misses() uint64 { return c.models.Metrics.Misses() }

// Clear drops every cached model.
func (c *ModelCache) Clear() { c.models.Clear() }

// Close stops the cache's background goroutines.
func (c *ModelCache) Close() { c.models.Close() }

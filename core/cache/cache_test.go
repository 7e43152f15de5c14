package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/preflearn/core/algorithm"
	"github.com/YuminosukeSato/preflearn/core/dataset"
	"github.com/YuminosukeSato/preflearn/neighbors"
	"github.com/YuminosukeSato/preflearn/pkg/log"
	"github.com/YuminosukeSato/preflearn/pkg/settings"
)

func newCache(t *testing.T) *ModelCache {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelError)
	c, err := FromSettings(settings.Default(), logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func newKNN() *neighbors.KNN {
	logger, _ := log.NewTestLogger(log.LevelError)
	return neighbors.NewKNN(algorithm.WithLogger(logger))
}

func points(t *testing.T, ratings ...float64) *dataset.BaselearnerDataset {
	t.Helper()
	X := make([][]float64, len(ratings))
	for i := range X {
		X[i] = []float64{float64(i)}
	}
	ds, err := dataset.FromRows(X, ratings)
	require.NoError(t, err)
	return ds
}

func TestGetOrTrain_ReusesModelForEqualAlgorithms(t *testing.T) {
	c := newCache(t)
	ds := points(t, 1, 0, 1)

	first, err := c.GetOrTrain(newKNN(), ds)
	require.NoError(t, err)
	second, err := c.GetOrTrain(newKNN(), points(t, 1, 0, 1))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), c.Hits())
}

func TestGetOrTrain_DistinguishesConfigurationAndData(t *testing.T) {
	c := newCache(t)
	ds := points(t, 1, 0, 1)

	base, err := c.GetOrTrain(newKNN(), ds)
	require.NoError(t, err)

	tuned := newKNN()
	require.NoError(t, tuned.SetParameters([]byte(`{"k": 1}`)))
	other, err := c.GetOrTrain(tuned, ds)
	require.NoError(t, err)
	assert.NotSame(t, base, other)

	moreData, err := c.GetOrTrain(newKNN(), points(t, 1, 0, 0))
	require.NoError(t, err)
	assert.NotSame(t, base, moreData)
}

func TestGetOrTrain_KeepsModelsUpToCapacity(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelError)
	c, err := New(10, logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	datasets := make([]*dataset.BaselearnerDataset, 5)
	trained := make([]any, len(datasets))
	for i := range datasets {
		datasets[i] = points(t, float64(i), 1, 0)
		m, err := c.GetOrTrain(newKNN(), datasets[i])
		require.NoError(t, err)
		trained[i] = m
	}

	for i, ds := range datasets {
		m, ok := c.Get(newKNN(), ds)
		require.True(t, ok, "model %d evicted", i)
		assert.Same(t, trained[i], m)
	}
	assert.Equal(t, uint64(5), c.Misses())
}

func TestGetOrTrain_DoesNotCacheFailures(t *testing.T) {
	c := newCache(t)
	empty := dataset.NewBaselearnerDataset(1)

	_, err := c.GetOrTrain(newKNN(), empty)
	require.Error(t, err)
	_, ok := c.Get(newKNN(), empty)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	ds := points(t, 1, 0)
	a, err := Key(newKNN(), ds)
	require.NoError(t, err)
	b, err := Key(newKNN(), ds)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	_, err := New(0, nil)
	assert.Error(t, err)
}

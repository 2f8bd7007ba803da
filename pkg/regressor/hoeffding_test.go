package regressor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{Fields: []string{"hour", "minute", "day", "day_of_week", "stop_id"}}
}

func TestHoeffdingTreeRequiresInitialize(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())

	_, err := tree.Predict([]float64{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = tree.Train([]float64{1, 2, 3, 4, 5}, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestHoeffdingTreeDoubleInitialize(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())

	require.NoError(t, tree.Initialize(testSchema()))
	assert.ErrorIs(t, tree.Initialize(testSchema()), ErrAlreadyInitialized)
}

func TestHoeffdingTreeSchemaMismatch(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	var schemaErr *SchemaError

	_, err := tree.Predict([]float64{1, 2, 3, 4})
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 5, schemaErr.Want)
	assert.Equal(t, 4, schemaErr.Got)

	err = tree.Train([]float64{1, 2, 3, 4, 5, 6}, 10)
	assert.ErrorAs(t, err, &schemaErr)
}

func TestHoeffdingTreeDefaultPrediction(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	prediction, err := tree.Predict([]float64{6, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, prediction)
}

func TestHoeffdingTreePredictDoesNotMutate(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	require.NoError(t, tree.Train([]float64{6, 0, 0, 0, 0}, 10))

	first, err := tree.Predict([]float64{6, 0, 0, 0, 0})
	require.NoError(t, err)

	for i := 0; i < 100; i += 1 {
		again, err := tree.Predict([]float64{6, 0, 0, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestHoeffdingTreeLearnsConstantTarget(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	for i := 0; i < 50; i += 1 {
		require.NoError(t, tree.Train([]float64{6, 0, 0, 0, 0}, 25))
	}

	prediction, err := tree.Predict([]float64{6, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 25, prediction, 0.001)
}

func TestHoeffdingTreeSplitsOnInformativeFeature(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	// Morning load is 10, evening load is 50; everything else constant. The
	// tree should split on hour and predict each regime exactly.
	for i := 0; i < 400; i += 1 {
		require.NoError(t, tree.Train([]float64{6, 0, 0, 0, 0}, 10))
		require.NoError(t, tree.Train([]float64{18, 0, 0, 0, 0}, 50))
	}

	morning, err := tree.Predict([]float64{6, 0, 0, 0, 0})
	require.NoError(t, err)
	evening, err := tree.Predict([]float64{18, 0, 0, 0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 10, morning, 0.5)
	assert.InDelta(t, 50, evening, 0.5)
}

func TestHoeffdingTreeAdaptsToDrift(t *testing.T) {
	tree := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, tree.Initialize(testSchema()))

	instance := []float64{6, 0, 0, 0, 0}

	for i := 0; i < 300; i += 1 {
		require.NoError(t, tree.Train(instance, 10))
	}

	// Abrupt level shift; the drift detector should discard the stale
	// statistics instead of averaging across both regimes.
	for i := 0; i < 100; i += 1 {
		require.NoError(t, tree.Train(instance, 100))
	}

	prediction, err := tree.Predict(instance)
	require.NoError(t, err)
	assert.Greater(t, prediction, 95.0)
}

func TestHoeffdingTreeDeterminism(t *testing.T) {
	first := NewHoeffdingTree(DefaultTreeConfig())
	second := NewHoeffdingTree(DefaultTreeConfig())
	require.NoError(t, first.Initialize(testSchema()))
	require.NoError(t, second.Initialize(testSchema()))

	random := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i += 1 {
		instance := []float64{
			float64(random.Intn(24)),
			float64(random.Intn(60)),
			float64(i / 96),
			float64(random.Intn(7)),
			0,
		}
		target := float64(random.Intn(80))

		firstPrediction, err := first.Predict(instance)
		require.NoError(t, err)
		secondPrediction, err := second.Predict(instance)
		require.NoError(t, err)
		require.Equal(t, firstPrediction, secondPrediction)

		require.NoError(t, first.Train(instance, target))
		require.NoError(t, second.Train(instance, target))
	}
}

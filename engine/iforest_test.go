package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusterWithOutlier() [][]float64 {
	data := make([][]float64, 0, 51)
	for i := 0; i < 50; i++ {
		data = append(data, []float64{float64(i%5) * 0.1, float64(i%7) * 0.1})
	}
	return append(data, []float64{100, -100})
}

func TestIsolationForest_ScoresOutlierHighest(t *testing.T) {
	data := clusterWithOutlier()
	scores, psi, err := isolationForest(data, forestParams{trees: 100, sampleSize: 256, seed: 42})
	require.NoError(t, err)
	require.Len(t, scores, len(data))
	assert.Equal(t, len(data), psi, "sample size is capped at the row count")

	best := 0
	for i, s := range scores {
		assert.True(t, s > 0 && s <= 1, "score %d out of range: %v", i, s)
		if s > scores[best] {
			best = i
		}
	}
	assert.Equal(t, 50, best)
}

func TestIsolationForest_Reproducible(t *testing.T) {
	data := clusterWithOutlier()
	params := forestParams{trees: 64, sampleSize: 16, seed: 7}

	first, _, err := isolationForest(data, params)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := isolationForest(data, params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	other, _, err := isolationForest(data, forestParams{trees: 64, sampleSize: 16, seed: 8})
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "a different seed grows different trees")
}

func TestAvgPathLength(t *testing.T) {
	assert.Equal(t, 0.0, avgPathLength(0))
	assert.Equal(t, 0.0, avgPathLength(1))
	assert.Equal(t, 1.0, avgPathLength(2))

	want := 2*(math.Log(255)+eulerGamma) - 2*255.0/256.0
	assert.InDelta(t, want, avgPathLength(256), 1e-12)
}

func TestQuantile(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 1.0, quantile(xs, 0))
	assert.Equal(t, 2.0, quantile(xs, 0.25))
	assert.Equal(t, 3.0, quantile(xs, 0.5))
	assert.Equal(t, 5.0, quantile(xs, 1))
	assert.Equal(t, 7.0, quantile([]float64{7}, 0.75))
}

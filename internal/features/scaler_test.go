package features

import (
	"math"
	"testing"

	"github.com/angelmondragon/churnsight/internal/rfm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestLogFeatures(t *testing.T) {
	customers := []rfm.Customer{
		{CustomerID: "C1", RecencyDays: 0, Frequency: 1, Monetary: 0},
		{CustomerID: "C2", RecencyDays: 99, Frequency: 25, Monetary: 350000},
	}

	X := LogFeatures(customers)
	assert.Equal(t, []float64{0, math.Log1p(1), 0}, X[0])
	assert.InDelta(t, math.Log1p(99), X[1][0], 1e-12)
	assert.InDelta(t, math.Log1p(350000), X[1][2], 1e-12)
}

func TestFitTransformStandardizes(t *testing.T) {
	X := [][]float64{
		{1, 100, 3},
		{2, 200, 6},
		{3, 300, 9},
		{4, 400, 12},
	}

	scaled, scaler, err := FitTransform(X)
	require.NoError(t, err)
	require.Len(t, scaler.Means, 3)

	column := make([]float64, len(scaled))
	for j := 0; j < 3; j++ {
		for i := range scaled {
			column[i] = scaled[i][j]
		}
		assert.InDelta(t, 0, stat.Mean(column, nil), 1e-9)
		assert.InDelta(t, 1, stat.StdDev(column, nil), 1e-9)
	}
}

func TestTransformZeroVarianceColumn(t *testing.T) {
	X := [][]float64{{5, 1}, {5, 2}, {5, 3}}

	scaled, _, err := FitTransform(X)
	require.NoError(t, err)
	for i := range scaled {
		assert.False(t, math.IsNaN(scaled[i][0]))
		assert.Equal(t, 0.0, scaled[i][0])
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}
	_, _, err := FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, X)
}

func TestFitEmpty(t *testing.T) {
	_, err := Fit(nil)
	require.Error(t, err)
}

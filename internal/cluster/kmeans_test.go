package cluster

import (
	"testing"

	"github.com/angelmondragon/churnsight/internal/rfm"
	"github.com/angelmondragon/churnsight/pkg/enums"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs() [][]float64 {
	// Two well-separated groups of four points each.
	return [][]float64{
		{0.0, 0.1}, {0.1, 0.0}, {0.1, 0.1}, {0.0, 0.0},
		{5.0, 5.1}, {5.1, 5.0}, {5.1, 5.1}, {5.0, 5.0},
	}
}

func TestFitSeparatesObviousBlobs(t *testing.T) {
	model, err := Fit(blobs(), 2, 42)
	require.NoError(t, err)

	first := model.Assignments[0]
	for i := 1; i < 4; i++ {
		assert.Equal(t, first, model.Assignments[i])
	}
	second := model.Assignments[4]
	assert.NotEqual(t, first, second)
	for i := 5; i < 8; i++ {
		assert.Equal(t, second, model.Assignments[i])
	}
}

func TestFitDeterministicForFixedSeed(t *testing.T) {
	a, err := Fit(blobs(), 2, 7)
	require.NoError(t, err)
	b, err := Fit(blobs(), 2, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Assignments, b.Assignments)
	assert.Equal(t, a.Centroids, b.Centroids)
}

func TestFitInsufficientRows(t *testing.T) {
	_, err := Fit([][]float64{{1, 2}}, 4, 42)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInsufficientData, pkgerrors.As(err).Code())
}

func TestNamesRankCentroidProfiles(t *testing.T) {
	customers := []rfm.Customer{
		{CustomerID: "best-1", RecencyDays: 5, Frequency: 30, Monetary: 400000},
		{CustomerID: "best-2", RecencyDays: 8, Frequency: 28, Monetary: 380000},
		{CustomerID: "worst-1", RecencyDays: 500, Frequency: 1, Monetary: 100},
		{CustomerID: "worst-2", RecencyDays: 480, Frequency: 2, Monetary: 200},
	}
	model := &Model{
		K:           2,
		Centroids:   [][]float64{{1, 1, 1}, {0, 0, 0}},
		Assignments: []int{1, 1, 0, 0},
	}

	names := model.Names(customers)
	// Cluster 1 holds the high-value customers regardless of its index.
	assert.Equal(t, enums.SegmentChampions, names[1])
	assert.Equal(t, enums.SegmentForRank(1), names[0])
}

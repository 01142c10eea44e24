package cluster

import (
	"math"
	"math/rand"

	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const maxIterations = 300

// Model is a fitted k-means partition of the scaled feature matrix.
type Model struct {
	K           int
	Centroids   [][]float64
	Assignments []int
}

// Fit runs the assign/recompute loop over X with centroids seeded from a
// deterministic source. Identical seed and input always produce identical
// assignments; the loop stops at convergence or the iteration cap.
func Fit(X [][]float64, k int, seed int64) (*Model, error) {
	if k < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cluster count must be positive")
	}
	if len(X) < k {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "fewer rows than clusters").
			WithDetails(map[string]int{"rows": len(X), "clusters": k})
	}

	rng := rand.New(rand.NewSource(seed))
	width := len(X[0])

	centroids := make([][]float64, k)
	for i, idx := range rng.Perm(len(X))[:k] {
		centroids[i] = append([]float64(nil), X[idx]...)
	}

	assignments := make([]int, len(X))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, row := range X {
			best := nearest(row, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, width)
		}
		for i, row := range X {
			c := assignments[i]
			counts[c]++
			floats.Add(sums[c], row)
		}
		for c := range centroids {
			if counts[c] == 0 {
				// Re-seed an emptied centroid from the point farthest from
				// its current assignment's centroid.
				centroids[c] = append([]float64(nil), farthestPoint(X, centroids, assignments)...)
				continue
			}
			floats.ScaleTo(centroids[c], 1/float64(counts[c]), sums[c])
		}
	}

	return &Model{K: k, Centroids: centroids, Assignments: assignments}, nil
}

func nearest(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(row, centroid, 2); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func farthestPoint(X [][]float64, centroids [][]float64, assignments []int) []float64 {
	worst := 0
	worstDist := -1.0
	for i, row := range X {
		if d := floats.Distance(row, centroids[assignments[i]], 2); d > worstDist {
			worst = i
			worstDist = d
		}
	}
	return X[worst]
}

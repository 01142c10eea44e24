package features

import (
	"math"

	"github.com/angelmondragon/churnsight/internal/rfm"
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// LogFeatures maps each customer to log1p-dampened [recency, frequency,
// monetary]. All three are non-negative by the RFM invariants, so log1p is
// total here.
func LogFeatures(customers []rfm.Customer) [][]float64 {
	X := make([][]float64, len(customers))
	for i, c := range customers {
		X[i] = []float64{
			math.Log1p(float64(c.RecencyDays)),
			math.Log1p(float64(c.Frequency)),
			math.Log1p(c.Monetary),
		}
	}
	return X
}

// Scaler standardizes features with batch-local statistics. Fitted means and
// deviations are exposed for diagnostics but never persisted: each run fits
// fresh, so scaled values are not comparable across batches.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// Fit computes per-column mean and standard deviation.
func Fit(X [][]float64) (*Scaler, error) {
	if len(X) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "no rows to fit scaler on")
	}
	width := len(X[0])
	s := &Scaler{
		Means: make([]float64, width),
		Stds:  make([]float64, width),
	}
	column := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i, row := range X {
			column[i] = row[j]
		}
		s.Means[j] = stat.Mean(column, nil)
		s.Stds[j] = stat.StdDev(column, nil)
	}
	return s, nil
}

// Transform returns a new standardized matrix. A zero-variance column is
// centered and left at zero rather than divided into NaN.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			centered := v - s.Means[j]
			if s.Stds[j] > 0 {
				scaled[j] = centered / s.Stds[j]
			}
		}
		out[i] = scaled
	}
	return out
}

// FitTransform fits on X and returns the standardized matrix.
func FitTransform(X [][]float64) ([][]float64, *Scaler, error) {
	s, err := Fit(X)
	if err != nil {
		return nil, nil, err
	}
	return s.Transform(X), s, nil
}

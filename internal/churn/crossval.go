package churn

import (
	"math/rand"

	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// CrossValidate computes k-fold accuracy over the full feature set as a
// stability check, independent of any train/test split the caller holds.
func CrossValidate(X [][]float64, y []bool, folds int, cfg ForestConfig) ([]float64, float64, error) {
	if folds < 2 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "cross-validation needs at least 2 folds")
	}
	if len(X) < folds {
		return nil, 0, pkgerrors.New(pkgerrors.CodeInsufficientData, "fewer rows than folds").
			WithDetails(map[string]int{"rows": len(X), "folds": folds})
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	order := rng.Perm(len(X))

	scores := make([]float64, 0, folds)
	for fold := 0; fold < folds; fold++ {
		var trainIdx, testIdx []int
		for pos, i := range order {
			if pos%folds == fold {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}

		trainX, trainY := subset(X, y, trainIdx)
		forest, err := FitForest(trainX, trainY, cfg)
		if err != nil {
			return nil, 0, err
		}

		correct := 0
		for _, i := range testIdx {
			if forest.Predict(X[i]) == y[i] {
				correct++
			}
		}
		scores = append(scores, float64(correct)/float64(len(testIdx)))
	}
	return scores, stat.Mean(scores, nil), nil
}

func subset(X [][]float64, y []bool, idx []int) ([][]float64, []bool) {
	subX := make([][]float64, len(idx))
	subY := make([]bool, len(idx))
	for pos, i := range idx {
		subX[pos] = X[i]
		subY[pos] = y[i]
	}
	return subX, subY
}

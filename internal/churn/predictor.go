package churn

import (
	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// Config controls the churn predictor stage.
type Config struct {
	Trees        int
	MaxDepth     int
	MinLeaf      int
	TestFraction float64
	Seed         int64
	Folds        int
}

// Prediction is the predictor output: a churn probability for every customer
// in the population, held-out evaluation, and cross-validated accuracy.
type Prediction struct {
	Probabilities []float64
	Eval          Evaluation
	CVScores      []float64
	CVMean        float64
}

const minTrainingRows = 5

// Predict trains the ensemble on a stratified split of the log-scaled RFM
// features, evaluates on the held-out split, and then scores the full
// population. Callers must ensure both label classes are present.
func Predict(X [][]float64, y []bool, cfg Config) (*Prediction, error) {
	if len(X) != len(y) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feature and label lengths differ")
	}
	if len(X) < minTrainingRows {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "too few customers to train on").
			WithDetails(map[string]int{"rows": len(X), "minimum": minTrainingRows})
	}

	churned := 0
	for _, label := range y {
		if label {
			churned++
		}
	}
	if churned == 0 || churned == len(y) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "churn labels contain a single class").
			WithDetails(map[string]int{"churned": churned, "total": len(y)})
	}

	trainIdx, testIdx := StratifiedSplit(y, cfg.TestFraction, cfg.Seed)
	trainX, trainY := subset(X, y, trainIdx)

	fcfg := ForestConfig{Trees: cfg.Trees, MaxDepth: cfg.MaxDepth, MinLeaf: cfg.MinLeaf, Seed: cfg.Seed}
	forest, err := FitForest(trainX, trainY, fcfg)
	if err != nil {
		return nil, err
	}

	testTrue := make([]bool, len(testIdx))
	testPred := make([]bool, len(testIdx))
	for pos, i := range testIdx {
		testTrue[pos] = y[i]
		testPred[pos] = forest.Predict(X[i])
	}

	scores, mean, err := CrossValidate(X, y, cfg.Folds, fcfg)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Probabilities: forest.ProbaAll(X),
		Eval:          Evaluate(testTrue, testPred),
		CVScores:      scores,
		CVMean:        mean,
	}, nil
}

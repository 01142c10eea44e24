package churn

import (
	"math/rand"

	pkgerrors "github.com/angelmondragon/churnsight/pkg/errors"
)

// ForestConfig controls the bagged tree ensemble.
type ForestConfig struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
}

// Forest is a bagging ensemble of decision trees with inverse-frequency
// class weighting. Probability estimates average the leaf churn shares
// across trees.
type Forest struct {
	trees []*treeNode
}

// FitForest trains the ensemble: each tree sees a bootstrap resample of the
// training rows. The master seed drives every resample, so training is
// deterministic.
func FitForest(X [][]float64, y []bool, cfg ForestConfig) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientData, "empty or mismatched training set")
	}

	var churned int
	for _, label := range y {
		if label {
			churned++
		}
	}
	retained := len(y) - churned

	tcfg := treeConfig{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf, weights: [2]float64{1, 1}}
	// Inverse-frequency class weights, as sklearn's "balanced" mode:
	// w_c = n / (2 * n_c).
	if churned > 0 && retained > 0 {
		n := float64(len(y))
		tcfg.weights[0] = n / (2 * float64(retained))
		tcfg.weights[1] = n / (2 * float64(churned))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trees := make([]*treeNode, cfg.Trees)
	for t := 0; t < cfg.Trees; t++ {
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}
		trees[t] = buildTree(X, y, sample, 0, tcfg)
	}
	return &Forest{trees: trees}, nil
}

// Proba returns the ensemble churn probability for one feature row.
func (f *Forest) Proba(row []float64) float64 {
	var sum float64
	for _, tree := range f.trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(f.trees))
}

// ProbaAll scores every row of X.
func (f *Forest) ProbaAll(X [][]float64) []float64 {
	probs := make([]float64, len(X))
	for i, row := range X {
		probs[i] = f.Proba(row)
	}
	return probs
}

// Predict thresholds the ensemble probability at 0.5.
func (f *Forest) Predict(row []float64) bool {
	return f.Proba(row) >= 0.5
}

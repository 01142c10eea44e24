package churn

import "sort"

// treeNode is one node of a binary classification tree over float features.
// Leaves carry the weighted churn probability of the samples that reached them.
type treeNode struct {
	leaf        bool
	probability float64
	feature     int
	threshold   float64
	left        *treeNode
	right       *treeNode
}

type treeConfig struct {
	maxDepth int
	minLeaf  int
	// weights[0] applies to retained samples, weights[1] to churned ones;
	// inverse-frequency weighting keeps rare churners from being ignored.
	weights [2]float64
}

func buildTree(X [][]float64, y []bool, idx []int, depth int, cfg treeConfig) *treeNode {
	w0, w1 := weightedCounts(y, idx, cfg.weights)
	node := &treeNode{probability: churnShare(w0, w1)}

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf || w0 == 0 || w1 == 0 {
		node.leaf = true
		return node
	}

	feature, threshold, ok := bestSplit(X, y, idx, cfg)
	if !ok {
		node.leaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeaf || len(right) < cfg.minLeaf {
		node.leaf = true
		return node
	}

	node.feature = feature
	node.threshold = threshold
	node.left = buildTree(X, y, left, depth+1, cfg)
	node.right = buildTree(X, y, right, depth+1, cfg)
	return node
}

// bestSplit scans every feature with a sorted sweep, scoring candidate
// thresholds by weighted gini impurity of the resulting partition.
func bestSplit(X [][]float64, y []bool, idx []int, cfg treeConfig) (int, float64, bool) {
	bestFeature, bestThreshold := -1, 0.0
	bestScore := gini(weightedCounts(y, idx, cfg.weights))

	width := len(X[idx[0]])
	order := make([]int, len(idx))
	for feature := 0; feature < width; feature++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool {
			return X[order[a]][feature] < X[order[b]][feature]
		})

		totalW0, totalW1 := weightedCounts(y, idx, cfg.weights)
		var leftW0, leftW1 float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			if y[i] {
				leftW1 += cfg.weights[1]
			} else {
				leftW0 += cfg.weights[0]
			}
			cur, next := X[i][feature], X[order[pos+1]][feature]
			if cur == next {
				continue
			}
			rightW0, rightW1 := totalW0-leftW0, totalW1-leftW1
			leftTotal, rightTotal := leftW0+leftW1, rightW0+rightW1
			score := (leftTotal*gini(leftW0, leftW1) + rightTotal*gini(rightW0, rightW1)) / (leftTotal + rightTotal)
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedCounts(y []bool, idx []int, weights [2]float64) (float64, float64) {
	var w0, w1 float64
	for _, i := range idx {
		if y[i] {
			w1 += weights[1]
		} else {
			w0 += weights[0]
		}
	}
	return w0, w1
}

func gini(w0, w1 float64) float64 {
	total := w0 + w1
	if total == 0 {
		return 0
	}
	p0, p1 := w0/total, w1/total
	return 1 - p0*p0 - p1*p1
}

func churnShare(w0, w1 float64) float64 {
	if w0+w1 == 0 {
		return 0
	}
	return w1 / (w0 + w1)
}

func (n *treeNode) predict(row []float64) float64 {
	node := n
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probability
}

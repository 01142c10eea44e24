package churn

import (
	"fmt"
	"strings"
)

// ClassMetrics is one row of the classification report.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluation bundles the held-out diagnostics. It is presentation input for
// the caller, not persisted state.
type Evaluation struct {
	// Confusion[actual][predicted], index 0 = retained, 1 = churned.
	Confusion [2][2]int
	Accuracy  float64
	Classes   []ClassMetrics
}

// Evaluate compares predictions against held-out labels.
func Evaluate(yTrue, yPred []bool) Evaluation {
	var eval Evaluation
	correct := 0
	for i := range yTrue {
		a, p := boolIdx(yTrue[i]), boolIdx(yPred[i])
		eval.Confusion[a][p]++
		if a == p {
			correct++
		}
	}
	if len(yTrue) > 0 {
		eval.Accuracy = float64(correct) / float64(len(yTrue))
	}

	labels := []string{"retained", "churned"}
	for c := 0; c < 2; c++ {
		tp := eval.Confusion[c][c]
		predicted := eval.Confusion[0][c] + eval.Confusion[1][c]
		actual := eval.Confusion[c][0] + eval.Confusion[c][1]

		metrics := ClassMetrics{Label: labels[c], Support: actual}
		if predicted > 0 {
			metrics.Precision = float64(tp) / float64(predicted)
		}
		if actual > 0 {
			metrics.Recall = float64(tp) / float64(actual)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}
		eval.Classes = append(eval.Classes, metrics)
	}
	return eval
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Report renders the classification report as console text.
func (e Evaluation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range e.Classes {
		fmt.Fprintf(&b, "%-12s %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\n%-12s %39.2f\n", "accuracy", e.Accuracy)
	fmt.Fprintf(&b, "\nconfusion matrix [actual x predicted]:\n")
	fmt.Fprintf(&b, "%-12s %9d %9d\n", "retained", e.Confusion[0][0], e.Confusion[0][1])
	fmt.Fprintf(&b, "%-12s %9d %9d\n", "churned", e.Confusion[1][0], e.Confusion[1][1])
	return b.String()
}

package training

import (
	"fmt"
	"strings"

	"github.com/mikey/phish-detector/internal/core"
)

// ClassReport holds per-class precision, recall and F1
type ClassReport struct {
	Label     core.Label `json:"label"`
	Precision float64    `json:"precision"`
	Recall    float64    `json:"recall"`
	F1        float64    `json:"f1"`
	Support   int        `json:"support"`
}

// Evaluation summarizes predictions against true labels
type Evaluation struct {
	Accuracy float64       `json:"accuracy"`
	Classes  []ClassReport `json:"classes"`
	// Confusion[i][j] counts samples of true class i predicted as class j
	Confusion [2][2]int `json:"confusion_matrix"`
}

var classLabels = [2]core.Label{core.LabelLegitimate, core.LabelPhishing}

// Evaluate compares predicted classes with the true ones
func Evaluate(truth, predicted []int) Evaluation {
	var e Evaluation
	if len(truth) == 0 {
		return e
	}
	correct := 0
	for i := range truth {
		e.Confusion[truth[i]][predicted[i]]++
		if truth[i] == predicted[i] {
			correct++
		}
	}
	e.Accuracy = float64(correct) / float64(len(truth))

	for c := range classLabels {
		tp := e.Confusion[c][c]
		fp := e.Confusion[1-c][c]
		fn := e.Confusion[c][1-c]
		r := ClassReport{Label: classLabels[c], Support: tp + fn}
		r.Precision = ratio(tp, tp+fp)
		r.Recall = ratio(tp, tp+fn)
		if r.Precision+r.Recall > 0 {
			r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
		}
		e.Classes = append(e.Classes, r)
	}
	return e
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// String renders a classification report
func (e Evaluation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range e.Classes {
		fmt.Fprintf(&b, "%-12s %9.2f %9.2f %9.2f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\naccuracy %.4f\n", e.Accuracy)
	fmt.Fprintf(&b, "confusion matrix (rows true, columns predicted):\n")
	fmt.Fprintf(&b, "%-12s %10s %10s\n", "", classLabels[0], classLabels[1])
	for i, row := range e.Confusion {
		fmt.Fprintf(&b, "%-12s %10d %10d\n", classLabels[i], row[0], row[1])
	}
	return b.String()
}

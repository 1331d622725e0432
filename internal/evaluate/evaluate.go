// Package evaluate scores fitted probabilities: threshold classification,
// confusion metrics, ROC curves, and the seeded train/test split.
package evaluate

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Threshold labels each probability positive when it is at or above the
// cutoff. Ties go to positive.
func Threshold(probs []float64, cutoff float64) []bool {
	out := make([]bool, len(probs))
	for i, p := range probs {
		out[i] = p >= cutoff
	}
	return out
}

// Confusion is a 2x2 classification table.
type Confusion struct {
	TP, FP, TN, FN int
}

// NewConfusion tabulates predictions against labels at the given cutoff.
// A label equal to positive counts as an actual positive; every other value
// is negative.
func NewConfusion(probs, labels []float64, positive, cutoff float64) (Confusion, error) {
	if len(probs) != len(labels) {
		return Confusion{}, fmt.Errorf("evaluate: %d probabilities but %d labels", len(probs), len(labels))
	}
	var c Confusion
	for i, pred := range Threshold(probs, cutoff) {
		actual := labels[i] == positive
		switch {
		case pred && actual:
			c.TP++
		case pred && !actual:
			c.FP++
		case !pred && actual:
			c.FN++
		default:
			c.TN++
		}
	}
	return c, nil
}

// Sensitivity is the true-positive rate among actual positives.
func (c Confusion) Sensitivity() float64 {
	if c.TP+c.FN == 0 {
		return 0
	}
	return float64(c.TP) / float64(c.TP+c.FN)
}

// Specificity is the true-negative rate among actual negatives.
func (c Confusion) Specificity() float64 {
	if c.TN+c.FP == 0 {
		return 0
	}
	return float64(c.TN) / float64(c.TN+c.FP)
}

// FalsePositiveRate is 1 - specificity.
func (c Confusion) FalsePositiveRate() float64 { return 1 - c.Specificity() }

// FalseNegativeRate is 1 - sensitivity.
func (c Confusion) FalseNegativeRate() float64 { return 1 - c.Sensitivity() }

// MisclassificationRate is the share of rows on the wrong side of the
// cutoff.
func (c Confusion) MisclassificationRate() float64 {
	total := c.TP + c.FP + c.TN + c.FN
	if total == 0 {
		return 0
	}
	return float64(c.FP+c.FN) / float64(total)
}

// ROCCurve is a swept true-positive rate versus false-positive rate curve.
// Points run from (0,0) up to (1,1) as the cutoff falls.
type ROCCurve struct {
	FPR []float64
	TPR []float64
}

// ROC sweeps every threshold over the scores and returns the resulting
// curve. Curve computation is delegated to gonum's stat.ROC, which wants
// scores in increasing order.
func ROC(probs, labels []float64, positive float64) (ROCCurve, error) {
	if len(probs) != len(labels) {
		return ROCCurve{}, fmt.Errorf("evaluate: %d probabilities but %d labels", len(probs), len(labels))
	}
	if len(probs) == 0 {
		return ROCCurve{}, fmt.Errorf("evaluate: no observations")
	}
	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	sorted := make([]float64, len(probs))
	classes := make([]bool, len(probs))
	for r, i := range idx {
		sorted[r] = probs[i]
		classes[r] = labels[i] == positive
	}
	tpr, fpr, _ := stat.ROC(nil, sorted, classes, nil)
	return ROCCurve{FPR: fpr, TPR: tpr}, nil
}

// Split partitions n rows into train and test index sets of fraction frac
// and 1-frac, from a seeded shuffle. Both slices come back sorted, and
// together they cover every row exactly once.
func Split(n int, frac float64, rng *rand.Rand) (train, test []int) {
	perm := rng.Perm(n)
	nTrain := int(frac*float64(n) + 0.5)
	train = append([]int(nil), perm[:nTrain]...)
	test = append([]int(nil), perm[nTrain:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

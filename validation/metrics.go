package validation

import (
	"fmt"
	"math"
)

// logLossEps bounds probabilities away from 0 and 1.
const logLossEps = 1e-15

// LogLoss returns the mean binary cross-entropy of the probabilities p of
// label 1 against labels y.
func LogLoss(y []int, p []float64) (float64, error) {
	if len(y) != len(p) {
		return 0, fmt.Errorf("%w: %d labels but %d probabilities", ErrInvalidParameter, len(y), len(p))
	}

	if len(y) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrInvalidParameter)
	}

	var sum float64

	for i, label := range y {
		q := math.Min(math.Max(p[i], logLossEps), 1-logLossEps)

		switch label {
		case 1:
			sum -= math.Log(q)
		case 0:
			sum -= math.Log(1 - q)
		default:
			return 0, fmt.Errorf("%w: label %d at %d, want 0 or 1", ErrInvalidParameter, label, i)
		}
	}

	return sum / float64(len(y)), nil
}

// ConfusionMatrix counts binary predictions, indexed [true][predicted]:
// [0][0] true negatives, [0][1] false positives, [1][0] false negatives and
// [1][1] true positives.
type ConfusionMatrix [2][2]int

// NewConfusionMatrix tallies predictions against the true labels.
func NewConfusionMatrix(yTrue, yPred []int) (ConfusionMatrix, error) {
	var m ConfusionMatrix

	if len(yTrue) != len(yPred) {
		return m, fmt.Errorf("%w: %d labels but %d predictions", ErrInvalidParameter, len(yTrue), len(yPred))
	}

	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t > 1 || p < 0 || p > 1 {
			return m, fmt.Errorf("%w: labels (%d, %d) at %d, want 0 or 1", ErrInvalidParameter, t, p, i)
		}

		m[t][p]++
	}

	return m, nil
}

// TP returns the true positives.
func (m ConfusionMatrix) TP() int { return m[1][1] }

// TN returns the true negatives.
func (m ConfusionMatrix) TN() int { return m[0][0] }

// FP returns the false positives.
func (m ConfusionMatrix) FP() int { return m[0][1] }

// FN returns the false negatives.
func (m ConfusionMatrix) FN() int { return m[1][0] }

// Total returns the number of tallied samples.
func (m ConfusionMatrix) Total() int {
	return m[0][0] + m[0][1] + m[1][0] + m[1][1]
}

// Sensitivity returns the true positive rate as a percentage. It is NaN
// when there are no positive samples.
func (m ConfusionMatrix) Sensitivity() float64 {
	return 100 * float64(m.TP()) / float64(m.FN()+m.TP())
}

// Specificity returns the true negative rate as a percentage. It is NaN
// when there are no negative samples.
func (m ConfusionMatrix) Specificity() float64 {
	return 100 * float64(m.TN()) / float64(m.TN()+m.FP())
}

package validation

import (
	"fmt"

	"github.com/thalesfsp/hotune/dataset"
	"gonum.org/v1/gonum/mat"
)

// Estimator is a binary classifier with labels 0 and 1.
type Estimator interface {
	Fit(x *mat.Dense, y []int) error
	Predict(x *mat.Dense) ([]int, error)
	// PredictProba returns the probability of label 1 for each row.
	PredictProba(x *mat.Dense) ([]float64, error)
}

// Scorer rates a fitted estimator on held out data. Higher is better.
type Scorer func(est Estimator, x *mat.Dense, y []int) (float64, error)

// NegLogLoss scores by the negated log loss of the predicted probabilities.
func NegLogLoss(est Estimator, x *mat.Dense, y []int) (float64, error) {
	proba, err := est.PredictProba(x)
	if err != nil {
		return 0, err
	}

	loss, err := LogLoss(y, proba)
	if err != nil {
		return 0, err
	}

	return -loss, nil
}

// Accuracy scores by the fraction of correctly predicted labels.
func Accuracy(est Estimator, x *mat.Dense, y []int) (float64, error) {
	pred, err := est.Predict(x)
	if err != nil {
		return 0, err
	}

	if len(pred) != len(y) {
		return 0, fmt.Errorf("%w: %d predictions for %d labels", ErrInvalidParameter, len(pred), len(y))
	}

	if len(y) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrInvalidParameter)
	}

	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(y)), nil
}

// CrossValScore fits est on the train part of every fold produced by cv
// and returns the score of each test part, in fold order. The estimator is
// refitted for every fold.
func CrossValScore(est Estimator, x *mat.Dense, y []int, cv Splitter, scorer Scorer) ([]float64, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidParameter)
	}

	if rows, _ := x.Dims(); rows != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidParameter, rows, len(y))
	}

	folds, err := cv.Split(y)
	if err != nil {
		return nil, err
	}

	d := dataset.Dataset{X: x, Y: y}
	scores := make([]float64, 0, len(folds))

	for i, fold := range folds {
		train, test := d.Subset(fold.Train), d.Subset(fold.Test)

		if err := est.Fit(train.X, train.Y); err != nil {
			return nil, fmt.Errorf("fold %d: fit: %w", i, err)
		}

		score, err := scorer(est, test.X, test.Y)
		if err != nil {
			return nil, fmt.Errorf("fold %d: score: %w", i, err)
		}

		scores = append(scores, score)
	}

	return scores, nil
}

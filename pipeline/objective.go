package pipeline

import (
	"fmt"

	"github.com/thalesfsp/hotune/dataset"
	"github.com/thalesfsp/hotune/svm"
	"github.com/thalesfsp/hotune/validation"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Objective scores a (C, gamma) pair by the mean log loss of a stratified
// k-fold cross validation on the training data. Lower is better.
type Objective struct {
	train  dataset.Dataset
	folds  int
	svc    *svm.SVC
	seeds  *Incrementer
	logger *zap.Logger
}

// NewObjective returns an objective cross validating svc on train. Every
// evaluation takes the next seed from seeds for its fold shuffle.
func NewObjective(train dataset.Dataset, folds int, svc *svm.SVC, seeds *Incrementer, logger *zap.Logger) *Objective {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Objective{
		train:  train,
		folds:  folds,
		svc:    svc,
		seeds:  seeds,
		logger: logger,
	}
}

// Evaluate takes params as (C, gamma) and returns the negated mean of the
// negative log loss scores.
func (o *Objective) Evaluate(params ...float64) (float64, error) {
	if len(params) != 2 {
		return 0, fmt.Errorf("want 2 parameters (C, gamma), got %d", len(params))
	}

	c, gamma := params[0], params[1]
	seed := o.seeds.Increment()

	o.svc.SetParams(c, gamma)

	scores, err := validation.CrossValScore(
		o.svc,
		o.train.X,
		o.train.Y,
		validation.NewStratifiedKFold(o.folds, seed),
		validation.NegLogLoss,
	)
	if err != nil {
		return 0, fmt.Errorf("cross validation with C=%v gamma=%v: %w", c, gamma, err)
	}

	value := -stat.Mean(scores, nil)

	o.logger.Debug("objective evaluated",
		zap.Float64("C", c),
		zap.Float64("gamma", gamma),
		zap.Int64("seed", seed),
		zap.Float64("log_loss", value),
	)

	return value, nil
}

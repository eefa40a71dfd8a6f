// Package svm implements a binary C-support vector classifier with a
// radial basis function kernel.
//
// Training solves the dual problem with sequential minimal optimization
// and second order working set selection. When probability estimates are
// requested, a sigmoid is fitted on decision values obtained by internal
// cross validation (Platt scaling).
//
// Labels are 0 and 1; label 1 is the positive class, so a positive
// decision value predicts 1.
package svm

import (
	"errors"
	"fmt"
	"math"

	"github.com/thalesfsp/hotune/dataset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned when predicting with a classifier that was
	// never fitted.
	ErrNotFitted = errors.New("classifier is not fitted")

	// ErrInvalidParameter is returned (wrapped) for unusable parameters or
	// training data.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSingleClass is returned when the training labels hold one class only.
	ErrSingleClass = errors.New("training data holds a single class")
)

// Params configures a classifier.
type Params struct {
	// C is the penalty of misclassified samples. Must be positive.
	C float64

	// Gamma is the RBF kernel coefficient, k(a, b) = exp(-Gamma*|a-b|^2).
	// Must be positive.
	Gamma float64

	// Tol is the stopping tolerance of the solver.
	Tol float64

	// MaxIter bounds the solver iterations. Zero picks
	// max(10000000, 100*n).
	MaxIter int

	// Probability enables PredictProba, at the cost of ProbabilityFolds
	// extra trainings per Fit.
	Probability bool

	// ProbabilityFolds is the number of internal folds used to collect
	// decision values for Platt scaling.
	ProbabilityFolds int

	// Seed drives the shuffle of the internal folds.
	Seed int64
}

// DefaultParams returns C=1, gamma=0.5 (one over the two features of the
// moons data) and a 1e-3 tolerance, without probability estimates.
func DefaultParams() Params {
	return Params{
		C:                1,
		Gamma:            0.5,
		Tol:              1e-3,
		ProbabilityFolds: 5,
	}
}

// Validate reports whether the parameters can be used for training.
func (p Params) Validate() error {
	switch {
	case !(p.C > 0) || math.IsInf(p.C, 0):
		return fmt.Errorf("%w: C must be positive, got %v", ErrInvalidParameter, p.C)
	case !(p.Gamma > 0) || math.IsInf(p.Gamma, 0):
		return fmt.Errorf("%w: gamma must be positive, got %v", ErrInvalidParameter, p.Gamma)
	case !(p.Tol > 0):
		return fmt.Errorf("%w: tolerance must be positive, got %v", ErrInvalidParameter, p.Tol)
	case p.MaxIter < 0:
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidParameter, p.MaxIter)
	case p.Probability && p.ProbabilityFolds < 2:
		return fmt.Errorf("%w: probability needs at least 2 folds, got %d", ErrInvalidParameter, p.ProbabilityFolds)
	}

	return nil
}

// SVC is a binary support vector classifier.
type SVC struct {
	params Params
	logger *zap.Logger

	// Fitted state.
	sv     *mat.Dense
	coef   []float64
	rho    float64
	probA  float64
	probB  float64
	proba  bool
	fitted bool
}

// New returns an unfitted classifier.
func New(params Params) *SVC {
	return &SVC{params: params, logger: zap.NewNop()}
}

// SetLogger sets the logger receiving solver diagnostics. A nil logger
// disables them.
func (s *SVC) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s.logger = logger
}

// Params returns the current parameters.
func (s *SVC) Params() Params {
	return s.params
}

// SetParams changes C and gamma. The classifier must be fitted again
// before predicting.
func (s *SVC) SetParams(c, gamma float64) {
	s.params.C = c
	s.params.Gamma = gamma
	s.reset()
}

// NumSupportVectors returns how many training samples the fitted model kept.
func (s *SVC) NumSupportVectors() int {
	return len(s.coef)
}

// Fit trains the classifier on x with labels y in {0, 1}.
func (s *SVC) Fit(x *mat.Dense, y []int) error {
	s.reset()

	if err := s.params.Validate(); err != nil {
		return err
	}

	signs, err := checkProblem(x, y)
	if err != nil {
		return err
	}

	if err := s.fitDecision(x, signs); err != nil {
		return err
	}

	if s.params.Probability {
		if err := s.fitProbability(x, y); err != nil {
			s.reset()

			return err
		}
	}

	return nil
}

// DecisionFunction returns the signed distance of every row of x to the
// separating surface, positive for class 1.
func (s *SVC) DecisionFunction(x *mat.Dense) ([]float64, error) {
	if err := s.checkInput(x); err != nil {
		return nil, err
	}

	rows, _ := x.Dims()
	out := make([]float64, rows)

	for i := range out {
		out[i] = s.decision(x.RawRowView(i))
	}

	return out, nil
}

// Predict returns the predicted label of every row of x.
func (s *SVC) Predict(x *mat.Dense) ([]int, error) {
	dec, err := s.DecisionFunction(x)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(dec))
	for i, v := range dec {
		if v > 0 {
			labels[i] = 1
		}
	}

	return labels, nil
}

// PredictProba returns the probability of class 1 for every row of x. The
// classifier must have been fitted with Params.Probability set.
func (s *SVC) PredictProba(x *mat.Dense) ([]float64, error) {
	if s.fitted && !s.proba {
		return nil, fmt.Errorf("%w: probability estimates were not enabled", ErrNotFitted)
	}

	dec, err := s.DecisionFunction(x)
	if err != nil {
		return nil, err
	}

	for i, v := range dec {
		dec[i] = sigmoidPredict(v, s.probA, s.probB)
	}

	return dec, nil
}

// fitDecision solves the dual problem and keeps the support vectors.
func (s *SVC) fitDecision(x *mat.Dense, signs []float64) error {
	n := len(signs)

	maxIter := s.params.MaxIter
	if maxIter == 0 {
		maxIter = max(10000000, 100*n)
	}

	sol := newSolver(gram(x, signs, s.params.Gamma), signs, s.params.C, s.params.Tol, maxIter).solve()

	if !sol.converged {
		s.logger.Warn("reaching max number of iterations", zap.Int("iterations", sol.iterations))
	}

	var idx []int
	for i, a := range sol.alpha {
		if a > 0 {
			idx = append(idx, i)
		}
	}

	coef := make([]float64, len(idx))
	bounded := 0

	for k, i := range idx {
		coef[k] = sol.alpha[i] * signs[i]
		if sol.alpha[i] >= s.params.C {
			bounded++
		}
	}

	s.logger.Debug("optimization finished",
		zap.Int("iterations", sol.iterations),
		zap.Float64("obj", sol.obj),
		zap.Float64("rho", sol.rho),
		zap.Int("nSV", len(idx)),
		zap.Int("nBSV", bounded),
	)

	s.sv = dataset.Rows(x, idx)
	s.coef = coef
	s.rho = sol.rho
	s.fitted = true

	return nil
}

// decision evaluates the decision function at a single point.
func (s *SVC) decision(x []float64) float64 {
	sum := -s.rho

	for k, c := range s.coef {
		sum += c * rbf(s.sv.RawRowView(k), x, s.params.Gamma)
	}

	return sum
}

func (s *SVC) checkInput(x *mat.Dense) error {
	if !s.fitted {
		return ErrNotFitted
	}

	if x == nil {
		return fmt.Errorf("%w: nil matrix", ErrInvalidParameter)
	}

	if s.sv == nil {
		return nil
	}

	_, want := s.sv.Dims()
	if _, cols := x.Dims(); cols != want {
		return fmt.Errorf("%w: fitted on %d features, got %d", ErrInvalidParameter, want, cols)
	}

	return nil
}

func (s *SVC) reset() {
	s.sv = nil
	s.coef = nil
	s.rho = 0
	s.probA, s.probB = 0, 0
	s.proba = false
	s.fitted = false
}

// checkProblem validates the training data and maps labels to -1/+1.
func checkProblem(x *mat.Dense, y []int) ([]float64, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidParameter)
	}

	if rows, _ := x.Dims(); rows != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidParameter, rows, len(y))
	}

	signs := make([]float64, len(y))
	positives := 0

	for i, label := range y {
		switch label {
		case 0:
			signs[i] = -1
		case 1:
			signs[i] = 1
			positives++
		default:
			return nil, fmt.Errorf("%w: label %d at row %d, want 0 or 1", ErrInvalidParameter, label, i)
		}
	}

	if positives == 0 || positives == len(y) {
		return nil, ErrSingleClass
	}

	return signs, nil
}

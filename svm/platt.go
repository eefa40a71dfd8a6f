package svm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/thalesfsp/hotune/dataset"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Newton method settings of the sigmoid fit.
const (
	plattMaxIter = 100
	plattMinStep = 1e-10
	plattSigma   = 1e-12 // keeps the Hessian strictly positive definite
	plattEps     = 1e-5
)

// fitProbability collects out-of-fold decision values on a seeded shuffle
// of the training data and fits the sigmoid mapping them to P(y=1).
func (s *SVC) fitProbability(x *mat.Dense, y []int) error {
	n := len(y)
	folds := s.params.ProbabilityFolds

	perm := rand.New(rand.NewSource(s.params.Seed)).Perm(n)
	dec := make([]float64, n)

	sub := s.params
	sub.Probability = false

	for f := 0; f < folds; f++ {
		begin := f * n / folds
		end := (f + 1) * n / folds

		if begin == end {
			continue
		}

		trainIdx := make([]int, 0, n-(end-begin))
		trainIdx = append(trainIdx, perm[:begin]...)
		trainIdx = append(trainIdx, perm[end:]...)

		subY := make([]int, len(trainIdx))
		positives := 0

		for k, i := range trainIdx {
			subY[k] = y[i]
			positives += y[i]
		}

		switch {
		case len(trainIdx) == 0:
			fill(dec, perm[begin:end], 0)
		case positives == len(trainIdx):
			fill(dec, perm[begin:end], 1)
		case positives == 0:
			fill(dec, perm[begin:end], -1)
		default:
			model := New(sub)
			model.SetLogger(s.logger)

			if err := model.Fit(dataset.Rows(x, trainIdx), subY); err != nil {
				return fmt.Errorf("probability fold %d: %w", f, err)
			}

			for _, i := range perm[begin:end] {
				dec[i] = model.decision(x.RawRowView(i))
			}
		}
	}

	s.probA, s.probB = sigmoidTrain(dec, y, s.logger)
	s.proba = true

	return nil
}

func fill(dst []float64, idx []int, v float64) {
	for _, i := range idx {
		dst[i] = v
	}
}

// sigmoidTrain fits P(y=1|f) = 1/(1+exp(A*f+B)) on decision values f by
// Newton's method with backtracking, using regularized targets.
func sigmoidTrain(dec []float64, labels []int, logger *zap.Logger) (a, b float64) {
	var prior1, prior0 float64

	for _, label := range labels {
		if label > 0 {
			prior1++
		} else {
			prior0++
		}
	}

	hiTarget := (prior1 + 1) / (prior1 + 2)
	loTarget := 1 / (prior0 + 2)

	t := make([]float64, len(labels))
	for i, label := range labels {
		if label > 0 {
			t[i] = hiTarget
		} else {
			t[i] = loTarget
		}
	}

	objective := func(a, b float64) float64 {
		var f float64

		for i, d := range dec {
			fApB := d*a + b
			if fApB >= 0 {
				f += t[i]*fApB + math.Log1p(math.Exp(-fApB))
			} else {
				f += (t[i]-1)*fApB + math.Log1p(math.Exp(fApB))
			}
		}

		return f
	}

	a, b = 0, math.Log((prior0+1)/(prior1+1))
	fval := objective(a, b)

	iter := 0
	for ; iter < plattMaxIter; iter++ {
		// Gradient and Hessian (H' = H + sigma*I).
		h11, h22, h21 := plattSigma, plattSigma, 0.0
		g1, g2 := 0.0, 0.0

		for i, d := range dec {
			fApB := d*a + b

			var p, q float64
			if fApB >= 0 {
				p = math.Exp(-fApB) / (1 + math.Exp(-fApB))
				q = 1 / (1 + math.Exp(-fApB))
			} else {
				p = 1 / (1 + math.Exp(fApB))
				q = math.Exp(fApB) / (1 + math.Exp(fApB))
			}

			d2 := p * q
			h11 += d * d * d2
			h22 += d2
			h21 += d * d2

			d1 := t[i] - p
			g1 += d * d1
			g2 += d1
		}

		if math.Abs(g1) < plattEps && math.Abs(g2) < plattEps {
			break
		}

		// Newton direction -inv(H')*g.
		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB

		step := 1.0
		for ; step >= plattMinStep; step /= 2 {
			newA, newB := a+step*dA, b+step*dB

			if newf := objective(newA, newB); newf < fval+0.0001*step*gd {
				a, b, fval = newA, newB, newf

				break
			}
		}

		if step < plattMinStep {
			logger.Warn("line search fails in two-class probability estimates")

			break
		}
	}

	if iter >= plattMaxIter {
		logger.Warn("reaching maximal iterations in two-class probability estimates")
	}

	return a, b
}

// sigmoidPredict returns 1/(1+exp(A*f+B)) without overflowing.
func sigmoidPredict(dec, a, b float64) float64 {
	fApB := dec*a + b
	if fApB >= 0 {
		return math.Exp(-fApB) / (1 + math.Exp(-fApB))
	}

	return 1 / (1 + math.Exp(fApB))
}

package svm

import "math"

// tau replaces non-positive curvature in the working set selection.
const tau = 1e-12

// solution is the outcome of a solver run.
type solution struct {
	alpha      []float64
	rho        float64
	obj        float64
	iterations int
	converged  bool
}

// solver minimizes 0.5*a'Qa - e'a subject to y'a = 0 and 0 <= a_i <= C
// by sequential minimal optimization. Each step picks the maximal
// violating index i and the j giving the largest second order decrease of
// the objective, then solves the two variable sub-problem analytically.
type solver struct {
	q       [][]float64
	y       []float64
	c       float64
	tol     float64
	maxIter int

	alpha []float64
	grad  []float64
}

func newSolver(q [][]float64, y []float64, c, tol float64, maxIter int) *solver {
	n := len(y)

	grad := make([]float64, n)
	for i := range grad {
		// Gradient of the objective at alpha = 0.
		grad[i] = -1
	}

	return &solver{
		q:       q,
		y:       y,
		c:       c,
		tol:     tol,
		maxIter: maxIter,
		alpha:   make([]float64, n),
		grad:    grad,
	}
}

func (s *solver) isUpperBound(i int) bool { return s.alpha[i] >= s.c }

func (s *solver) isLowerBound(i int) bool { return s.alpha[i] <= 0 }

func (s *solver) solve() solution {
	sol := solution{converged: true}

	for {
		i, j, done := s.selectWorkingSet()
		if done {
			break
		}

		if sol.iterations >= s.maxIter {
			sol.converged = false

			break
		}

		sol.iterations++

		s.update(i, j)
	}

	sol.rho = s.calculateRho()

	for i, a := range s.alpha {
		sol.obj += a * (s.grad[i] - 1)
	}

	sol.obj /= 2
	sol.alpha = s.alpha

	return sol
}

// selectWorkingSet returns the pair to optimize next, or done when the
// maximal violation is below the tolerance.
func (s *solver) selectWorkingSet() (i, j int, done bool) {
	gmax := math.Inf(-1)
	gmax2 := math.Inf(-1)
	i, j = -1, -1

	for t := range s.alpha {
		if s.y[t] > 0 {
			if !s.isUpperBound(t) && -s.grad[t] >= gmax {
				gmax = -s.grad[t]
				i = t
			}
		} else if !s.isLowerBound(t) && s.grad[t] >= gmax {
			gmax = s.grad[t]
			i = t
		}
	}

	if i == -1 {
		return 0, 0, true
	}

	qi := s.q[i]
	objDiffMin := math.Inf(1)

	for t := range s.alpha {
		var gradDiff, quadCoef float64

		if s.y[t] > 0 {
			if s.isLowerBound(t) {
				continue
			}

			gradDiff = gmax + s.grad[t]
			gmax2 = math.Max(gmax2, s.grad[t])
			quadCoef = 1 + 1 - 2*s.y[i]*qi[t]
		} else {
			if s.isUpperBound(t) {
				continue
			}

			gradDiff = gmax - s.grad[t]
			gmax2 = math.Max(gmax2, -s.grad[t])
			quadCoef = 1 + 1 + 2*s.y[i]*qi[t]
		}

		if gradDiff <= 0 {
			continue
		}

		if quadCoef <= 0 {
			quadCoef = tau
		}

		if objDiff := -(gradDiff * gradDiff) / quadCoef; objDiff <= objDiffMin {
			objDiffMin = objDiff
			j = t
		}
	}

	if gmax+gmax2 < s.tol || j == -1 {
		return 0, 0, true
	}

	return i, j, false
}

// update solves the sub-problem in alpha[i], alpha[j] and refreshes the
// gradient. The diagonal of Q is 1 for the RBF kernel.
func (s *solver) update(i, j int) {
	qi, qj := s.q[i], s.q[j]
	c := s.c

	oldI, oldJ := s.alpha[i], s.alpha[j]

	if s.y[i] != s.y[j] {
		quadCoef := 2 + 2*qi[j]
		if quadCoef <= 0 {
			quadCoef = tau
		}

		delta := (-s.grad[i] - s.grad[j]) / quadCoef
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta

		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = -diff
		}

		if diff > 0 {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = c - diff
			}
		} else if s.alpha[j] > c {
			s.alpha[j] = c
			s.alpha[i] = c + diff
		}
	} else {
		quadCoef := 2 - 2*qi[j]
		if quadCoef <= 0 {
			quadCoef = tau
		}

		delta := (s.grad[i] - s.grad[j]) / quadCoef
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta

		if sum > c {
			if s.alpha[i] > c {
				s.alpha[i] = c
				s.alpha[j] = sum - c
			}
		} else if s.alpha[j] < 0 {
			s.alpha[j] = 0
			s.alpha[i] = sum
		}

		if sum > c {
			if s.alpha[j] > c {
				s.alpha[j] = c
				s.alpha[i] = sum - c
			}
		} else if s.alpha[i] < 0 {
			s.alpha[i] = 0
			s.alpha[j] = sum
		}
	}

	deltaI := s.alpha[i] - oldI
	deltaJ := s.alpha[j] - oldJ

	for k := range s.grad {
		s.grad[k] += qi[k]*deltaI + qj[k]*deltaJ
	}
}

// calculateRho returns the bias, averaged over free support vectors when
// there are any.
func (s *solver) calculateRho() float64 {
	ub := math.Inf(1)
	lb := math.Inf(-1)

	var sumFree float64

	free := 0

	for i := range s.alpha {
		yG := s.y[i] * s.grad[i]

		switch {
		case s.isLowerBound(i):
			if s.y[i] > 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		case s.isUpperBound(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yG)
			} else {
				lb = math.Max(lb, yG)
			}
		default:
			free++
			sumFree += yG
		}
	}

	if free > 0 {
		return sumFree / float64(free)
	}

	return (ub + lb) / 2
}

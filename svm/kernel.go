package svm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rbf is the radial basis function kernel exp(-gamma*|a-b|^2).
func rbf(a, b []float64, gamma float64) float64 {
	d := floats.Distance(a, b, 2)

	return math.Exp(-gamma * d * d)
}

// gram returns the matrix Q of the dual problem, Q[i][j] = y_i*y_j*k(x_i, x_j).
// Rows are plain slices as the solver walks them in its inner loops.
func gram(x *mat.Dense, signs []float64, gamma float64) [][]float64 {
	n := len(signs)

	q := make([][]float64, n)
	for i := range q {
		q[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		xi := x.RawRowView(i)
		q[i][i] = 1

		for j := i + 1; j < n; j++ {
			v := signs[i] * signs[j] * rbf(xi, x.RawRowView(j), gamma)
			q[i][j] = v
			q[j][i] = v
		}
	}

	return q
}

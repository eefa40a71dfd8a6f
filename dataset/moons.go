package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MakeMoons generates two interleaving half circles in two dimensions.
//
// The first n/2 samples lie on the upper arc (cos t, sin t) and get label
// 0; the remaining ones lie on the lower arc (1 - cos t, 0.5 - sin t) and
// get label 1, with t evenly spaced on [0, pi]. Samples are shuffled and
// Gaussian noise with standard deviation noise is added to every
// coordinate. The output only depends on the arguments.
func MakeMoons(n int, noise float64, seed int64) (Dataset, error) {
	if n < 2 {
		return Dataset{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidParameter, n)
	}

	if noise < 0 || math.IsNaN(noise) {
		return Dataset{}, fmt.Errorf("%w: noise must be non-negative, got %v", ErrInvalidParameter, noise)
	}

	nOuter := n / 2
	nInner := n - nOuter

	points := make([][2]float64, 0, n)
	labels := make([]int, 0, n)

	for _, t := range linspace(nOuter, 0, math.Pi) {
		points = append(points, [2]float64{math.Cos(t), math.Sin(t)})
		labels = append(labels, 0)
	}

	for _, t := range linspace(nInner, 0, math.Pi) {
		points = append(points, [2]float64{1 - math.Cos(t), 1 - math.Sin(t) - 0.5})
		labels = append(labels, 1)
	}

	rng := rand.New(rand.NewSource(seed))

	x := mat.NewDense(n, 2, nil)
	y := make([]int, n)

	for i, j := range rng.Perm(n) {
		x.SetRow(i, points[j][:])
		y[i] = labels[j]
	}

	if noise > 0 {
		for i := 0; i < n; i++ {
			for j := 0; j < 2; j++ {
				x.Set(i, j, x.At(i, j)+noise*rng.NormFloat64())
			}
		}
	}

	return Dataset{X: x, Y: y}, nil
}

// linspace returns n evenly spaced values over [lo, hi].
func linspace(n int, lo, hi float64) []float64 {
	switch n {
	case 0:
		return nil
	case 1:
		return []float64{lo}
	}

	return floats.Span(make([]float64, n), lo, hi)
}

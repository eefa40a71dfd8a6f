package hotune

import (
	"math"
)

//////
// Helper functions.
//////

// Helper function used by PI and EI to compute the cumulative distribution
// function of the standard normal distribution.
//
// Returns:
// - Probability that a standard normal random variable is less than x.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Helper function used by EI to compute the probability density function
// of the standard normal distribution.
//
// Returns:
// - Value of the standard normal PDF at x.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

// isInteger reports whether T is one of the integer types.
func isInteger[T Number]() bool {
	var one T = 1

	return one/2 == 0
}

// toFloat64s converts a slice of parameters to a new slice of float64 values.
func toFloat64s[T Number](params []T) []float64 {
	floats := make([]float64, len(params))
	for i, v := range params {
		floats[i] = float64(v)
	}

	return floats
}

// normalize maps parameters into the unit hypercube defined by their
// ranges, so every dimension weighs the same in the kernel. A range with
// Min == Max maps to 0.
func normalize[T Number](params []T, hypers []ParameterRange[T]) []float64 {
	unit := make([]float64, len(params))

	for i, v := range params {
		min := float64(hypers[i].Min)
		max := float64(hypers[i].Max)

		if max == min {
			continue
		}

		unit[i] = (float64(v) - min) / (max - min)
	}

	return unit
}

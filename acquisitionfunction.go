package hotune

import "math"

//////
// Available acquisition functions for Bayesian optimization.
// Each function helps decide which points to evaluate next by balancing
// exploration (trying new areas) and exploitation (focusing on known good areas).
// All of them follow the same convention: lower is more promising.
//////

// UCB implements the confidence bound acquisition function. As the
// objective is minimized this is the lower bound of the prediction.
//
// How it works:
// - Combines the predicted mean with the uncertainty (variance)
// - The Beta parameter controls the trade-off between exploration and exploitation
//
// Example:
//
//	params := AcquisitionParams{
//	    Beta: 2.0,  // Balance between exploration and exploitation
//	}
//	value := UCB(0.5, 0.2, params)  // Evaluate a point with mean=0.5, variance=0.2
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(math.Max(variance, 0))
}

// ProbabilityOfImprovement (PI) scores a point by the probability that it
// does NOT improve upon BestSoFar by at least Xi, so that lower is better.
//
// When to use:
// - When you want to be conservative in exploring new points
// - When you're fine with small improvements
//
// Example:
//
//	params := AcquisitionParams{
//	    BestSoFar: 0.35,  // Current best loss
//	    Xi: 0.01,         // Look for at least 0.01 improvement
//	}
//	value := ProbabilityOfImprovement(0.3, 0.02, params)
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	if variance <= 0 {
		if mean < params.BestSoFar-params.Xi {
			return 0
		}

		return 1
	}

	z := (mean - params.BestSoFar + params.Xi) / math.Sqrt(variance)

	return normalCDF(z)
}

// ExpectedImprovement (EI) returns the negated expected improvement over
// BestSoFar - Xi.
//
// How it works:
// - Combines the probability of improvement with the magnitude of improvement
// - Often provides better exploration than PI
//
// Example:
//
//	params := AcquisitionParams{
//	    BestSoFar: 0.35,
//	    Xi: 0.01,
//	}
//	value := ExpectedImprovement(0.3, 0.02, params)
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	improvement := params.BestSoFar - params.Xi - mean

	if variance <= 0 {
		return -math.Max(improvement, 0)
	}

	sigma := math.Sqrt(variance)

	z := improvement / sigma

	return -(improvement*normalCDF(z) + sigma*normalPDF(z))
}

// ThompsonSampling implements Thompson Sampling acquisition by drawing random
// samples from the posterior distribution.
//
// Example:
//
//	params := AcquisitionParams{
//	    RandomState: rand.New(rand.NewSource(42)),
//	}
//	sample := ThompsonSampling(0.9, 0.2, params)
//
// Warning:
// - Always initialize RandomState before using this function
// - Don't share RandomState between different optimization runs.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	return mean + math.Sqrt(math.Max(variance, 0))*params.RandomState.NormFloat64()
}

package hotune

import (
	"errors"
	"math/rand"

	"golang.org/x/exp/constraints"
)

// ErrInvalidConfig is returned (wrapped) by OptimizationConfig.Validate and
// OptimizeHyperparameters when the configuration or the search space can't
// be used.
var ErrInvalidConfig = errors.New("invalid optimization config")

// Number is the set of numeric types a hyperparameter can have.
type Number interface {
	constraints.Integer | constraints.Float
}

// ProgressUpdate represents the current state of the optimization process.
type ProgressUpdate struct {
	// Phase indicates whether we're in initial sampling or optimization phase
	Phase string

	// CurrentIteration is the current iteration number within the phase
	CurrentIteration int

	// TotalIterations is the total number of iterations of the phase
	TotalIterations int

	// CurrentParams holds the parameter values being tested
	CurrentParams []float64

	// CurrentBestParams holds the best parameters found so far
	CurrentBestParams []float64

	// CurrentBestValue holds the lowest objective value found so far
	CurrentBestValue float64

	// LastValue holds the objective value of the last evaluation
	LastValue float64
}

// ParameterRange defines the valid range for a hyperparameter in the optimization process.
// Each hyperparameter must have a minimum and maximum value to define its search space.
//
// Type Parameter:
//   - T: The numeric type for this parameter range (int64 or float64)
//
// Usage:
//
//	// Regularization strength of a support vector classifier
//	cRange := ParameterRange[float64]{
//	    Min: 0.1,
//	    Max: 10,
//	}
//
//	// Number of neighbours of a KNN classifier
//	kRange := ParameterRange[int]{
//	    Min: 1,
//	    Max: 25,
//	}
//
// Validation:
// - Min must be less than or equal to Max
// - The range is inclusive of both Min and Max values
type ParameterRange[T Number] struct {
	// Min defines the minimum allowed value (inclusive) for this hyperparameter.
	Min T

	// Max defines the maximum allowed value (inclusive) for this hyperparameter.
	Max T
}

// ObjectiveFunc defines the signature for functions that will be minimized.
// It receives one value per ParameterRange, in the same order, and returns
// the loss for that combination (lower is better).
//
// Returning an error aborts the optimization: OptimizeHyperparameters
// returns it wrapped, together with the partial result.
//
// Usage example:
//
//	objective := ObjectiveFunc[float64](func(params ...float64) (float64, error) {
//	    c, gamma := params[0], params[1]
//
//	    loss, err := crossValidate(c, gamma)
//	    if err != nil {
//	        return 0, fmt.Errorf("cross validation: %w", err)
//	    }
//
//	    return loss, nil
//	})
type ObjectiveFunc[T Number] func(params ...T) (float64, error)

// AcquisitionFunc defines the signature for acquisition functions used in the
// Bayesian optimization process. These functions help decide which points in the
// parameter space should be evaluated next.
//
// Parameters:
// - mean: The predicted objective value at a point (lower is better)
// - variance: The predicted variance/uncertainty at that point
// - params: Additional parameters needed by specific acquisition functions
//
// Returns:
// - float64: Acquisition value (lower values indicate more promising points)
//
// Built-in acquisition functions:
// - UCB: Upper (lower, since we minimize) Confidence Bound
// - ProbabilityOfImprovement: Probability of finding better value
// - ExpectedImprovement: Expected magnitude of improvement
// - ThompsonSampling: Random sampling from posterior
//
// Custom acquisition functions should handle zero variance, be
// deterministic for a given AcquisitionParams and return lower values for
// more promising points.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds parameters used by different acquisition functions to make decisions
// about which points to sample next in the optimization process.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off in UCB.
	// - Higher values (e.g., 3.0 or 5.0) encourage more exploration of uncertain areas
	// - Lower values (e.g., 0.1 or 0.5) focus more on exploiting known good areas
	Beta float64

	// Xi (Greek letter ξ) is the minimum improvement over BestSoFar that PI
	// and EI look for. Typical values range from 0.01 to 0.1.
	Xi float64

	// BestSoFar keeps track of the lowest objective value seen so far.
	// It is updated by the optimizer before every iteration.
	BestSoFar float64

	// RandomState is the random number generator used by Thompson Sampling.
	// Required when AcquisitionFunc is ThompsonSampling; don't share it
	// between optimization runs.
	RandomState *rand.Rand
}

// OptimizationConfig holds all configuration parameters for the Bayesian optimization process.
//
// The objective is called exactly InitialSamples + Iterations times.
//
// Usage example:
//
//	config := DefaultConfig().WithSeed(0)
//	config.InitialSamples = 10
//	config.Iterations = 40
//	config.AcquisitionFunc = ExpectedImprovement
//
// Note:
// - Create separate configs for parallel optimizations.
type OptimizationConfig struct {
	// Iterations determines how many model-guided steps to perform after
	// the initial sampling phase.
	Iterations int

	// InitialSamples determines how many random points to evaluate before
	// the Gaussian Process starts guiding the search.
	InitialSamples int

	// NumCandidates determines how many random candidates are scored by
	// the acquisition function in each iteration.
	NumCandidates int

	// Seed seeds the generator used for random samples and candidates.
	// Two runs with the same Seed and a deterministic objective produce
	// the same result.
	Seed int64

	// AcquisitionFunc determines the strategy for selecting the next point to
	// evaluate. See AcquisitionFunc type for built-in options.
	AcquisitionFunc AcquisitionFunc

	// AcqParams holds the parameters for the acquisition function.
	AcqParams AcquisitionParams

	// ProgressChan is used to send progress updates during optimization.
	// Sends never block: updates are dropped when the channel is full.
	// If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate
}

// Result is the outcome of an optimization run.
type Result[T Number] struct {
	// X is the best parameter combination found.
	X []T

	// Fun is the objective value at X.
	Fun float64

	// Xs holds every evaluated combination, in evaluation order.
	Xs [][]T

	// Ys holds the objective value of each combination in Xs.
	Ys []float64
}

// Calls returns how many times the objective was evaluated.
func (r Result[T]) Calls() int {
	return len(r.Ys)
}

package hotune

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

//////
// Exported functionalities.
//////

// DefaultConfig returns a default configuration.
//
// It seeds the random generators with the current time; call WithSeed for
// reproducible runs.
func DefaultConfig() OptimizationConfig {
	return OptimizationConfig{
		Iterations:      40,
		InitialSamples:  10,
		NumCandidates:   1000,
		Seed:            time.Now().UnixNano(),
		AcquisitionFunc: ExpectedImprovement,
		AcqParams: AcquisitionParams{
			BestSoFar:   math.MaxFloat64,
			Beta:        1.96,
			RandomState: rand.New(rand.NewSource(time.Now().UnixNano())),
			Xi:          0.01,
		},
		ProgressChan: nil, // Default to no progress updates.
	}
}

// WithSeed returns a copy of the config whose sampling and Thompson
// Sampling generators are both seeded with seed.
func (c OptimizationConfig) WithSeed(seed int64) OptimizationConfig {
	c.Seed = seed
	c.AcqParams.RandomState = rand.New(rand.NewSource(seed))

	return c
}

// Validate reports whether the config can drive an optimization run.
func (c OptimizationConfig) Validate() error {
	switch {
	case c.InitialSamples < 0:
		return fmt.Errorf("%w: InitialSamples must not be negative, got %d", ErrInvalidConfig, c.InitialSamples)
	case c.Iterations < 0:
		return fmt.Errorf("%w: Iterations must not be negative, got %d", ErrInvalidConfig, c.Iterations)
	case c.InitialSamples+c.Iterations == 0:
		return fmt.Errorf("%w: at least one objective call is required", ErrInvalidConfig)
	case c.Iterations > 0 && c.NumCandidates < 1:
		return fmt.Errorf("%w: NumCandidates must be positive, got %d", ErrInvalidConfig, c.NumCandidates)
	case c.Iterations > 0 && c.AcquisitionFunc == nil:
		return fmt.Errorf("%w: AcquisitionFunc is required", ErrInvalidConfig)
	}

	return nil
}

// OptimizeHyperparameters uses Bayesian optimization to find the
// hyperparameters that minimize the objective function. It combines Gaussian
// Process regression with acquisition functions to efficiently search the
// parameter space.
//
// Type Parameter:
//   - T: The numeric type for parameters (int64 or float64)
//
// Parameters:
// - config: OptimizationConfig controlling the optimization process
// - objective: The function to minimize
// - hypers: One or more ParameterRange defining the search space
//
// Usage example:
//
//	ranges := []ParameterRange[float64]{
//	    {Min: 0.1, Max: 10},    // C
//	    {Min: 0.001, Max: 10},  // gamma
//	}
//
//	result, err := OptimizeHyperparameters(
//	    DefaultConfig().WithSeed(0),
//	    func(params ...float64) (float64, error) {
//	        return crossValidatedLoss(params[0], params[1])
//	    },
//	    ranges...,
//	)
//
// How it works:
// 1. Takes InitialSamples random samples to build initial model
// 2. For each iteration:
//   - Fits the Gaussian Process to every observation so far
//   - Generates NumCandidates random candidate points
//   - Uses AcquisitionFunc to select most promising point
//   - Evaluates the selected point
//
// 3. Returns the best parameters found together with the evaluation history
//
// If the objective fails, the run stops and the error is returned along
// with the result collected up to that point.
func OptimizeHyperparameters[T Number](
	config OptimizationConfig,
	objective ObjectiveFunc[T],
	hypers ...ParameterRange[T],
) (Result[T], error) {
	var result Result[T]

	if err := config.Validate(); err != nil {
		return result, err
	}

	if objective == nil {
		return result, fmt.Errorf("%w: objective is required", ErrInvalidConfig)
	}

	if err := validateRanges(hypers); err != nil {
		return result, err
	}

	if config.AcqParams.RandomState == nil {
		config.AcqParams.RandomState = rand.New(rand.NewSource(config.Seed))
	}

	// Seeded generator for random samples and candidates, so a run is
	// reproducible for a given config.Seed.
	rng := rand.New(rand.NewSource(config.Seed))
	var rngMu sync.Mutex

	// safeRandomParams generates a set of random parameters within the
	// specified ranges. This is used both for initial sampling and
	// generating candidates during optimization.
	safeRandomParams := func() []T {
		rngMu.Lock()
		defer rngMu.Unlock()

		params := make([]T, len(hypers))
		for i, hyper := range hypers {
			if isInteger[T]() {
				// For integer types, generate random integer in range
				min := int64(hyper.Min)
				max := int64(hyper.Max)
				params[i] = T(min + rng.Int63n(max-min+1))

				continue
			}

			// For float types, generate random float in range
			min := float64(hyper.Min)
			max := float64(hyper.Max)
			params[i] = T(min + rng.Float64()*(max-min))
		}

		return params
	}

	// Gaussian Process used to predict the objective at untested points.
	gp := newGaussianProcess()

	// bestParams tracks the parameter combination that produced the best result.
	bestParams := make([]T, len(hypers))

	// bestValue tracks the best objective value seen so far (lower is better).
	bestValue := math.MaxFloat64

	// bestMu protects access to bestParams and bestValue.
	var bestMu sync.Mutex

	// Helper function to send progress updates.
	sendProgress := func(phase string, iteration, total int, currentParams []T, value float64) {
		if config.ProgressChan == nil {
			return
		}

		bestMu.Lock()

		update := ProgressUpdate{
			Phase:             phase,
			CurrentIteration:  iteration,
			TotalIterations:   total,
			CurrentParams:     toFloat64s(currentParams),
			CurrentBestParams: toFloat64s(bestParams),
			CurrentBestValue:  bestValue,
			LastValue:         value,
		}

		bestMu.Unlock()

		select {
		case config.ProgressChan <- update:
		default:
			// Skip update if channel is full.
		}
	}

	// evaluate calls the objective, records the observation in the model
	// and the history, and keeps track of the best point.
	evaluate := func(params []T) error {
		value, err := objective(params...)
		if err != nil {
			return fmt.Errorf("objective at %v: %w", params, err)
		}

		gp.Update(normalize(params, hypers), value)

		kept := make([]T, len(params))
		copy(kept, params)

		result.Xs = append(result.Xs, kept)
		result.Ys = append(result.Ys, value)

		bestMu.Lock()
		defer bestMu.Unlock()

		if value < bestValue {
			bestValue = value
			copy(bestParams, params)
		}

		return nil
	}

	// finish fills the best point of the result.
	finish := func() Result[T] {
		bestMu.Lock()
		defer bestMu.Unlock()

		if len(result.Ys) > 0 {
			result.X = append([]T(nil), bestParams...)
			result.Fun = bestValue
		}

		return result
	}

	// Phase 1: Initial random sampling.
	//
	// Build initial model by sampling random points in the parameter space.
	for i := 0; i < config.InitialSamples; i++ {
		params := safeRandomParams()

		if err := evaluate(params); err != nil {
			return finish(), err
		}

		sendProgress("InitialSampling", i+1, config.InitialSamples, params, result.Ys[len(result.Ys)-1])
	}

	// Phase 2: Bayesian optimization loop.
	//
	// Iteratively select and evaluate new points based on model predictions.
	for i := 0; i < config.Iterations; i++ {
		var nextParams []T
		bestAcquisition := math.Inf(1)

		// Update acquisition function with current best value
		bestMu.Lock()
		config.AcqParams.BestSoFar = bestValue
		bestMu.Unlock()

		// Refit the model once per iteration, every candidate shares it.
		gp.Fit()

		for j := 0; j < config.NumCandidates; j++ {
			candidateParams := safeRandomParams()

			mean, variance := gp.Predict(normalize(candidateParams, hypers))

			acquisition := config.AcquisitionFunc(mean, variance, config.AcqParams)

			// NaN never wins; the first candidate is kept as a fallback.
			if nextParams == nil || acquisition < bestAcquisition {
				bestAcquisition = acquisition
				nextParams = candidateParams
			}
		}

		if err := evaluate(nextParams); err != nil {
			return finish(), err
		}

		sendProgress("Optimization", i+1, config.Iterations, nextParams, result.Ys[len(result.Ys)-1])
	}

	return finish(), nil
}

//////
// Helpers.
//////

// validateRanges checks the search space is non-empty and well formed.
func validateRanges[T Number](hypers []ParameterRange[T]) error {
	if len(hypers) == 0 {
		return fmt.Errorf("%w: at least one parameter range is required", ErrInvalidConfig)
	}

	for i, hyper := range hypers {
		if hyper.Min > hyper.Max {
			return fmt.Errorf("%w: range %d has Min %v > Max %v", ErrInvalidConfig, i, hyper.Min, hyper.Max)
		}
	}

	return nil
}

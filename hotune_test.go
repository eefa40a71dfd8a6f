package hotune

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// Sample function to be minimized, optimum at (3, -1).
func testFuncQuadratic(params ...float64) (float64, error) {
	x, y := params[0], params[1]

	return (x-3)*(x-3) + (y+1)*(y+1), nil
}

func TestOptimizeQuadratic(t *testing.T) {
	config := DefaultConfig().WithSeed(7)

	// The following isn't necessary, this is just exist for testing purposes.
	config.InitialSamples = 5
	config.Iterations = 25

	ranges := []ParameterRange[float64]{
		{Min: -5, Max: 5},
		{Min: -5, Max: 5},
	}

	result, err := OptimizeHyperparameters(config, testFuncQuadratic, ranges...)
	require.NoError(t, err)

	assert.Len(t, result.X, 2)
	assert.Equal(t, 30, result.Calls())
	assert.Len(t, result.Xs, 30)

	// Fun is the minimum of the history and belongs to X.
	min := math.Inf(1)
	for _, y := range result.Ys {
		min = math.Min(min, y)
	}

	assert.Equal(t, min, result.Fun)

	fun, _ := testFuncQuadratic(result.X...)
	assert.Equal(t, fun, result.Fun)

	// Every evaluated point stays in the search space.
	for _, x := range result.Xs {
		for i, v := range x {
			assert.GreaterOrEqual(t, v, ranges[i].Min)
			assert.LessOrEqual(t, v, ranges[i].Max)
		}
	}

	assert.Less(t, result.Fun, 1.0)
}

func TestOptimizeDeterministic(t *testing.T) {
	run := func() Result[float64] {
		config := DefaultConfig().WithSeed(0)
		config.InitialSamples = 4
		config.Iterations = 6
		config.NumCandidates = 200

		result, err := OptimizeHyperparameters(config, testFuncQuadratic,
			ParameterRange[float64]{Min: -5, Max: 5},
			ParameterRange[float64]{Min: -5, Max: 5},
		)
		require.NoError(t, err)

		return result
	}

	assert.Equal(t, run(), run())
}

func TestOptimizeInteger(t *testing.T) {
	config := DefaultConfig().WithSeed(3)
	config.InitialSamples = 3
	config.Iterations = 5
	config.AcquisitionFunc = UCB

	var calls int

	result, err := OptimizeHyperparameters(
		config,
		func(params ...int) (float64, error) {
			calls++

			return math.Abs(float64(params[0] - 42)), nil
		},
		ParameterRange[int]{Min: 1, Max: 100},
	)
	require.NoError(t, err)

	assert.Equal(t, 8, calls)
	assert.Len(t, result.X, 1)
	assert.GreaterOrEqual(t, result.X[0], 1)
	assert.LessOrEqual(t, result.X[0], 100)
}

func TestOptimizeChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	config := DefaultConfig().WithSeed(1)

	// The following isn't necessary, this is just exist for testing purposes.
	config.InitialSamples = 3
	config.Iterations = 5
	config.AcquisitionFunc = ThompsonSampling

	// Create a bidirectional channel for progress updates
	progressChan := make(chan ProgressUpdate, config.InitialSamples+config.Iterations)

	// Assign the channel to config (will be automatically converted to send-only)
	config.ProgressChan = progressChan

	var counter int32

	done := make(chan struct{})

	// Start a goroutine to handle progress updates.
	go func() {
		defer close(done)

		for update := range progressChan {
			atomic.AddInt32(&counter, 1)

			assert.Len(t, update.CurrentParams, 2)
			assert.LessOrEqual(t, update.CurrentBestValue, update.LastValue)
		}
	}()

	bestParams, err := OptimizeHyperparameters(config, testFuncQuadratic,
		ParameterRange[float64]{Min: 1024.0, Max: 1048576.0},
		ParameterRange[float64]{Min: 1.0, Max: 32.0},
	)

	close(progressChan)
	<-done

	require.NoError(t, err)

	// Ensure events where emitted.
	assert.Equal(t, int32(8), atomic.LoadInt32(&counter))

	// Ensure optimal parameters are returned.
	assert.Len(t, bestParams.X, 2)
}

func TestOptimizeObjectiveError(t *testing.T) {
	errBoom := errors.New("boom")

	config := DefaultConfig().WithSeed(0)
	config.InitialSamples = 3
	config.Iterations = 3

	var calls int

	result, err := OptimizeHyperparameters(
		config,
		func(params ...float64) (float64, error) {
			calls++
			if calls == 4 {
				return 0, errBoom
			}

			return params[0], nil
		},
		ParameterRange[float64]{Min: 0, Max: 1},
	)

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 3, result.Calls())
	assert.Len(t, result.X, 1)
}

func TestOptimizeInvalid(t *testing.T) {
	objective := func(params ...float64) (float64, error) { return 0, nil }

	tests := []struct {
		name   string
		modify func(*OptimizationConfig)
		ranges []ParameterRange[float64]
	}{
		{
			name:   "negative initial samples",
			modify: func(c *OptimizationConfig) { c.InitialSamples = -1 },
			ranges: []ParameterRange[float64]{{Min: 0, Max: 1}},
		},
		{
			name:   "no calls",
			modify: func(c *OptimizationConfig) { c.InitialSamples, c.Iterations = 0, 0 },
			ranges: []ParameterRange[float64]{{Min: 0, Max: 1}},
		},
		{
			name:   "no candidates",
			modify: func(c *OptimizationConfig) { c.NumCandidates = 0 },
			ranges: []ParameterRange[float64]{{Min: 0, Max: 1}},
		},
		{
			name:   "no acquisition function",
			modify: func(c *OptimizationConfig) { c.AcquisitionFunc = nil },
			ranges: []ParameterRange[float64]{{Min: 0, Max: 1}},
		},
		{
			name:   "no ranges",
			modify: func(c *OptimizationConfig) {},
		},
		{
			name:   "inverted range",
			modify: func(c *OptimizationConfig) {},
			ranges: []ParameterRange[float64]{{Min: 2, Max: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig().WithSeed(0)
			tt.modify(&config)

			_, err := OptimizeHyperparameters(config, objective, tt.ranges...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

package hotune

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//////
// Const, vars, types.
//////

var (
	// lengthScaleGrid holds the kernel widths tried when the model tunes
	// itself. Inputs live in the unit hypercube.
	lengthScaleGrid = []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 1.5, 2}

	// noiseGrid holds the observation noise levels (relative to the
	// standardised outputs) tried when the model tunes itself.
	noiseGrid = []float64{1e-6, 1e-4, 1e-2, 1e-1}
)

// gaussianProcess implements a thread-safe Gaussian Process regression
// model with multidimensional inputs. It is used to predict the objective
// of untested hyperparameter combinations based on previously observed
// results.
//
// Observations are standardised before fitting, and the posterior is
// computed exactly through a Cholesky factorization of the kernel matrix.
// Unless SetSigma was called, Fit picks the kernel width and noise level
// maximizing the log marginal likelihood over a small grid.
//
// Thread safety:
// - All fields are protected by the RWMutex
// - Uses RLock for read operations (Predict, RBFKernel)
// - Uses Lock for write operations (Update, Fit, SetSigma)
type gaussianProcess struct {
	// mu protects access to all fields
	mu sync.RWMutex

	// X stores the input points (hyperparameter combinations)
	// Length of inner slices must be consistent
	X [][]float64

	// Y stores the observed objective values at each point in X
	// Must have same length as X
	Y []float64

	// sigma is the kernel width parameter
	// Larger values = smoother interpolation
	// Smaller values = more local influence
	sigma float64

	// noise is added to the kernel diagonal.
	noise float64

	// autoTune enables the grid search over sigma and noise in Fit.
	autoTune bool

	// stale is set by Update and cleared by Fit.
	stale bool

	// Fitted state.
	yMean float64
	yStd  float64
	chol  *mat.Cholesky
	alpha *mat.VecDense
}

//////
// Methods.
//////

// RBFKernel implements the Radial Basis Function (also known as Gaussian) kernel.
// This kernel measures the similarity between two points in the input space,
// with the similarity decreasing exponentially with distance.
//
// Mathematical formula:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * sigma^2))
//
// Important notes:
// - Panics if input vectors have different lengths
// - Returns 1.0 for identical points
// - Returns values close to 0.0 for distant points
func (gp *gaussianProcess) RBFKernel(x1, x2 []float64) float64 {
	gp.mu.RLock()
	sigma := gp.sigma
	gp.mu.RUnlock()

	return rbf(x1, x2, sigma)
}

// Fit standardises the observations and factorizes the kernel matrix.
// It is a no-op on an empty model.
func (gp *gaussianProcess) Fit() {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.stale = false
	gp.chol = nil
	gp.alpha = nil

	n := len(gp.X)
	if n == 0 {
		return
	}

	gp.yMean, gp.yStd = stat.PopMeanStdDev(gp.Y, nil)
	if gp.yStd == 0 || math.IsNaN(gp.yStd) {
		gp.yStd = 1
	}

	y := mat.NewVecDense(n, nil)
	for i, v := range gp.Y {
		y.SetVec(i, (v-gp.yMean)/gp.yStd)
	}

	sigmas, noises := []float64{gp.sigma}, []float64{gp.noise}
	if gp.autoTune {
		sigmas, noises = lengthScaleGrid, noiseGrid
	}

	bestLML := math.Inf(-1)

	for _, sigma := range sigmas {
		for _, noise := range noises {
			chol := &mat.Cholesky{}
			if ok := chol.Factorize(gp.covariance(sigma, noise)); !ok {
				continue
			}

			alpha := mat.NewVecDense(n, nil)
			if err := chol.SolveVecTo(alpha, y); err != nil {
				continue
			}

			// log p(y|X) = -y'K^-1y/2 - log|K|/2 - n log(2pi)/2
			lml := -0.5*mat.Dot(y, alpha) - 0.5*chol.LogDet() - float64(n)/2*math.Log(2*math.Pi)
			if math.IsNaN(lml) || lml <= bestLML {
				continue
			}

			bestLML = lml
			gp.sigma, gp.noise = sigma, noise
			gp.chol, gp.alpha = chol, alpha
		}
	}
}

// Predict estimates the expected objective value and uncertainty at a given
// point based on previously observed data points. The model is refitted
// first if observations were added since the last Fit.
//
// Returns:
// - mean: Expected objective value at the input point
// - variance: Uncertainty in the prediction (higher = less certain)
//
// Returns (0, 1) if no observations exist.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	gp.mu.RLock()
	stale := gp.stale
	gp.mu.RUnlock()

	if stale {
		gp.Fit()
	}

	gp.mu.RLock()
	defer gp.mu.RUnlock()

	// Handle case with no observations
	if len(gp.X) == 0 {
		return 0, 1
	}

	// Every factorization failed, fall back to the prior.
	if gp.alpha == nil {
		return gp.yMean, gp.yStd * gp.yStd
	}

	// Kernel values between x and all observed points
	k := mat.NewVecDense(len(gp.X), nil)
	for i := range gp.X {
		k.SetVec(i, rbf(x, gp.X[i], gp.sigma))
	}

	mean = mat.Dot(k, gp.alpha)

	v := mat.NewVecDense(len(gp.X), nil)
	if err := gp.chol.SolveVecTo(v, k); err != nil {
		return mean*gp.yStd + gp.yMean, gp.yStd * gp.yStd
	}

	// k(x, x) is 1 for the RBF kernel.
	variance = math.Max(1-mat.Dot(k, v), 0)

	return mean*gp.yStd + gp.yMean, variance * gp.yStd * gp.yStd
}

// Update adds a new observation point to the Gaussian Process model.
//
// Important notes:
// - Creates a deep copy of input slice x to prevent external modifications
// - Marks the model stale; the next Predict or Fit refits it
func (gp *gaussianProcess) Update(x []float64, y float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	// Create deep copy of input to prevent external modifications
	newX := make([]float64, len(x))
	copy(newX, x)

	// Append new observation to our training data
	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)
	gp.stale = true
}

// SetSigma fixes the kernel width parameter (sigma) of the Gaussian
// Process and disables the automatic width and noise selection.
//
// No validation of sigma value (caller's responsibility).
func (gp *gaussianProcess) SetSigma(sigma float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.sigma = sigma
	gp.autoTune = false
	gp.stale = true
}

// GetSigma returns the current kernel width parameter (sigma) of the
// Gaussian Process. After a tuned Fit this is the selected width.
func (gp *gaussianProcess) GetSigma() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.sigma
}

// Len returns the number of observations.
func (gp *gaussianProcess) Len() int {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return len(gp.X)
}

// covariance builds the kernel matrix of the observations with noise added
// to the diagonal. Callers hold the lock.
func (gp *gaussianProcess) covariance(sigma, noise float64) *mat.SymDense {
	n := len(gp.X)
	k := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		k.SetSym(i, i, 1+noise)

		for j := i + 1; j < n; j++ {
			k.SetSym(i, j, rbf(gp.X[i], gp.X[j], sigma))
		}
	}

	return k
}

// rbf is the lock-free kernel shared by RBFKernel, Fit and Predict.
func rbf(x1, x2 []float64, sigma float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	// Calculate squared Euclidean distance
	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * sigma * sigma))
}

//////
// Factory.
//////

// newGaussianProcess creates and initializes a new Gaussian Process model
// that tunes its kernel width and noise level on every Fit.
//
// Best practices:
// - Create new instance for each optimization task
// - Feed inputs normalised to the unit hypercube
func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{
		sigma:    1.0, // Default kernel width
		noise:    1e-6,
		autoTune: true,
	}
}

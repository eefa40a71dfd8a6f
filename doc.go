// Package hotune provides hyperparameter optimization using Bayesian
// optimization with Gaussian Processes, together with the pieces needed to
// tune a support vector classifier with it.
//
// # Packages
//
//   - hotune (this package): sequential model-based minimization of a
//     black-box objective over a bounded search space
//   - dataset: synthetic two moons data, stratified train/test split and
//     standard scaling
//   - svm: C-SVC with an RBF kernel and Platt scaled probabilities
//   - validation: stratified k-fold, cross validated scores, log loss and
//     binary confusion matrices
//   - pipeline: the tuning run wiring all of the above
//   - cmd/hotune: command line entry point
//
// # Features
//
//   - Bayesian Optimization: Uses Gaussian Process regression to efficiently explore
//     parameter spaces
//   - Self-tuning model: the kernel width and noise level are picked by
//     maximizing the log marginal likelihood before every iteration
//   - Multiple Acquisition Functions: Upper Confidence Bound (UCB),
//     Probability of Improvement (PI), Expected Improvement (EI), and
//     Thompson Sampling
//   - Generic Implementation: Works with both integer and floating-point parameters
//   - Reproducible: a seed drives every random choice
//   - Progress Monitoring: Real-time updates on optimization progress via channels
//
// # Acquisition Functions
//
// 1. Upper Confidence Bound (UCB):
//
//   - Controlled by Beta parameter (higher = more exploration)
//
//     config := DefaultConfig()
//     config.AcquisitionFunc = UCB
//     config.AcqParams.Beta = 2.0
//
// 2. Probability of Improvement (PI):
//
//   - Conservative exploration strategy
//
//     config := DefaultConfig()
//     config.AcquisitionFunc = ProbabilityOfImprovement
//     config.AcqParams.Xi = 0.01  // Minimum improvement threshold
//
// 3. Expected Improvement (EI):
//
//   - Default choice, balances improvement probability and magnitude
//
//     config := DefaultConfig()  // Uses EI by default
//     config.AcqParams.Xi = 0.01
//
// 4. Thompson Sampling:
//
//   - No parameter tuning required
//
//     config := DefaultConfig().WithSeed(42)
//     config.AcquisitionFunc = ThompsonSampling
//
// # Configuration
//
// The OptimizationConfig struct allows customization of the optimization process:
//
//	type OptimizationConfig struct {
//	    Iterations      int                   // Number of model-guided steps
//	    InitialSamples  int                   // Initial random samples
//	    NumCandidates   int                   // Candidates per iteration
//	    Seed            int64                 // Random seed
//	    AcquisitionFunc AcquisitionFunc       // Strategy for point selection
//	    AcqParams       AcquisitionParams     // Parameters for acquisition function
//	    ProgressChan    chan<- ProgressUpdate // For progress monitoring
//	}
//
// The objective is evaluated InitialSamples + Iterations times.
package hotune

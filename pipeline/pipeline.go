package pipeline

import (
	"fmt"
	"io"

	"github.com/thalesfsp/hotune"
	"github.com/thalesfsp/hotune/dataset"
	"github.com/thalesfsp/hotune/svm"
	"github.com/thalesfsp/hotune/validation"
	"go.uber.org/zap"
)

// Report holds the outcome of a run.
type Report struct {
	// C and Gamma are the best hyperparameters found.
	C     float64
	Gamma float64

	// Loss is the cross validated log loss at (C, Gamma).
	Loss float64

	// Calls is the number of objective evaluations.
	Calls int

	// Train and Test are the confusion matrices of the refitted classifier.
	Train validation.ConfusionMatrix
	Test  validation.ConfusionMatrix
}

// Write prints the chosen hyperparameters and the training and testing
// sensitivity/specificity, one line each.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "final values = ", r.C, r.Gamma); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "training sens/spec = ", r.Train.Sensitivity(), r.Train.Specificity()); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, "testing sens/spec = ", r.Test.Sensitivity(), r.Test.Specificity())

	return err
}

// Run executes the whole experiment described by cfg.
func Run(cfg Config, logger *zap.Logger) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	train, test, err := Prepare(cfg)
	if err != nil {
		return Report{}, err
	}

	logger.Info("data prepared",
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
	)

	result, err := Tune(cfg, train, logger)
	if err != nil {
		return Report{}, err
	}

	c, gamma := result.X[0], result.X[1]

	logger.Info("optimization finished",
		zap.Float64("C", c),
		zap.Float64("gamma", gamma),
		zap.Float64("log_loss", result.Fun),
		zap.Int("calls", result.Calls()),
	)

	report, err := Evaluate(train, test, c, gamma)
	if err != nil {
		return Report{}, err
	}

	report.Loss = result.Fun
	report.Calls = result.Calls()

	return report, nil
}

// Prepare generates the moons data, splits it with stratification and
// standardizes both partitions with statistics of the training one.
func Prepare(cfg Config) (train, test dataset.Dataset, err error) {
	data, err := dataset.MakeMoons(cfg.Samples, cfg.Noise, cfg.RandomState)
	if err != nil {
		return train, test, fmt.Errorf("generate data: %w", err)
	}

	train, test, err = dataset.TrainTestSplit(data, cfg.TestSize, cfg.RandomState)
	if err != nil {
		return train, test, fmt.Errorf("split data: %w", err)
	}

	scaler := dataset.NewStandardScaler()
	if err := scaler.Fit(train.X); err != nil {
		return train, test, fmt.Errorf("fit scaler: %w", err)
	}

	if train.X, err = scaler.Transform(train.X); err != nil {
		return train, test, fmt.Errorf("scale train: %w", err)
	}

	if test.X, err = scaler.Transform(test.X); err != nil {
		return train, test, fmt.Errorf("scale test: %w", err)
	}

	return train, test, nil
}

// Tune searches (C, gamma) minimizing the cross validated log loss on train.
func Tune(cfg Config, train dataset.Dataset, logger *zap.Logger) (hotune.Result[float64], error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	params := svm.DefaultParams()
	params.Probability = true
	params.Seed = cfg.RandomState

	svc := svm.New(params)
	svc.SetLogger(logger.Named("svm"))

	objective := NewObjective(train, cfg.Folds, svc, NewIncrementer(cfg.RandomState), logger.Named("objective"))

	config := hotune.DefaultConfig().WithSeed(cfg.RandomState)
	config.InitialSamples = min(cfg.InitialPoints, cfg.Calls)
	config.Iterations = cfg.Calls - config.InitialSamples
	config.NumCandidates = cfg.Candidates

	progress := make(chan hotune.ProgressUpdate, cfg.Calls)
	config.ProgressChan = progress

	done := make(chan struct{})

	go func() {
		defer close(done)

		for update := range progress {
			logger.Debug("optimizer progress",
				zap.String("phase", update.Phase),
				zap.Int("iteration", update.CurrentIteration),
				zap.Int("total", update.TotalIterations),
				zap.Float64s("params", update.CurrentParams),
				zap.Float64("value", update.LastValue),
				zap.Float64("best", update.CurrentBestValue),
			)
		}
	}()

	result, err := hotune.OptimizeHyperparameters(
		config,
		objective.Evaluate,
		hotune.ParameterRange[float64]{Min: cfg.CRange.Min, Max: cfg.CRange.Max},
		hotune.ParameterRange[float64]{Min: cfg.GammaRange.Min, Max: cfg.GammaRange.Max},
	)

	close(progress)
	<-done

	if err != nil {
		return result, fmt.Errorf("optimize hyperparameters: %w", err)
	}

	return result, nil
}

// Evaluate refits the classifier with (c, gamma) on train and tallies its
// predictions on both partitions.
func Evaluate(train, test dataset.Dataset, c, gamma float64) (Report, error) {
	params := svm.DefaultParams()
	params.C = c
	params.Gamma = gamma

	svc := svm.New(params)
	if err := svc.Fit(train.X, train.Y); err != nil {
		return Report{}, fmt.Errorf("fit final model: %w", err)
	}

	report := Report{C: c, Gamma: gamma}

	for _, part := range []struct {
		data dataset.Dataset
		dst  *validation.ConfusionMatrix
	}{
		{train, &report.Train},
		{test, &report.Test},
	} {
		pred, err := svc.Predict(part.data.X)
		if err != nil {
			return Report{}, fmt.Errorf("predict: %w", err)
		}

		m, err := validation.NewConfusionMatrix(part.data.Y, pred)
		if err != nil {
			return Report{}, err
		}

		*part.dst = m
	}

	return report, nil
}

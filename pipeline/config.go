// Package pipeline runs the tuning experiment end to end: it generates and
// scales the data, searches C and gamma of an RBF support vector classifier
// by Bayesian optimization of the cross validated log loss, then reports
// sensitivity and specificity of the tuned classifier.
package pipeline

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned (wrapped) by Config.Validate.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Range bounds a hyperparameter search interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Config holds the experiment constants.
type Config struct {
	// Data
	Samples  int     `yaml:"samples"`
	Noise    float64 `yaml:"noise"`
	TestSize float64 `yaml:"test_size"`

	// Cross validation
	Folds int `yaml:"folds"`

	// Optimizer
	Calls         int   `yaml:"calls"`
	InitialPoints int   `yaml:"initial_points"`
	Candidates    int   `yaml:"candidates"`
	CRange        Range `yaml:"c_range"`
	GammaRange    Range `yaml:"gamma_range"`

	// RandomState seeds the data, the split, the optimizer and the first
	// cross validation shuffle.
	RandomState int64 `yaml:"random_state"`
}

// DefaultConfig returns the constants of the reference experiment.
func DefaultConfig() Config {
	return Config{
		Samples:       1000,
		Noise:         0.5,
		TestSize:      0.2,
		Folds:         5,
		Calls:         50,
		InitialPoints: 10,
		Candidates:    1000,
		CRange:        Range{Min: 0.1, Max: 10},
		GammaRange:    Range{Min: 0.001, Max: 10},
		RandomState:   0,
	}
}

// LoadConfig overlays the YAML file at path on DefaultConfig. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// YAML renders the config in the format LoadConfig reads.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the constants describe a runnable experiment. Finer
// checks (class sizes, fold counts) are left to the steps themselves.
func (c Config) Validate() error {
	switch {
	case c.Samples < 2:
		return fmt.Errorf("%w: samples must be at least 2, got %d", ErrInvalidConfig, c.Samples)
	case c.Noise < 0:
		return fmt.Errorf("%w: noise must not be negative, got %v", ErrInvalidConfig, c.Noise)
	case !(c.TestSize > 0 && c.TestSize < 1):
		return fmt.Errorf("%w: test size must be in (0, 1), got %v", ErrInvalidConfig, c.TestSize)
	case c.Folds < 2:
		return fmt.Errorf("%w: folds must be at least 2, got %d", ErrInvalidConfig, c.Folds)
	case c.Calls < 1:
		return fmt.Errorf("%w: calls must be positive, got %d", ErrInvalidConfig, c.Calls)
	case c.InitialPoints < 0:
		return fmt.Errorf("%w: initial points must not be negative, got %d", ErrInvalidConfig, c.InitialPoints)
	case c.Candidates < 1:
		return fmt.Errorf("%w: candidates must be positive, got %d", ErrInvalidConfig, c.Candidates)
	}

	for _, r := range []struct {
		name string
		Range
	}{
		{"c_range", c.CRange},
		{"gamma_range", c.GammaRange},
	} {
		if !(r.Min > 0) || r.Min > r.Max {
			return fmt.Errorf("%w: %s must satisfy 0 < min <= max, got [%v, %v]", ErrInvalidConfig, r.name, r.Min, r.Max)
		}
	}

	return nil
}

// Command hotune tunes C and gamma of an RBF support vector classifier on
// the two moons data by Bayesian optimization of the cross validated log
// loss, then prints the sensitivity and specificity of the tuned model.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thalesfsp/hotune/pipeline"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Overrides, applied when set
	calls int
	seed  int64

	// Logger
	logger *zap.Logger
)

// rootCmd runs the experiment
var rootCmd = &cobra.Command{
	Use:   "hotune",
	Short: "Tune an RBF SVC on the two moons data",
	Long: `hotune generates the two moons data, splits and scales it, then searches
C and gamma of an RBF support vector classifier minimizing the stratified
k-fold cross validated log loss with Bayesian optimization.

The tuned classifier is refitted on the training data and its sensitivity
and specificity on both partitions are printed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep an injected logger (tests).
		if logger != nil {
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error

		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTune,
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE:  printConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: built-in constants)")
	rootCmd.PersistentFlags().IntVar(&calls, "calls", 0, "Number of objective evaluations (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random state (overrides config)")

	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("calls") {
		cfg.Calls = calls
	}

	if cmd.Flags().Changed("seed") {
		cfg.RandomState = seed
	}

	return cfg, cfg.Validate()
}

// runTune runs the experiment and writes the report to stdout.
func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Info("Starting tuning run",
		zap.Int("samples", cfg.Samples),
		zap.Int("calls", cfg.Calls),
		zap.Int64("random_state", cfg.RandomState),
	)

	report, err := pipeline.Run(cfg, logger)
	if err != nil {
		return fmt.Errorf("tuning run failed: %w", err)
	}

	return report.Write(cmd.OutOrStdout())
}

// printConfig writes the effective configuration.
func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := cfg.YAML()
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)

	return err
}

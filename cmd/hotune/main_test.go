package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thalesfsp/hotune/pipeline"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	logger = zap.NewNop()
	configPath, calls, seed, verbose = "", 0, 0, false

	// Flags keep their Changed state between executions.
	for _, name := range []string{"calls", "seed", "config", "verbose"} {
		rootCmd.PersistentFlags().Lookup(name).Changed = false
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigCmd(t *testing.T) {
	out, err := execute(t, "config", "--calls", "7", "--seed", "4")
	require.NoError(t, err)

	var cfg pipeline.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))

	want := pipeline.DefaultConfig()
	want.Calls = 7
	want.RandomState = 4
	assert.Equal(t, want, cfg)
}

func TestConfigCmdFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotune.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 300\nfolds: 3\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)

	var cfg pipeline.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 300, cfg.Samples)
	assert.Equal(t, 3, cfg.Folds)
}

func TestRunCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotune.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 200\ncalls: 4\ninitial_points: 2\ncandidates: 50\n"), 0o600))

	out, err := execute(t, "--config", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "final values = "))
	assert.True(t, strings.HasPrefix(lines[1], "training sens/spec = "))
	assert.True(t, strings.HasPrefix(lines[2], "testing sens/spec = "))
}

func TestRunCmdInvalid(t *testing.T) {
	_, err := execute(t, "--calls", "0")
	assert.ErrorIs(t, err, pipeline.ErrInvalidConfig)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunTuneDirect(t *testing.T) {
	logger = zap.NewNop()
	configPath = filepath.Join(t.TempDir(), "hotune.yaml")
	defer func() { configPath = "" }()

	require.NoError(t, os.WriteFile(configPath, []byte("samples: 120\ncalls: 3\ninitial_points: 3\n"), 0o600))

	cmd := &cobra.Command{}
	cmd.Flags().Int("calls", 0, "")
	cmd.Flags().Int64("seed", 0, "")

	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runTune(cmd, nil))
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}

package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thalesfsp/hotune/svm"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// smallConfig keeps the experiment fast enough for unit tests.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Samples = 200
	cfg.Calls = 6
	cfg.InitialPoints = 3
	cfg.Candidates = 100

	return cfg
}

func TestIncrementer(t *testing.T) {
	inc := NewIncrementer(0)
	assert.Equal(t, int64(0), inc.Value())

	seen := map[int64]bool{}

	for want := int64(1); want <= 10; want++ {
		got := inc.Increment()
		assert.Equal(t, want, got)
		assert.False(t, seen[got], "seed %d reused", got)

		seen[got] = true
	}

	assert.Equal(t, int64(10), inc.Value())
}

func TestObjective(t *testing.T) {
	train, _, err := Prepare(smallConfig())
	require.NoError(t, err)

	params := svm.DefaultParams()
	params.Probability = true

	seeds := NewIncrementer(0)
	objective := NewObjective(train, 5, svm.New(params), seeds, nil)

	first, err := objective.Evaluate(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seeds.Value())

	// Log loss is positive and finite.
	assert.Greater(t, first, 0.0)
	assert.Less(t, first, 1.0)

	_, err = objective.Evaluate(5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seeds.Value())

	_, err = objective.Evaluate(1)
	assert.Error(t, err)

	_, err = objective.Evaluate(-1, 1)
	assert.ErrorIs(t, err, svm.ErrInvalidParameter)
}

func TestPrepareScalesWithTrainStatistics(t *testing.T) {
	train, test, err := Prepare(smallConfig())
	require.NoError(t, err)

	assert.Equal(t, 160, train.Len())
	assert.Equal(t, 40, test.Len())

	// The training columns are standardized exactly; the test ones only
	// approximately since they were scaled with the training statistics.
	rows, cols := train.X.Dims()
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += train.X.At(i, j)
		}

		assert.InDelta(t, 0, sum/float64(rows), 1e-9)
	}
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := smallConfig()

	report, err := Run(cfg, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, cfg.Calls, report.Calls)
	assert.GreaterOrEqual(t, report.C, cfg.CRange.Min)
	assert.LessOrEqual(t, report.C, cfg.CRange.Max)
	assert.GreaterOrEqual(t, report.Gamma, cfg.GammaRange.Min)
	assert.LessOrEqual(t, report.Gamma, cfg.GammaRange.Max)

	assert.Equal(t, 160, report.Train.Total())
	assert.Equal(t, 40, report.Test.Total())

	for _, v := range []float64{
		report.Train.Sensitivity(), report.Train.Specificity(),
		report.Test.Sensitivity(), report.Test.Specificity(),
	} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRunDeterministic(t *testing.T) {
	output := func() string {
		report, err := Run(smallConfig(), nil)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, report.Write(&buf))

		return buf.String()
	}

	assert.Equal(t, output(), output())
}

func TestRunInvalid(t *testing.T) {
	cfg := smallConfig()
	cfg.Folds = 1

	_, err := Run(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReferenceExperiment(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full 50 call experiment")
	}

	report, err := Run(DefaultConfig(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	prefixes := []string{"final values = ", "training sens/spec = ", "testing sens/spec = "}

	for i, line := range lines {
		require.True(t, strings.HasPrefix(line, prefixes[i]), line)

		fields := strings.Fields(strings.TrimPrefix(line, prefixes[i]))
		require.Len(t, fields, 2)

		for _, f := range fields {
			_, err := strconv.ParseFloat(f, 64)
			assert.NoError(t, err, f)
		}
	}
}

func TestReportWrite(t *testing.T) {
	report := Report{C: 1.5, Gamma: 0.25}
	report.Train[0][0], report.Train[1][1] = 3, 1
	report.Train[1][0] = 1
	report.Test[0][0], report.Test[1][1] = 2, 2

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))

	assert.Equal(t,
		"final values =  1.5 0.25\n"+
			"training sens/spec =  50 100\n"+
			"testing sens/spec =  100 100\n",
		buf.String(),
	)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "hotune.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calls: 20\nrandom_state: 3\ngamma_range:\n  min: 0.01\n  max: 1\n"), 0o600))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)

	want := DefaultConfig()
	want.Calls = 20
	want.RandomState = 3
	want.GammaRange = Range{Min: 0.01, Max: 1}
	assert.Equal(t, want, cfg)

	// Round trip through the rendered YAML.
	data, err := cfg.YAML()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("folds: 1\n"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	require.NoError(t, os.WriteFile(path, []byte("calls: [\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"samples", func(c *Config) { c.Samples = 1 }},
		{"noise", func(c *Config) { c.Noise = -1 }},
		{"test size", func(c *Config) { c.TestSize = 1 }},
		{"calls", func(c *Config) { c.Calls = 0 }},
		{"initial points", func(c *Config) { c.InitialPoints = -1 }},
		{"candidates", func(c *Config) { c.Candidates = 0 }},
		{"c range", func(c *Config) { c.CRange = Range{Min: 0, Max: 1} }},
		{"gamma range", func(c *Config) { c.GammaRange = Range{Min: 2, Max: 1} }},
	}

	assert.NoError(t, DefaultConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

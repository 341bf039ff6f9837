package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Simulation: SimulationConfig{
			Iterations: 10000,
			ChunkSize:  2000,
			Debounce:   180 * time.Millisecond,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 10000, cfg.Simulation.Iterations)
	assert.Equal(t, 2000, cfg.Simulation.ChunkSize)
	assert.Equal(t, 180*time.Millisecond, cfg.Simulation.Debounce)
	assert.Equal(t, uint64(0), cfg.Simulation.Seed)
	assert.Empty(t, cfg.Profiles.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
simulation:
  iterations: 500
  chunk_size: 100
  debounce: 50ms
  seed: 42
profiles:
  path: content/profiles/default.yaml
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output, "unset keys keep defaults")
	assert.Equal(t, 500, cfg.Simulation.Iterations)
	assert.Equal(t, 100, cfg.Simulation.ChunkSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.Debounce)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, "content/profiles/default.yaml", cfg.Profiles.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GRIMDARK_SIMULATION_ITERATIONS", "1234")
	t.Setenv("GRIMDARK_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Simulation.Iterations)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  iterations: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation.iterations")
}

func TestLoadFromViper_Defaults(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Simulation.Iterations)
}

func TestValidateLogging(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}

	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Output = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateSimulation(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.ChunkSize = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulation.Debounce = -time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Simulation.Debounce = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Simulation.Iterations = 0
	cfg.Simulation.ChunkSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "simulation.iterations")
	assert.Contains(t, err.Error(), "simulation.chunk_size")
}

func TestPropertyIterationsValidity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-1000, 100000).Draw(t, "iterations")
		cfg := validConfig()
		cfg.Simulation.Iterations = n
		err := cfg.Validate()
		if n >= 1 {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err)
		}
	})
}

// Package config provides Viper-based configuration loading for the simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is the zap sink logs are written to. Results go to stdout, so
	// this defaults to "stderr".
	Output string `mapstructure:"output"`
}

// SimulationConfig holds Monte-Carlo driver settings.
type SimulationConfig struct {
	// Iterations is the number of attack sequences per run.
	Iterations int `mapstructure:"iterations"`
	// ChunkSize is the number of iterations between cancellation checks.
	ChunkSize int `mapstructure:"chunk_size"`
	// Debounce is how long a changed profile must stay unchanged before a run starts.
	Debounce time.Duration `mapstructure:"debounce"`
	// Seed selects a reproducible source when non-zero; zero uses crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// ProfilesConfig locates attacker/defender profile files.
type ProfilesConfig struct {
	// Path is the default profile file; empty means the built-in default profile.
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Profiles   ProfilesConfig   `mapstructure:"profiles"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Iterations < 1 {
		errs = append(errs, fmt.Sprintf("simulation.iterations must be >= 1, got %d", s.Iterations))
	}
	if s.ChunkSize < 1 {
		errs = append(errs, fmt.Sprintf("simulation.chunk_size must be >= 1, got %d", s.ChunkSize))
	}
	if s.Debounce < 0 {
		errs = append(errs, "simulation.debounce must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with GRIMDARK_ prefix
	v.SetEnvPrefix("GRIMDARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("simulation.iterations", 10000)
	v.SetDefault("simulation.chunk_size", 2000)
	v.SetDefault("simulation.debounce", "180ms")
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("profiles.path", "")
}

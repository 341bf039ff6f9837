// Package main provides the grimdark command: a Monte-Carlo combat
// calculator for attacker and defender profiles.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/config"
	"github.com/cory-johannsen/grimdark/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and GRIMDARK_ env when empty)")
	profilePath := flag.String("profile", "", "path to a profile YAML file (overrides profiles.path)")
	iterations := flag.Int("iterations", 0, "iterations per run (overrides simulation.iterations)")
	adjust := flag.String("adjust", "", "comma-separated field steps, e.g. attacker.attacks+,defender.save-")
	trace := flag.Bool("trace", false, "resolve a single attack sequence and log every die")
	watchMode := flag.Bool("watch", false, "re-run whenever the profile file changes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *profilePath != "" {
		cfg.Profiles.Path = *profilePath
	}
	if *iterations > 0 {
		cfg.Simulation.Iterations = *iterations
	}

	newLogger := observability.NewLogger
	if *trace {
		newLogger = observability.NewTraceLogger
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Debug("grimdark starting",
		zap.String("profile", cfg.Profiles.Path),
		zap.Int("iterations", cfg.Simulation.Iterations),
		zap.Uint64("seed", cfg.Simulation.Seed),
	)

	r := newRunner(cfg, logger, os.Stdout)
	ctx := context.Background()

	switch {
	case *trace:
		err = r.trace(*adjust)
	case *watchMode:
		err = r.watch(ctx, *adjust)
	default:
		err = r.once(ctx, *adjust)
	}
	if err != nil {
		logger.Fatal("grimdark failed", zap.Error(err))
	}
	logger.Debug("grimdark finished", zap.Duration("elapsed", time.Since(start)))
}

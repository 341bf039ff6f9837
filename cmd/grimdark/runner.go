package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/config"
	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/dice"
	"github.com/cory-johannsen/grimdark/internal/game/profile"
	"github.com/cory-johannsen/grimdark/internal/lifecycle"
	"github.com/cory-johannsen/grimdark/internal/sim"
	"github.com/cory-johannsen/grimdark/internal/watch"
)

// runner executes one of the command's modes against a loaded configuration.
type runner struct {
	cfg    config.Config
	logger *zap.Logger
	src    dice.Source

	mu  sync.Mutex
	out io.Writer
}

func newRunner(cfg config.Config, logger *zap.Logger, out io.Writer) *runner {
	return &runner{cfg: cfg, logger: logger, src: newSource(cfg.Simulation.Seed), out: out}
}

// newSource returns a reproducible source for a non-zero seed.
func newSource(seed uint64) dice.Source {
	if seed != 0 {
		return dice.NewSeededSource(seed)
	}
	return dice.NewCryptoSource()
}

// loadProfile reads the configured profile, or the default one when no path
// is set, and applies the adjustment steps.
func (r *runner) loadProfile(adjust string) (profile.Profile, error) {
	p := profile.Default()
	if path := r.cfg.Profiles.Path; path != "" {
		loaded, err := profile.Load(path)
		if err != nil {
			return profile.Profile{}, err
		}
		p = loaded
	}
	if err := p.ApplyAdjustments(adjust); err != nil {
		return profile.Profile{}, fmt.Errorf("applying adjustments: %w", err)
	}
	return p, nil
}

func (r *runner) simulator() *sim.Simulator {
	return sim.New(r.src, r.logger, sim.Options{ChunkSize: r.cfg.Simulation.ChunkSize})
}

// once runs a single simulation and prints the result. Capacity errors are
// printed as the result; other build errors are returned.
func (r *runner) once(ctx context.Context, adjust string) error {
	p, err := r.loadProfile(adjust)
	if err != nil {
		return err
	}
	a, d, err := p.Build()
	if err != nil {
		if msg, ok := sim.CapacityMessage(err); ok {
			r.println(msg)
			return nil
		}
		return fmt.Errorf("building profile: %w", err)
	}

	stats, err := r.simulator().Run(ctx, a, d, r.cfg.Simulation.Iterations, nil)
	if err != nil {
		return err
	}
	r.printStats(stats)
	return nil
}

// trace resolves one attack sequence with every die draw logged.
func (r *runner) trace(adjust string) error {
	p, err := r.loadProfile(adjust)
	if err != nil {
		return err
	}
	a, d, err := p.Build()
	if err != nil {
		if msg, ok := sim.CapacityMessage(err); ok {
			r.println(msg)
			return nil
		}
		return fmt.Errorf("building profile: %w", err)
	}
	wounds := combat.TraceSequence(a, d, dice.NewLoggedSource(r.src, r.logger), r.logger)
	r.println(fmt.Sprintf("wounds - %dW", wounds))
	return nil
}

// watch runs the profile through the debounced scheduler now and again each
// time the file changes, until interrupted.
func (r *runner) watch(ctx context.Context, adjust string) error {
	path := r.cfg.Profiles.Path
	if path == "" {
		return errors.New("watch mode requires a profile path")
	}

	sched := sim.NewScheduler(r.simulator(), r.logger, sim.SchedulerConfig{
		Iterations: r.cfg.Simulation.Iterations,
		Debounce:   r.cfg.Simulation.Debounce,
		Publish:    r.publish,
	})
	reload := func() { r.submit(sched, adjust) }

	w, err := watch.New(path, r.logger, reload)
	if err != nil {
		sched.Stop()
		return err
	}
	reload()

	stopped := make(chan struct{})
	lc := lifecycle.New(r.logger)
	lc.Add("watcher", w)
	lc.Add("scheduler", &lifecycle.FuncService{
		StartFn: func() error {
			<-stopped
			return nil
		},
		StopFn: func() {
			sched.Stop()
			close(stopped)
		},
	})
	return lc.Run(ctx)
}

// submit reloads the profile and hands it to the scheduler. Profiles that do
// not build are reported in place of a result.
func (r *runner) submit(sched *sim.Scheduler, adjust string) {
	p, err := r.loadProfile(adjust)
	if err != nil {
		sched.Reject(err)
		return
	}
	a, d, err := p.Build()
	if err != nil {
		sched.Reject(err)
		return
	}
	sched.Submit(a, d)
}

func (r *runner) publish(res sim.Result) {
	if res.Err != nil {
		if msg, ok := sim.CapacityMessage(res.Err); ok {
			r.println(msg)
			return
		}
		r.println("error - " + res.Err.Error())
		return
	}
	r.logger.Debug("publishing result", zap.String("run_id", res.RunID), zap.Uint64("generation", res.Generation))
	r.printStats(res.Stats)
}

func (r *runner) printStats(stats sim.Statistics) {
	for _, line := range stats.Lines() {
		r.println(line)
	}
	for _, line := range stats.SampleLines() {
		r.println(line)
	}
}

func (r *runner) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, line)
}

package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
)

// DefaultDebounce is how long a new configuration must stay unchanged before
// a run starts.
const DefaultDebounce = 180 * time.Millisecond

// Result is what a Scheduler publishes for the newest configuration.
// Exactly one of Stats and Err is meaningful.
type Result struct {
	Generation uint64
	RunID      string
	Stats      Statistics
	Err        error
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Iterations int
	// Debounce of zero starts runs immediately; negative selects DefaultDebounce.
	Debounce time.Duration
	// Publish receives results. It is called with the scheduler's lock held
	// and must not call back into the Scheduler.
	Publish func(Result)
	// Progress, when non-nil, receives the generation and completed fraction.
	Progress func(generation uint64, fraction float64)
}

// Scheduler debounces configuration changes and publishes the statistics of
// the newest configuration only.
type Scheduler struct {
	sim      *Simulator
	logger   *zap.Logger
	cfg      SchedulerConfig
	debounce *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu sync.Mutex
}

// NewScheduler creates a Scheduler driving sim.
//
// Precondition: sim, logger and cfg.Publish must be non-nil.
func NewScheduler(sim *Simulator, logger *zap.Logger, cfg SchedulerConfig) *Scheduler {
	if cfg.Publish == nil {
		panic("sim: NewScheduler called with nil Publish")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sim:      sim,
		logger:   logger,
		cfg:      cfg,
		debounce: NewDebouncer(cfg.Debounce),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit supersedes any pending or in-flight run and schedules a run of the
// new configuration once the debounce delay elapses. It returns the
// generation assigned to the configuration.
func (s *Scheduler) Submit(a combat.Attacker, d combat.Defender) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.sim.Supersede()
	// Armed under the lock: callbacks are registered in generation order.
	s.debounce.Trigger(func() { s.start(gen, a, d) })
	return gen
}

// Reject supersedes any pending or in-flight run and publishes err as the
// result for the newest configuration. Callers use it for profiles that fail
// to build.
func (s *Scheduler) Reject(err error) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.sim.Supersede()
	s.debounce.Stop()
	s.cfg.Publish(Result{Generation: gen, Err: err})
	return gen
}

// Stop cancels every run and waits for in-flight runs to return.
//
// Postcondition: no run goroutine is alive and none will be started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.debounce.Stop()
	s.mu.Unlock()
	s.wg.Wait()
}

// start launches the run for gen unless the scheduler has been stopped.
func (s *Scheduler) start(gen uint64, a combat.Attacker, d combat.Defender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(gen, a, d)
	}()
}

func (s *Scheduler) run(gen uint64, a combat.Attacker, d combat.Defender) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.Uint64("generation", gen))
	logger.Debug("run starting", zap.Int("iterations", s.cfg.Iterations))

	var progress func(float64)
	if s.cfg.Progress != nil {
		progress = func(f float64) { s.cfg.Progress(gen, f) }
	}
	stats, err := s.sim.RunGeneration(s.ctx, gen, a, d, s.cfg.Iterations, progress)
	if errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
		logger.Debug("run discarded", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim.Generation() != gen {
		logger.Debug("run finished after supersession; result dropped")
		return
	}
	s.cfg.Publish(Result{Generation: gen, RunID: runID, Stats: stats, Err: err})
}

// Package sim runs the attack sequence many times and summarizes the results.
//
// Runs are chunked and cooperative: between chunks the simulator yields, and
// before each chunk it checks that its generation is still the newest. A
// superseded run stops without producing statistics.
package sim

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/game/dice"
)

const (
	// DefaultIterations is the iteration count when the caller gives none.
	DefaultIterations = 10_000
	// DefaultChunkSize is the number of iterations run between yields.
	DefaultChunkSize = 2000
)

// ErrSuperseded is returned by a run whose generation has been replaced.
var ErrSuperseded = errors.New("sim: run superseded by a newer generation")

// State is the lifecycle state of a single run.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Options tunes a Simulator.
type Options struct {
	// ChunkSize is the number of iterations between generation checks.
	ChunkSize int
	// Yield is called between chunks. Defaults to runtime.Gosched.
	Yield func()
}

// Simulator drives repeated attack sequences.
//
// Safe for concurrent use; the generation counter is shared by every run.
type Simulator struct {
	src        dice.Source
	logger     *zap.Logger
	chunkSize  int
	yield      func()
	generation atomic.Uint64
}

// New creates a Simulator drawing from src.
//
// Precondition: src and logger must be non-nil.
func New(src dice.Source, logger *zap.Logger, opts Options) *Simulator {
	if src == nil {
		panic("sim: New called with nil source")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Yield == nil {
		opts.Yield = runtime.Gosched
	}
	return &Simulator{src: src, logger: logger, chunkSize: opts.ChunkSize, yield: opts.Yield}
}

// Generation returns the newest generation.
func (s *Simulator) Generation() uint64 { return s.generation.Load() }

// Supersede starts a new generation, invalidating every in-flight run, and
// returns it.
func (s *Simulator) Supersede() uint64 { return s.generation.Add(1) }

// Run supersedes any in-flight run and simulates iterations attack sequences.
// progress, when non-nil, receives the completed fraction in [0, 1) after
// each chunk that leaves work outstanding.
//
// Postcondition: returns Statistics, ErrSuperseded, or ctx.Err().
func (s *Simulator) Run(ctx context.Context, a combat.Attacker, d combat.Defender, iterations int, progress func(float64)) (Statistics, error) {
	return s.RunGeneration(ctx, s.Supersede(), a, d, iterations, progress)
}

// RunGeneration simulates as generation gen without advancing the counter.
// It returns ErrSuperseded as soon as a chunk boundary finds a newer generation.
func (s *Simulator) RunGeneration(ctx context.Context, gen uint64, a combat.Attacker, d combat.Defender, iterations int, progress func(float64)) (Statistics, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	start := time.Now()
	r := newRun(gen, iterations)

	for {
		switch r.state {
		case StateIdle:
			r.state = StateRunning
			if progress != nil {
				progress(0)
			}

		case StateRunning:
			if current := s.generation.Load(); current != r.generation {
				r.state = StateCancelled
				s.logger.Debug("run superseded",
					zap.Uint64("generation", r.generation),
					zap.Uint64("current", current),
					zap.Int("completed", r.cursor),
				)
				return Statistics{}, ErrSuperseded
			}
			if err := ctx.Err(); err != nil {
				r.state = StateCancelled
				return Statistics{}, err
			}

			r.step(s.chunkSize, func() int { return combat.Sequence(a, d, s.src) })

			if r.state == StateRunning {
				if progress != nil {
					progress(float64(r.cursor) / float64(len(r.results)))
				}
				s.yield()
			}

		case StateDone:
			stats := Summarize(r.results)
			s.logger.Info("run complete",
				zap.Uint64("generation", r.generation),
				zap.Int("iterations", iterations),
				zap.Float64("mean", stats.Mean),
				zap.Duration("elapsed", time.Since(start)),
			)
			return stats, nil

		default:
			panic("sim: run in unexpected state " + r.state.String())
		}
	}
}

// run is the state of one generation's computation.
type run struct {
	generation uint64
	state      State
	cursor     int
	results    []int
}

// newRun returns an Idle run for gen with room for iterations results.
func newRun(gen uint64, iterations int) *run {
	return &run{generation: gen, state: StateIdle, results: make([]int, iterations)}
}

// step runs up to n iterations and moves to StateDone when all are complete.
func (r *run) step(n int, sequence func() int) {
	end := min(r.cursor+n, len(r.results))
	for ; r.cursor < end; r.cursor++ {
		r.results[r.cursor] = sequence()
	}
	if r.cursor == len(r.results) {
		r.state = StateDone
	}
}

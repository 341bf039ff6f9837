package sim_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/grimdark/internal/game/combat"
	"github.com/cory-johannsen/grimdark/internal/sim"
)

type collector struct {
	mu      sync.Mutex
	results []sim.Result
	ch      chan sim.Result
}

func newCollector() *collector { return &collector{ch: make(chan sim.Result, 16)} }

func (c *collector) publish(r sim.Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.ch <- r
}

func (c *collector) all() []sim.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sim.Result(nil), c.results...)
}

func (c *collector) next(t *testing.T) sim.Result {
	t.Helper()
	select {
	case r := <-c.ch:
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for a result")
		return sim.Result{}
	}
}

func TestScheduler_OnlyNewestConfigurationPublishes(t *testing.T) {
	s := sim.New(slowSrc{}, zap.NewNop(), sim.Options{ChunkSize: 10})
	col := newCollector()
	sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
		Iterations: 100,
		Debounce:   0,
		Publish:    col.publish,
	})
	defer sched.Stop()

	genA := sched.Submit(fiveAttacks(t), defenderWithSave(7))
	time.Sleep(2 * time.Millisecond)
	genB := sched.Submit(fiveAttacks(t), defenderWithSave(4))
	require.Greater(t, genB, genA)

	r := col.next(t)
	assert.Equal(t, genB, r.Generation)
	require.NoError(t, r.Err)
	assert.Zero(t, r.Stats.Mean, "configuration B saves every wound")
	assert.NotEmpty(t, r.RunID)

	time.Sleep(50 * time.Millisecond)
	for _, res := range col.all() {
		assert.Equal(t, genB, res.Generation, "a superseded run must never publish")
	}
}

func TestScheduler_DebounceCoalescesBursts(t *testing.T) {
	var runs atomic.Int32
	s := sim.New(fixedSrc{6}, zap.NewNop(), sim.Options{})
	col := newCollector()
	sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
		Iterations: 10,
		Debounce:   30 * time.Millisecond,
		Publish:    col.publish,
		Progress: func(_ uint64, f float64) {
			if f == 0 {
				runs.Add(1)
			}
		},
	})
	defer sched.Stop()

	var last uint64
	for i := 0; i < 5; i++ {
		last = sched.Submit(fiveAttacks(t), defenderWithSave(7))
		time.Sleep(5 * time.Millisecond)
	}

	r := col.next(t)
	assert.Equal(t, last, r.Generation)
	assert.InDelta(t, 5.0, r.Stats.Mean, 1e-9)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "a burst of submissions must start one run")
	assert.Len(t, col.all(), 1)
}

func TestScheduler_RejectPublishesErrorAndCancelsPending(t *testing.T) {
	s := sim.New(fixedSrc{6}, zap.NewNop(), sim.Options{})
	col := newCollector()
	sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
		Iterations: 10,
		Debounce:   20 * time.Millisecond,
		Publish:    col.publish,
	})
	defer sched.Stop()

	sched.Submit(fiveAttacks(t), defenderWithSave(7))
	gen := sched.Reject(combat.ErrTooManyAttacks)

	r := col.next(t)
	assert.Equal(t, gen, r.Generation)
	assert.True(t, errors.Is(r.Err, combat.ErrTooManyAttacks))

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, col.all(), 1, "the pending run must not publish after Reject")
}

func TestScheduler_StopPreventsPendingRun(t *testing.T) {
	s := sim.New(fixedSrc{6}, zap.NewNop(), sim.Options{})
	col := newCollector()
	sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
		Iterations: 10,
		Debounce:   20 * time.Millisecond,
		Publish:    col.publish,
	})

	sched.Submit(fiveAttacks(t), defenderWithSave(7))
	sched.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, col.all())
}

func TestNewScheduler_NilPublishPanics(t *testing.T) {
	s := sim.New(fixedSrc{6}, zap.NewNop(), sim.Options{})
	assert.Panics(t, func() {
		sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{})
	})
}

func TestDebouncer_FiresOnceAfterQuiet(t *testing.T) {
	var count atomic.Int32
	d := sim.NewDebouncer(20 * time.Millisecond)
	for i := 0; i < 3; i++ {
		d.Trigger(func() { count.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var count atomic.Int32
	d := sim.NewDebouncer(20 * time.Millisecond)
	d.Trigger(func() { count.Add(1) })
	d.Stop()
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

func TestScheduler_ConcurrentSubmitsPublishNewest(t *testing.T) {
	s := sim.New(fixedSrc{6}, zap.NewNop(), sim.Options{})
	col := newCollector()
	sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
		Iterations: 10,
		Debounce:   20 * time.Millisecond,
		Publish:    col.publish,
	})
	defer sched.Stop()

	a, d := fiveAttacks(t), defenderWithSave(7)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Submit(a, d)
		}()
	}
	wg.Wait()

	r := col.next(t)
	assert.Equal(t, s.Generation(), r.Generation, "the newest generation must be the one that runs")
}

func TestScheduler_NoRunOutlivesStop(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := sim.New(slowSrc{}, zap.NewNop(), sim.Options{ChunkSize: 1})
		var running atomic.Int32
		sched := sim.NewScheduler(s, zap.NewNop(), sim.SchedulerConfig{
			Iterations: 50,
			Debounce:   0,
			Publish:    func(sim.Result) {},
			Progress: func(_ uint64, f float64) {
				if f == 0 {
					running.Add(1)
				}
			},
		})
		sched.Submit(fiveAttacks(t), defenderWithSave(7))
		time.Sleep(time.Duration(i%3) * time.Millisecond)
		sched.Stop()

		started := running.Load()
		time.Sleep(10 * time.Millisecond)
		assert.Equal(t, started, running.Load(), "no run may start after Stop returns")
	}
}

package sim

import (
	"sync"
	"time"
)

// Debouncer delays a callback until no new trigger has arrived for the
// configured delay. It is safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates an idle Debouncer.
//
// Precondition: delay >= 0.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger cancels any pending callback and schedules onFire after the delay.
// onFire is called in a separate goroutine.
//
// Precondition: onFire must not be nil.
// Postcondition: only the most recently triggered callback can fire.
func (d *Debouncer) Trigger(onFire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.seq == seq
		d.mu.Unlock()
		if current {
			onFire()
		}
	})
}

// Stop prevents any pending callback from firing. Safe to call multiple times.
//
// Postcondition: no callback scheduled before Stop will be called after Stop returns,
// unless it had already started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}

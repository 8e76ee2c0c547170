// Package debounce provides timer based helpers that coalesce bursts of calls.
//
// Callbacks run on timer goroutines. Callers that need a single thread of
// execution (a bubbletea program, for instance) should forward into it.
package debounce

import (
	"sync"
	"time"
)

// FrameInterval is one frame at 60fps, the usual scroll debounce
const FrameInterval = 16 * time.Millisecond

// Option configures a Debouncer
type Option func(*Debouncer)

// WithImmediate runs the first call of a burst right away and
// suppresses the trailing call
func WithImmediate() Option {
	return func(d *Debouncer) {
		d.immediate = true
	}
}

// Debouncer delays a call until delay has passed without another Trigger
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	immediate bool
	timer     *time.Timer
	pending   func()
	seq       uint64
}

// New creates a debouncer
func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{delay: delay}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger schedules fn, replacing any call still waiting
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	d.pending = fn
	callNow := d.immediate && d.timer == nil

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
	d.mu.Unlock()

	if callNow {
		fn()
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.pending
	if d.immediate {
		fn = nil
	}
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Pending reports whether a call is waiting for its timer
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the waiting call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.seq++
}

// Flush runs the waiting call now, if there is one
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

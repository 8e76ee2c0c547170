package debounce

import (
	"sync"
	"time"
)

// UpdateDebouncer debounces a fallible update but never holds it back
// longer than maxWait. Failures go to onError.
type UpdateDebouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	maxWait  time.Duration
	update   func() error
	onError  func(message string, err error)
	timer    *time.Timer
	maxTimer *time.Timer
	seq      uint64
}

// NewUpdateDebouncer creates an update debouncer
func NewUpdateDebouncer(delay, maxWait time.Duration, update func() error, onError func(string, error)) *UpdateDebouncer {
	return &UpdateDebouncer{
		delay:   delay,
		maxWait: maxWait,
		update:  update,
		onError: onError,
	}
}

// Trigger schedules an update
func (u *UpdateDebouncer) Trigger() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.timer != nil {
		u.timer.Stop()
	}
	seq := u.seq
	if u.maxTimer == nil {
		u.maxTimer = time.AfterFunc(u.maxWait, func() { u.fire(seq) })
	}
	u.timer = time.AfterFunc(u.delay, func() { u.fire(seq) })
}

func (u *UpdateDebouncer) fire(seq uint64) {
	u.mu.Lock()
	if seq != u.seq {
		u.mu.Unlock()
		return
	}
	u.stopTimers()
	u.mu.Unlock()

	u.execute()
}

// stopTimers must be called with mu held
func (u *UpdateDebouncer) stopTimers() {
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	if u.maxTimer != nil {
		u.maxTimer.Stop()
		u.maxTimer = nil
	}
	u.seq++
}

func (u *UpdateDebouncer) execute() {
	if err := u.update(); err != nil && u.onError != nil {
		u.onError("data update failed", err)
	}
}

// Cancel drops a scheduled update
func (u *UpdateDebouncer) Cancel() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopTimers()
}

// Flush runs a scheduled update now
func (u *UpdateDebouncer) Flush() {
	u.mu.Lock()
	scheduled := u.timer != nil || u.maxTimer != nil
	u.stopTimers()
	u.mu.Unlock()

	if scheduled {
		u.execute()
	}
}

package debounce

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttler runs at most one call per interval. A call that arrives while
// throttled is kept and runs once the interval allows it; later suppressed
// calls replace it.
type Throttler struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	timer   *time.Timer
	res     *rate.Reservation
	pending func()
}

// NewThrottler creates a throttler allowing one call per interval
func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Call runs fn now if the interval allows it, otherwise schedules it
func (t *Throttler) Call(fn func()) {
	t.mu.Lock()
	if t.timer == nil && t.limiter.Allow() {
		t.mu.Unlock()
		fn()
		return
	}

	t.pending = fn
	if t.timer == nil {
		t.res = t.limiter.Reserve()
		t.timer = time.AfterFunc(t.res.Delay(), t.fire)
	}
	t.mu.Unlock()
}

func (t *Throttler) fire() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.res = nil
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops a scheduled trailing call and returns its reserved slot
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.res != nil {
		t.res.Cancel()
		t.res = nil
	}
	t.pending = nil
}

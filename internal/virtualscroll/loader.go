package virtualscroll

import (
	"context"
	"sync"
)

// LoaderState is the state of the incremental loader
type LoaderState int

const (
	StateIdle LoaderState = iota
	StateLoading
	StateExhausted
)

func (s LoaderState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// DefaultThreshold is the fraction of the scrollable extent that triggers a load
const DefaultThreshold = 0.8

// FetchFunc returns the next page of items. An empty page means there is no more data.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// ErrorSink receives failures that the loader absorbs
type ErrorSink func(message string, err error)

// Loader guards a fetch-more callback so that at most one fetch is in flight.
//
// Transitions: Idle -> Loading via Begin, Loading -> Idle or Exhausted via Finish.
// Exhausted is left only through Reset.
type Loader struct {
	mu         sync.Mutex
	state      LoaderState
	generation uint64
}

// NewLoader creates an idle loader
func NewLoader() *Loader {
	return &Loader{state: StateIdle}
}

// State returns the current state
func (l *Loader) State() LoaderState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsLoading reports whether a fetch is in flight
func (l *Loader) IsLoading() bool {
	return l.State() == StateLoading
}

// HasMore reports whether further loads may be attempted
func (l *Loader) HasMore() bool {
	return l.State() != StateExhausted
}

// Begin moves Idle to Loading and returns a ticket for Finish.
// It returns false while a fetch is in flight or after exhaustion.
func (l *Loader) Begin() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return 0, false
	}
	l.state = StateLoading
	return l.generation, true
}

// Finish completes the fetch identified by ticket.
// It returns false if the loader was reset while the fetch was in flight;
// the caller must then discard the result.
func (l *Loader) Finish(ticket uint64, count int, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.generation || l.state != StateLoading {
		return false
	}
	switch {
	case err != nil:
		l.state = StateIdle
	case count == 0:
		l.state = StateExhausted
	default:
		l.state = StateIdle
	}
	return true
}

// Stale reports whether ticket belongs to a fetch that can no longer finish
func (l *Loader) Stale(ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ticket != l.generation || l.state != StateLoading
}

// Reset returns the loader to Idle and invalidates any in-flight ticket
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	l.state = StateIdle
}

// ShouldLoad reports whether the trailing edge of the container has crossed
// threshold of the scrollable extent
func ShouldLoad(scrollTop, clientHeight, scrollHeight, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return scrollTop+clientHeight >= scrollHeight*threshold
}

package virtualscroll

import "sync"

// Handle identifies a rendered element on the host
type Handle string

// Entry is one intersection report from the host
type Entry struct {
	Handle       Handle
	Intersecting bool
}

// Intersector is the host's intersection-tracking capability.
// Hosts without one pass nil and observation becomes a no-op.
type Intersector interface {
	Observe(h Handle)
	Unobserve(h Handle)
	Disconnect()
}

// VisibleHook is called for items that became visible. It must not block.
type VisibleHook[T any] func(index int, item T)

// Observer maps observed handles to item indices and forwards
// intersecting entries to a visible hook
type Observer[T any] struct {
	mu        sync.Mutex
	target    Intersector
	indices   map[Handle]int
	lookup    func(index int) (T, bool)
	hook      VisibleHook[T]
	connected bool
}

// NewObserver creates an observer bridge. target may be nil.
func NewObserver[T any](target Intersector, lookup func(int) (T, bool), hook VisibleHook[T]) *Observer[T] {
	return &Observer[T]{
		target:    target,
		indices:   make(map[Handle]int),
		lookup:    lookup,
		hook:      hook,
		connected: target != nil,
	}
}

// Enabled reports whether the host supports observation and the bridge is connected
func (o *Observer[T]) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.connected
}

// Observe registers h with index as its metadata
func (o *Observer[T]) Observe(h Handle, index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.connected || h == "" {
		return
	}
	_, seen := o.indices[h]
	o.indices[h] = index
	if !seen {
		o.target.Observe(h)
	}
}

// Unobserve deregisters h. Unknown handles are ignored.
func (o *Observer[T]) Unobserve(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.connected {
		return
	}
	if _, ok := o.indices[h]; !ok {
		return
	}
	delete(o.indices, h)
	o.target.Unobserve(h)
}

// Observed returns the number of registered handles
func (o *Observer[T]) Observed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.indices)
}

// Deliver processes an intersection callback from the host
func (o *Observer[T]) Deliver(entries []Entry) {
	o.mu.Lock()
	if !o.connected || o.hook == nil {
		o.mu.Unlock()
		return
	}
	var hits []int
	for _, e := range entries {
		if !e.Intersecting {
			continue
		}
		if index, ok := o.indices[e.Handle]; ok {
			hits = append(hits, index)
		}
	}
	hook, lookup := o.hook, o.lookup
	o.mu.Unlock()

	// lookup may take the owning list's lock, so it runs unlocked here
	for _, index := range hits {
		if item, ok := lookup(index); ok {
			hook(index, item)
		}
	}
}

// Disconnect releases every observation. Safe to call more than once.
func (o *Observer[T]) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.connected {
		return
	}
	o.connected = false
	clear(o.indices)
	o.target.Disconnect()
}

package ui

import (
	"sync"

	"assetgrip/internal/virtualscroll"
)

// rowIntersector tracks which rendered rows are on screen. The terminal has
// no intersection API, so the model reports the rows it actually drew after
// every render and the intersector turns them into entries.
type rowIntersector struct {
	mu       sync.Mutex
	observed map[virtualscroll.Handle]bool
	onScreen map[virtualscroll.Handle]bool
}

func newRowIntersector() *rowIntersector {
	return &rowIntersector{
		observed: make(map[virtualscroll.Handle]bool),
		onScreen: make(map[virtualscroll.Handle]bool),
	}
}

func (r *rowIntersector) Observe(h virtualscroll.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed[h] = true
}

func (r *rowIntersector) Unobserve(h virtualscroll.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observed, h)
	delete(r.onScreen, h)
}

func (r *rowIntersector) Disconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.observed)
	clear(r.onScreen)
}

// Update records the rows drawn this frame and returns entries for the
// observed rows whose visibility changed
func (r *rowIntersector) Update(drawn []virtualscroll.Handle) []virtualscroll.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := make(map[virtualscroll.Handle]bool, len(drawn))
	var entries []virtualscroll.Entry
	for _, h := range drawn {
		if !r.observed[h] {
			continue
		}
		now[h] = true
		if !r.onScreen[h] {
			entries = append(entries, virtualscroll.Entry{Handle: h, Intersecting: true})
		}
	}
	for h := range r.onScreen {
		if !now[h] {
			entries = append(entries, virtualscroll.Entry{Handle: h, Intersecting: false})
		}
	}
	r.onScreen = now
	return entries
}

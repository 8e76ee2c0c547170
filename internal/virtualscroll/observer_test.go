package virtualscroll

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeIntersector struct {
	mu          sync.Mutex
	observed    map[Handle]int
	unobserved  map[Handle]int
	disconnects int
}

func newFakeIntersector() *fakeIntersector {
	return &fakeIntersector{observed: map[Handle]int{}, unobserved: map[Handle]int{}}
}

func (f *fakeIntersector) Observe(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observed[h]++
}

func (f *fakeIntersector) Unobserve(h Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unobserved[h]++
}

func (f *fakeIntersector) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
}

type visibleCall struct {
	index int
	item  string
}

func newTestObserver(target Intersector, items ...string) (*Observer[string], *[]visibleCall) {
	store := NewStore(items...)
	var calls []visibleCall
	o := NewObserver(target, store.At, func(index int, item string) {
		calls = append(calls, visibleCall{index, item})
	})
	return o, &calls
}

func TestObserverForwardsIntersecting(t *testing.T) {
	target := newFakeIntersector()
	o, calls := newTestObserver(target, "a", "b", "c")

	o.Observe("row-a", 0)
	o.Observe("row-c", 2)
	o.Deliver([]Entry{
		{Handle: "row-a", Intersecting: true},
		{Handle: "row-c", Intersecting: false},
		{Handle: "unknown", Intersecting: true},
	})

	assert.Equal(t, []visibleCall{{0, "a"}}, *calls)
	assert.Equal(t, 2, o.Observed())
}

func TestObserverRepeatedObserveUnobserve(t *testing.T) {
	target := newFakeIntersector()
	o, calls := newTestObserver(target, "a", "b")

	o.Observe("row", 0)
	o.Observe("row", 1)
	assert.Equal(t, 1, target.observed["row"])

	// Latest index wins
	o.Deliver([]Entry{{Handle: "row", Intersecting: true}})
	assert.Equal(t, []visibleCall{{1, "b"}}, *calls)

	o.Unobserve("row")
	o.Unobserve("row")
	o.Unobserve("never-seen")
	assert.Equal(t, 1, target.unobserved["row"])
	assert.Equal(t, 0, target.unobserved["never-seen"])
	assert.Equal(t, 0, o.Observed())
}

func TestObserverSkipsRemovedItems(t *testing.T) {
	o, calls := newTestObserver(newFakeIntersector(), "a")

	o.Observe("row", 5)
	o.Deliver([]Entry{{Handle: "row", Intersecting: true}})
	assert.Empty(t, *calls)
}

func TestObserverWithoutIntersector(t *testing.T) {
	o, calls := newTestObserver(nil, "a")
	assert.False(t, o.Enabled())

	assert.NotPanics(t, func() {
		o.Observe("row", 0)
		o.Unobserve("row")
		o.Deliver([]Entry{{Handle: "row", Intersecting: true}})
		o.Disconnect()
	})
	assert.Empty(t, *calls)
	assert.Equal(t, 0, o.Observed())
}

func TestObserverDisconnectIdempotent(t *testing.T) {
	target := newFakeIntersector()
	o, calls := newTestObserver(target, "a")

	o.Observe("row", 0)
	o.Disconnect()
	o.Disconnect()
	assert.Equal(t, 1, target.disconnects)
	assert.False(t, o.Enabled())

	o.Observe("row", 0)
	o.Deliver([]Entry{{Handle: "row", Intersecting: true}})
	assert.Empty(t, *calls)
	assert.Equal(t, 1, target.observed["row"])
}

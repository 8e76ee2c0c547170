package virtualscroll

import (
	"context"
	"iter"
	"sync"
	"time"

	"assetgrip/internal/debounce"
	"assetgrip/internal/metrics"
)

// Container is the host scroll container
type Container interface {
	SetScrollTop(top float64)
	ScrollHeight() float64
}

// ScrollEvent carries the container geometry at the time of a scroll
type ScrollEvent struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64
}

// Visible is one rendered item
type Visible[T any] struct {
	Index int     // position in the unfiltered collection
	Top   float64 // offset of the row inside the scrolled content
	Item  T
}

// Options configures a List
type Options[T any] struct {
	Name           string
	Viewport       Viewport
	Threshold      float64
	ScrollDebounce time.Duration

	Fetch         FetchFunc[T]
	OnItemVisible VisibleHook[T]
	OnError       ErrorSink
	Intersector   Intersector
	Container     Container
}

// DefaultOptions returns the stock geometry: 50px rows in a 400px container
// with 5 rows of overscan
func DefaultOptions[T any]() Options[T] {
	return Options[T]{
		Name:           "default",
		Viewport:       Viewport{ItemHeight: 50, ContainerHeight: 400, Buffer: 5},
		Threshold:      DefaultThreshold,
		ScrollDebounce: debounce.FrameInterval,
	}
}

// LoadTicket identifies one in-flight fetch
type LoadTicket struct {
	id uint64
}

// List is a windowed view over an incrementally loaded collection.
// All methods are safe for concurrent use.
type List[T any] struct {
	mu        sync.Mutex
	viewport  Viewport
	store     *Store[T]
	scrollTop float64
	query     string
	closed    bool

	threshold float64
	container Container
	fetch     FetchFunc[T]
	onError   ErrorSink

	loader    *Loader
	observer  *Observer[T]
	debouncer *debounce.Debouncer
	metrics   *metrics.ListMetrics
}

// New creates a list
func New[T any](opts Options[T]) (*List[T], error) {
	if err := opts.Viewport.Validate(); err != nil {
		return nil, err
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.ScrollDebounce <= 0 {
		opts.ScrollDebounce = debounce.FrameInterval
	}
	if opts.Name == "" {
		opts.Name = "default"
	}

	l := &List[T]{
		viewport:  opts.Viewport,
		store:     NewStore[T](),
		threshold: opts.Threshold,
		container: opts.Container,
		fetch:     opts.Fetch,
		onError:   opts.OnError,
		loader:    NewLoader(),
		debouncer: debounce.New(opts.ScrollDebounce),
		metrics:   metrics.NewListMetrics(opts.Name),
	}
	l.observer = NewObserver(opts.Intersector, l.At, opts.OnItemVisible)
	return l, nil
}

// Viewport returns the list geometry
func (l *List[T]) Viewport() Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

// Resize changes the container height, keeping the scroll offset
func (l *List[T]) Resize(containerHeight float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := l.viewport
	v.ContainerHeight = containerHeight
	if err := v.Validate(); err != nil {
		return err
	}
	l.viewport = v
	return nil
}

// Metrics returns the list's collectors
func (l *List[T]) Metrics() *metrics.ListMetrics {
	return l.metrics
}

// Len returns the number of realized items
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Len()
}

// At returns the item at an unfiltered index
func (l *List[T]) At(index int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.At(index)
}

// Items returns a copy of every realized item
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Items()
}

// ScrollOffset returns the current scroll position
func (l *List[T]) ScrollOffset() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scrollTop
}

// Range returns the window over the unfiltered collection
func (l *List[T]) Range() Range {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport.ComputeVisibleRange(l.scrollTop, l.store.Len())
}

// OffsetY returns the offset of the first rendered item
func (l *List[T]) OffsetY() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.viewport.ComputeVisibleRange(l.scrollTop, l.store.Len())
	return l.viewport.OffsetY(r.Start)
}

// TotalHeight returns the scrollable extent of the realized items
func (l *List[T]) TotalHeight() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport.TotalHeight(l.store.Len())
}

// VisibleItems returns the items inside the window over the unfiltered collection
func (l *List[T]) VisibleItems() []Visible[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.viewport.ComputeVisibleRange(l.scrollTop, l.store.Len())
	out := make([]Visible[T], 0, r.Len())
	for i, item := range l.store.Slice(r) {
		index := r.Start + i
		out = append(out, Visible[T]{
			Index: index,
			Top:   l.viewport.OffsetY(index),
			Item:  item,
		})
	}
	return out
}

// FilteredWindow windows the filtered view instead of the full collection.
// Top is the row's position inside the filtered content; Index stays the
// unfiltered index. It also returns the filtered length.
func (l *List[T]) FilteredWindow() ([]Visible[T], int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type match struct {
		index int
		item  T
	}
	var matches []match
	for i, item := range l.store.FilteredView(l.query) {
		matches = append(matches, match{index: i, item: item})
	}

	r := l.viewport.ComputeVisibleRange(l.scrollTop, len(matches))
	out := make([]Visible[T], 0, r.Len())
	for pos := r.Start; pos < r.End; pos++ {
		out = append(out, Visible[T]{
			Index: matches[pos].index,
			Top:   l.viewport.OffsetY(pos),
			Item:  matches[pos].item,
		})
	}
	return out, len(matches)
}

// SearchQuery returns the active search query
func (l *List[T]) SearchQuery() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// SetSearchQuery changes the search query and scrolls to the top
func (l *List[T]) SetSearchQuery(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
	l.scrollToLocked(0)
}

// FilteredItems returns the items matching the search query
func (l *List[T]) FilteredItems() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Filtered(l.query)
}

// FilteredView returns a lazy view of the items matching the search query
func (l *List[T]) FilteredView() iter.Seq2[int, T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.FilteredView(l.query)
}

// SetItems replaces the collection, re-arms the loader and scrolls to the top
func (l *List[T]) SetItems(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.SetItems(items)
	l.loader.Reset()
	l.scrollToLocked(0)
	l.metrics.Items(l.store.Len())
}

// AddItems appends items without touching the scroll position
func (l *List[T]) AddItems(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.AddItems(items)
	l.metrics.Items(l.store.Len())
}

// RemoveItem deletes the item at index; out of range is ignored
func (l *List[T]) RemoveItem(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store.RemoveItem(index) {
		l.metrics.Items(l.store.Len())
	}
}

// UpdateItem patches the item at index; out of range is ignored
func (l *List[T]) UpdateItem(index int, patch func(T) T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.UpdateItem(index, patch)
}

// Reset clears items, scroll position and loader flags
func (l *List[T]) Reset() {
	l.debouncer.Cancel()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Clear()
	l.scrollTop = 0
	l.loader.Reset()
	l.metrics.Items(0)
}

// ScrollToIndex scrolls so that the unfiltered index is at the top
func (l *List[T]) ScrollToIndex(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scrollToLocked(l.viewport.IndexOffset(max(index, 0)))
}

// ScrollToTop scrolls to the first item
func (l *List[T]) ScrollToTop() {
	l.ScrollToIndex(0)
}

// ScrollToBottom scrolls to the end of the content
func (l *List[T]) ScrollToBottom() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.container != nil {
		l.scrollToLocked(l.container.ScrollHeight())
		return
	}
	bottom := l.viewport.TotalHeight(l.store.Len()) - l.viewport.ContainerHeight
	l.scrollToLocked(max(bottom, 0))
}

// scrollToLocked must be called with mu held
func (l *List[T]) scrollToLocked(top float64) {
	l.scrollTop = top
	if l.container != nil {
		l.container.SetScrollTop(top)
	}
}

// HandleScroll applies a scroll event and reports whether the loader
// should fetch more
func (l *List[T]) HandleScroll(ev ScrollEvent) bool {
	l.mu.Lock()
	l.scrollTop = max(ev.ScrollTop, 0)
	closed := l.closed
	l.mu.Unlock()

	if closed || l.fetch == nil {
		return false
	}
	return l.loader.State() == StateIdle &&
		ShouldLoad(ev.ScrollTop, ev.ClientHeight, ev.ScrollHeight, l.threshold)
}

// DebouncedHandleScroll counts the event and applies it one frame later.
// Only the last event of a burst is applied. If it crosses the load
// threshold the fetch runs on the timer goroutine.
func (l *List[T]) DebouncedHandleScroll(ctx context.Context, ev ScrollEvent) {
	l.metrics.ScrollEvent()
	l.debouncer.Trigger(func() {
		if l.HandleScroll(ev) {
			l.LoadMore(ctx)
		}
	})
}

// FlushScroll applies a pending debounced scroll now
func (l *List[T]) FlushScroll() {
	l.debouncer.Flush()
}

// LoaderState returns the loader state
func (l *List[T]) LoaderState() LoaderState {
	return l.loader.State()
}

// IsLoading reports whether a fetch is in flight
func (l *List[T]) IsLoading() bool {
	return l.loader.IsLoading()
}

// HasMore reports whether the source may have more items
func (l *List[T]) HasMore() bool {
	return l.loader.HasMore()
}

// BeginLoad claims the loader for one fetch. Hosts that run the fetch
// themselves call FinishLoad with the result.
func (l *List[T]) BeginLoad() (LoadTicket, bool) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return LoadTicket{}, false
	}
	id, ok := l.loader.Begin()
	return LoadTicket{id: id}, ok
}

// Stale reports whether ticket was issued before the last Reset or SetItems
func (l *List[T]) Stale(ticket LoadTicket) bool {
	return l.loader.Stale(ticket.id)
}

// FinishLoad applies a fetch result. Items from a fetch that started
// before Reset or SetItems are dropped. It returns the number of
// items appended.
func (l *List[T]) FinishLoad(ticket LoadTicket, items []T, err error) int {
	// Reset and SetItems bump the generation under mu, so the ticket check
	// and the append must happen under it too
	l.mu.Lock()
	if !l.loader.Finish(ticket.id, len(items), err) || l.closed {
		l.mu.Unlock()
		l.metrics.Fetch(metrics.OutcomeDiscarded)
		return 0
	}

	switch {
	case err != nil:
		l.mu.Unlock()
		l.metrics.Fetch(metrics.OutcomeFailed)
		if l.onError != nil {
			l.onError("error loading more items", err)
		}
		return 0
	case len(items) == 0:
		l.mu.Unlock()
		l.metrics.Fetch(metrics.OutcomeExhausted)
		return 0
	}

	l.store.AddItems(items)
	l.metrics.Items(l.store.Len())
	l.mu.Unlock()
	l.metrics.Fetch(metrics.OutcomeLoaded)
	return len(items)
}

// LoadMore fetches the next page unless a fetch is in flight or the
// source is exhausted. Failures go to the error sink.
func (l *List[T]) LoadMore(ctx context.Context) int {
	if l.fetch == nil {
		return 0
	}
	ticket, ok := l.BeginLoad()
	if !ok {
		return 0
	}
	items, err := l.fetch(ctx)
	return l.FinishLoad(ticket, items, err)
}

// ObserveItem registers a rendered element for visibility tracking
func (l *List[T]) ObserveItem(h Handle, index int) {
	l.observer.Observe(h, index)
}

// UnobserveItem deregisters a rendered element
func (l *List[T]) UnobserveItem(h Handle) {
	l.observer.Unobserve(h)
}

// DeliverIntersections forwards a host intersection callback
func (l *List[T]) DeliverIntersections(entries []Entry) {
	l.observer.Deliver(entries)
}

// ObserverEnabled reports whether visibility tracking is active
func (l *List[T]) ObserverEnabled() bool {
	return l.observer.Enabled()
}

// MeasureRender times fn and records it
func (l *List[T]) MeasureRender(fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	l.metrics.Render(d)
	return d
}

// Close releases the observer and drops pending scroll work.
// Safe to call more than once.
func (l *List[T]) Close() {
	l.debouncer.Cancel()
	l.observer.Disconnect()
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

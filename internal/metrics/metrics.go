package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "assetgrip"

// Fetch outcomes
const (
	OutcomeLoaded    = "loaded"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
)

// Snapshot is a plain copy of the render counters
type Snapshot struct {
	RenderTime     time.Duration
	ScrollEvents   int
	LastRenderTime time.Time
}

// ListMetrics holds the collectors of one virtual list.
// Every instance has its own registry.
type ListMetrics struct {
	Registry *prometheus.Registry

	scrollEvents   prometheus.Counter
	renderDuration prometheus.Histogram
	fetches        *prometheus.CounterVec
	items          prometheus.Gauge

	mu       sync.Mutex
	snapshot Snapshot
}

// NewListMetrics creates and registers the collectors for a list named list
func NewListMetrics(list string) *ListMetrics {
	labels := prometheus.Labels{"list": list}
	m := &ListMetrics{
		Registry: prometheus.NewRegistry(),
		scrollEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "list",
			Name:        "scroll_events_total",
			Help:        "Raw scroll events received.",
			ConstLabels: labels,
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "list",
			Name:        "render_duration_seconds",
			Help:        "Duration of measured renders.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~250ms
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "loader",
			Name:        "fetches_total",
			Help:        "Fetch-more calls by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "list",
			Name:        "items",
			Help:        "Items currently realized in the list.",
			ConstLabels: labels,
		}),
	}
	m.Registry.MustRegister(m.scrollEvents, m.renderDuration, m.fetches, m.items)
	return m
}

// ScrollEvent counts one raw scroll event
func (m *ListMetrics) ScrollEvent() {
	m.scrollEvents.Inc()
	m.mu.Lock()
	m.snapshot.ScrollEvents++
	m.mu.Unlock()
}

// Render records one measured render
func (m *ListMetrics) Render(d time.Duration) {
	m.renderDuration.Observe(d.Seconds())
	m.mu.Lock()
	m.snapshot.RenderTime = d
	m.snapshot.LastRenderTime = time.Now()
	m.mu.Unlock()
}

// Fetch counts one fetch by outcome
func (m *ListMetrics) Fetch(outcome string) {
	m.fetches.WithLabelValues(outcome).Inc()
}

// Items sets the realized item count
func (m *ListMetrics) Items(n int) {
	m.items.Set(float64(n))
}

// Snapshot returns the current render counters
func (m *ListMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Counter exposes a fetch counter for inspection
func (m *ListMetrics) Counter(outcome string) prometheus.Counter {
	return m.fetches.WithLabelValues(outcome)
}

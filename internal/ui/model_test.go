package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetgrip/internal/config"
	"assetgrip/internal/eventbus"
	"assetgrip/internal/source"
)

// recordingBus keeps every published event
type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.DomainEvent
}

func (b *recordingBus) Publish(e eventbus.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() { return func() {} }
func (b *recordingBus) Close()                                                     {}

func (b *recordingBus) ofType(t eventbus.EventType) []eventbus.DomainEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventbus.DomainEvent
	for _, e := range b.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestModel(t *testing.T, count, pageSize int) (*Model, *source.MemoryProvider, *recordingBus) {
	t.Helper()
	mem := source.NewMemoryProvider(source.GenerateCatalog(count), 0)
	bus := &recordingBus{}
	log, _ := test.NewNullLogger()

	m, err := NewModel(context.Background(), Options{
		Viewport: config.DefaultConfig().Viewport,
		Pager:    source.NewPager(mem, pageSize),
		Bus:      bus,
		Log:      log,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return m, mem, bus
}

// load runs one fetch the way the program would
func load(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.startLoad()
	require.NotNil(t, cmd, "loader should be idle")
	m.Update(cmd())
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelNeedsPager(t *testing.T) {
	_, err := NewModel(context.Background(), Options{})
	assert.Error(t, err)
}

func TestViewBeforeSize(t *testing.T) {
	mem := source.NewMemoryProvider(nil, 0)
	m, err := NewModel(context.Background(), Options{
		Viewport: config.DefaultConfig().Viewport,
		Pager:    source.NewPager(mem, 10),
	})
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, "Loading...", m.View())
}

func TestModelLoadsAndNavigates(t *testing.T) {
	m, _, bus := newTestModel(t, 30, 50)
	load(t, m)

	assert.Equal(t, 30, m.List().Len())
	view := m.View()
	assert.Contains(t, view, "assetgrip")
	assert.Contains(t, view, "1/30")
	assert.Contains(t, view, "Windows 11 Pro")

	loaded := bus.ofType(eventbus.EventItemsLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, 30, loaded[0].(eventbus.ItemsLoadedEvent).Total)

	m.Update(keys("j"))
	assert.Contains(t, m.View(), "2/30")
	m.Update(keys("G"))
	assert.Contains(t, m.View(), "30/30")
	m.Update(keys("g"))
	assert.Contains(t, m.View(), "1/30")
	m.Update(keys("k"))
	assert.Contains(t, m.View(), "1/30")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd, "enter opens the details pager")
}

func TestModelExhaustsSource(t *testing.T) {
	m, _, bus := newTestModel(t, 30, 50)
	load(t, m)
	load(t, m)

	assert.Contains(t, m.View(), "all loaded")
	assert.Nil(t, m.startLoad(), "no fetch after exhaustion")

	exhausted := bus.ofType(eventbus.EventSourceExhausted)
	require.Len(t, exhausted, 1)
	assert.Equal(t, 30, exhausted[0].(eventbus.SourceExhaustedEvent).Total)
}

func TestModelSingleFetchInFlight(t *testing.T) {
	m, _, _ := newTestModel(t, 30, 10)

	cmd := m.startLoad()
	require.NotNil(t, cmd)
	assert.Nil(t, m.startLoad())
	assert.Contains(t, m.View(), "loading...")

	m.Update(cmd())
	assert.Equal(t, 10, m.List().Len())
	assert.NotNil(t, m.startLoad())
}

func TestModelLoadFailure(t *testing.T) {
	m, mem, bus := newTestModel(t, 30, 50)
	mem.FailAt(0, errors.New("inventory offline"))

	load(t, m)
	view := m.View()
	assert.Contains(t, view, "Failed to load assets")
	assert.Contains(t, view, "last load failed")
	assert.Len(t, bus.ofType(eventbus.EventLoadFailed), 1)
	assert.Equal(t, 0, m.List().Len())

	_, cmd := m.Update(keys("m"))
	require.NotNil(t, cmd, "m retries the load")
	m.Update(cmd())
	assert.Equal(t, 30, m.List().Len())
	assert.NotContains(t, m.View(), "last load failed")
}

func TestModelSearch(t *testing.T) {
	m, _, bus := newTestModel(t, 30, 50)
	load(t, m)

	m.Update(keys("/"))
	m.Update(keys("dell"))
	assert.Equal(t, "dell", m.List().SearchQuery())
	assert.Contains(t, m.View(), "1/5")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "[Search: dell]")

	changed := bus.ofType(eventbus.EventSearchChanged)
	require.NotEmpty(t, changed)
	last := changed[len(changed)-1].(eventbus.SearchChangedEvent)
	assert.Equal(t, "dell", last.Query)
	assert.Equal(t, 5, last.Matches)

	m.Update(keys("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "", m.List().SearchQuery())
	assert.Contains(t, m.View(), "1/30")

	m.Update(keys("/"))
	m.Update(keys("zzz"))
	assert.Contains(t, m.View(), "No assets match the search")
}

func TestModelStatusWindowFollowsSearch(t *testing.T) {
	m, _, _ := newTestModel(t, 30, 50)
	load(t, m)
	assert.NotContains(t, m.View(), "window 0-5 of 30 loaded")

	m.Update(keys("/"))
	m.Update(keys("dell"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// Five rows match, so the window cannot reach past them
	assert.Contains(t, m.View(), "window 0-5 of 30 loaded")
}

func TestModelReloadDropsStalePage(t *testing.T) {
	m, _, bus := newTestModel(t, 30, 50)
	load(t, m)

	cmd := m.startLoad()
	require.NotNil(t, cmd)
	stale := cmd()

	m.Update(reloadMsg{})
	assert.Equal(t, 0, m.List().Len())
	assert.Contains(t, m.View(), "Reloading assets")
	assert.Len(t, bus.ofType(eventbus.EventListReset), 1)

	m.Update(stale)
	assert.Equal(t, 0, m.List().Len())
	assert.True(t, m.List().IsLoading(), "the reload's own fetch is still pending")
	assert.Empty(t, bus.ofType(eventbus.EventSourceExhausted))
}

func TestModelReloadKeyIsDebounced(t *testing.T) {
	m, _, _ := newTestModel(t, 5, 50)

	m.Update(keys("r"))
	m.Update(keys("r"))

	done := make(chan tea.Msg, 1)
	go func() { done <- m.waitForReload()() }()

	select {
	case msg := <-done:
		assert.IsType(t, reloadMsg{}, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("reload was never delivered")
	}
}

func TestModelPublishesVisibleAssets(t *testing.T) {
	m, _, bus := newTestModel(t, 30, 50)
	load(t, m)

	assert.Eventually(t, func() bool {
		return len(bus.ofType(eventbus.EventItemsVisible)) > 0
	}, 2*time.Second, 20*time.Millisecond)

	first := bus.ofType(eventbus.EventItemsVisible)[0].(eventbus.ItemsVisibleEvent)
	require.NotEmpty(t, first.Items)
	assert.Equal(t, 0, first.Items[0].Index)
}

func TestModelReadySignal(t *testing.T) {
	mem := source.NewMemoryProvider(source.GenerateCatalog(3), 0)
	m, err := NewModel(context.Background(), Options{
		Viewport:    config.DefaultConfig().Viewport,
		Pager:       source.NewPager(mem, 10),
		ReadySignal: true,
	})
	require.NoError(t, err)
	defer m.Close()

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	assert.Contains(t, m.View(), "__READY__")
}

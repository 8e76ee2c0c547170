package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"assetgrip/internal/config"
	"assetgrip/internal/debounce"
	"assetgrip/internal/domain"
	"assetgrip/internal/eventbus"
	"assetgrip/internal/logging"
	"assetgrip/internal/source"
	"assetgrip/internal/virtualscroll"
)

// Rows taken by the title and status lines; help is measured
const chromeRows = 2

// visibleBatchDelay groups item-visible hooks into one bus event
const visibleBatchDelay = 100 * time.Millisecond

// Reload requests are coalesced; a held key still reloads every reloadMaxWait
const (
	reloadDelay   = 150 * time.Millisecond
	reloadMaxWait = time.Second
)

// Options wires a Model to its collaborators
type Options struct {
	Viewport config.ViewportConfig
	Pager    *source.Pager
	Bus      eventbus.EventBus
	Log      logrus.FieldLogger

	// ReadySignal marks the first rendered frame for terminal tests
	ReadySignal bool
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	list   *virtualscroll.List[domain.Asset]
	pager  *source.Pager
	bus    eventbus.EventBus
	log    logrus.FieldLogger
	styles *Styles
	keys   keyMap
	help   help.Model
	search textinput.Model

	rows     *rowIntersector
	visible  *debounce.Batcher[domain.VisibleAsset]
	reloads  *debounce.UpdateDebouncer
	reloadCh chan struct{}
	drawn    []virtualscroll.Handle

	width, height int
	rowHeight     int
	settleDelay   time.Duration

	scrollTop float64 // where the user wants to be; the list catches up when scrolling settles
	scrollSeq int
	cursor    int // position in the current (possibly filtered) view
	viewLen   int
	searching bool

	status      string
	statusIsErr bool
	lastErr     error
	readySignal bool
}

// NewModel creates the UI model and the list it hosts
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if opts.Pager == nil {
		return nil, fmt.Errorf("asset list needs a pager")
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search assets"
	search.CharLimit = 128

	m := &Model{
		ctx:         ctx,
		cancel:      cancel,
		pager:       opts.Pager,
		bus:         opts.Bus,
		log:         opts.Log.WithField("component", "ui"),
		styles:      NewStyles(),
		keys:        newKeyMap(),
		help:        help.New(),
		search:      search,
		rows:        newRowIntersector(),
		rowHeight:   max(1, int(math.Ceil(opts.Viewport.ItemHeight))),
		settleDelay: opts.Viewport.ScrollDebounce(),
		readySignal: opts.ReadySignal,
		reloadCh:    make(chan struct{}, 1),
	}
	if m.settleDelay <= 0 {
		m.settleDelay = debounce.FrameInterval
	}

	m.visible = debounce.NewBatcher(visibleBatchDelay, func(batch []domain.VisibleAsset) {
		if m.bus != nil {
			m.bus.Publish(eventbus.ItemsVisibleEvent{Items: batch})
		}
	})

	m.reloads = debounce.NewUpdateDebouncer(reloadDelay, reloadMaxWait, func() error {
		select {
		case m.reloadCh <- struct{}{}:
			return nil
		default:
			return errReloadPending
		}
	}, logging.ErrorSink(m.log))

	list, err := virtualscroll.New(virtualscroll.Options[domain.Asset]{
		Name: "assets",
		Viewport: virtualscroll.Viewport{
			ItemHeight:      float64(m.rowHeight),
			ContainerHeight: opts.Viewport.ContainerHeight,
			Buffer:          opts.Viewport.Buffer,
		},
		Threshold:      opts.Viewport.Threshold,
		ScrollDebounce: m.settleDelay,
		Fetch:          opts.Pager.Next,
		OnError:        logging.ErrorSink(m.log),
		Intersector:    m.rows,
		OnItemVisible: func(index int, asset domain.Asset) {
			m.visible.Add(domain.VisibleAsset{Index: index, Asset: asset})
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create asset list: %w", err)
	}
	m.list = list

	return m, nil
}

// List exposes the hosted list
func (m *Model) List() *virtualscroll.List[domain.Asset] {
	return m.list
}

// Close releases the list and flushes pending visibility events
func (m *Model) Close() {
	m.cancel()
	m.reloads.Cancel()
	m.list.Close()
	m.visible.Stop()
}

// Init starts loading the first page
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startLoad(), m.waitForReload())
}

// waitForReload delivers the next debounced reload request
func (m *Model) waitForReload() tea.Cmd {
	ctx, ch := m.ctx, m.reloadCh
	return func() tea.Msg {
		select {
		case <-ch:
			return reloadMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(10, msg.Width-4)
		cmd = m.scrollTo(m.scrollTop)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			cmd = m.scrollTo(m.scrollTop - float64(3*m.rowHeight))
		case tea.MouseButtonWheelDown:
			cmd = m.scrollTo(m.scrollTop + float64(3*m.rowHeight))
		}

	case scrollSettledMsg:
		if msg.seq == m.scrollSeq {
			cmd = m.settleScroll()
		}

	case pageLoadedMsg:
		cmd = m.applyPage(msg)

	case reloadMsg:
		cmd = tea.Batch(m.reload(), m.waitForReload())

	case pagerClosedMsg:
		if msg.err != nil {
			cmd = m.setStatus(fmt.Sprintf("pager: %v", msg.err), true)
		}

	case clearStatusMsg:
		m.status = ""
		m.statusIsErr = false
	}

	m.refreshView()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	page := float64(m.bodyRows())
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(int(page) / m.rowHeight)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-int(page) / m.rowHeight)
	case key.Matches(msg, m.keys.Top):
		return m.moveCursor(-m.cursor)
	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(m.viewLen - 1 - m.cursor)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.list.SearchQuery())
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.Details):
		if asset, ok := m.selected(); ok {
			return showInPager(asset.Details())
		}
	case key.Matches(msg, m.keys.LoadMore):
		return m.startLoad()
	case key.Matches(msg, m.keys.Reload):
		m.reloads.Trigger()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return m.applySearch("")
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.list.SearchQuery() {
		return tea.Batch(cmd, m.applySearch(q))
	}
	return cmd
}

func (m *Model) applySearch(query string) tea.Cmd {
	m.list.SetSearchQuery(query)
	m.cursor = 0
	m.scrollTop = 0
	_, matches := m.list.FilteredWindow()
	if m.bus != nil {
		m.bus.Publish(eventbus.SearchChangedEvent{Query: query, Matches: matches})
	}
	return m.scheduleSettle()
}

// moveCursor moves the selection by delta rows and scrolls to keep it visible
func (m *Model) moveCursor(delta int) tea.Cmd {
	if m.viewLen == 0 {
		m.cursor = 0
		return nil
	}
	m.cursor = min(max(m.cursor+delta, 0), m.viewLen-1)

	top := float64(m.cursor * m.rowHeight)
	bottom := top + float64(m.rowHeight)
	body := float64(m.bodyRows())
	target := m.scrollTop
	if top < target {
		target = top
	}
	if bottom > target+body {
		target = bottom - body
	}
	return m.scrollTo(target)
}

// scrollTo sets the wanted scroll offset and debounces applying it
func (m *Model) scrollTo(top float64) tea.Cmd {
	maxTop := math.Max(0, float64(m.viewLen*m.rowHeight-m.bodyRows()))
	m.scrollTop = math.Min(math.Max(top, 0), maxTop)
	m.list.Metrics().ScrollEvent()
	return m.scheduleSettle()
}

func (m *Model) scheduleSettle() tea.Cmd {
	m.scrollSeq++
	seq := m.scrollSeq
	return tea.Tick(m.settleDelay, func(time.Time) tea.Msg {
		return scrollSettledMsg{seq: seq}
	})
}

// settleScroll hands the settled offset to the list and loads more if the
// trailing edge is close enough to the end
func (m *Model) settleScroll() tea.Cmd {
	ev := virtualscroll.ScrollEvent{
		ScrollTop:    m.scrollTop,
		ScrollHeight: float64(m.viewLen * m.rowHeight),
		ClientHeight: float64(m.bodyRows()),
	}
	if m.list.HandleScroll(ev) {
		return m.startLoad()
	}
	return nil
}

// startLoad claims the loader and runs the fetch off the UI goroutine
func (m *Model) startLoad() tea.Cmd {
	ticket, ok := m.list.BeginLoad()
	if !ok {
		return nil
	}
	ctx, pager := m.ctx, m.pager
	return func() tea.Msg {
		items, err := pager.Next(ctx)
		return pageLoadedMsg{ticket: ticket, items: items, err: err}
	}
}

func (m *Model) applyPage(msg pageLoadedMsg) tea.Cmd {
	if m.list.Stale(msg.ticket) {
		m.list.FinishLoad(msg.ticket, msg.items, msg.err)
		return nil
	}
	appended := m.list.FinishLoad(msg.ticket, msg.items, msg.err)

	switch {
	case msg.err != nil:
		m.lastErr = msg.err
		if m.bus != nil {
			m.bus.Publish(eventbus.LoadFailedEvent{Message: "error loading more items", Err: msg.err})
		}
		return m.setStatus("Failed to load assets, press m to retry", true)

	case len(msg.items) == 0:
		if m.bus != nil {
			m.bus.Publish(eventbus.SourceExhaustedEvent{Total: m.list.Len()})
		}
		return nil

	case appended > 0:
		m.lastErr = nil
		if m.bus != nil {
			m.bus.Publish(eventbus.ItemsLoadedEvent{Count: appended, Total: m.list.Len()})
		}
		// The page may not fill the screen yet; check the trigger again
		return m.scheduleSettle()
	}
	return nil
}

func (m *Model) reload() tea.Cmd {
	m.list.Reset()
	m.pager.Reset()
	m.cursor = 0
	m.scrollTop = 0
	m.lastErr = nil
	if m.bus != nil {
		m.bus.Publish(eventbus.ListResetEvent{})
	}
	return tea.Batch(m.startLoad(), m.setStatus("Reloading assets", false))
}

func (m *Model) setStatus(status string, isErr bool) tea.Cmd {
	m.status = status
	m.statusIsErr = isErr
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// selected returns the asset under the cursor
func (m *Model) selected() (domain.Asset, bool) {
	pos := 0
	for _, asset := range m.list.FilteredView() {
		if pos == m.cursor {
			return asset, true
		}
		pos++
	}
	return domain.Asset{}, false
}

// bodyRows is the height of the list container in terminal rows
func (m *Model) bodyRows() int {
	rows := m.height - chromeRows - lipgloss.Height(m.help.View(m.keys))
	if m.searching || m.list.SearchQuery() != "" {
		rows--
	}
	return max(rows, 1)
}

// refreshView recomputes the drawn rows and feeds visibility changes to
// the list's observer bridge
func (m *Model) refreshView() {
	if m.height > 0 {
		if err := m.list.Resize(float64(m.bodyRows())); err != nil {
			m.log.WithError(err).Warn("resize rejected")
		}
	}

	window, n := m.list.FilteredWindow()
	m.viewLen = n
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}

	offset := m.list.ScrollOffset()
	body := float64(m.bodyRows())
	drawn := make([]virtualscroll.Handle, 0, len(window))
	current := make(map[virtualscroll.Handle]bool, len(window))
	for _, v := range window {
		if v.Top+float64(m.rowHeight) <= offset || v.Top >= offset+body {
			continue // overscan row
		}
		h := virtualscroll.Handle(v.Item.ID)
		m.list.ObserveItem(h, v.Index)
		drawn = append(drawn, h)
		current[h] = true
	}
	for _, h := range m.drawn {
		if !current[h] {
			m.list.UnobserveItem(h)
		}
	}
	m.list.DeliverIntersections(m.rows.Update(drawn))
	m.drawn = drawn
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	m.list.MeasureRender(func() {
		b.WriteString(m.styles.Title.Render("assetgrip"))
		b.WriteString("\n")

		if m.searching {
			b.WriteString(m.search.View())
			b.WriteString("\n")
		} else if q := m.list.SearchQuery(); q != "" {
			b.WriteString(m.styles.Filter.Render(fmt.Sprintf("[Search: %s]", q)))
			b.WriteString("\n")
		}

		b.WriteString(m.renderRows())
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	})
	return b.String()
}

func (m *Model) renderRows() string {
	window, _ := m.list.FilteredWindow()
	offset := m.list.ScrollOffset()
	body := m.bodyRows()
	query := m.list.SearchQuery()
	now := time.Now()

	lines := make([]string, 0, body)
	for _, v := range window {
		if v.Top+float64(m.rowHeight) <= offset || v.Top >= offset+float64(body) {
			continue
		}
		pos := int(v.Top) / m.rowHeight
		line := m.renderAsset(v.Item, query, now)
		if pos == m.cursor {
			line = m.styles.SelectionBg.Render(line)
		}
		lines = append(lines, line)
		for i := 1; i < m.rowHeight; i++ {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		switch {
		case m.list.IsLoading():
			lines = append(lines, m.styles.StatusLoading.Render("Loading assets..."))
		case query != "":
			lines = append(lines, m.styles.Dim.Render("No assets match the search"))
		default:
			lines = append(lines, m.styles.Dim.Render("No assets"))
		}
	}
	for len(lines) < body {
		lines = append(lines, "")
	}
	return strings.Join(lines[:body], "\n") + "\n"
}

func (m *Model) renderAsset(a domain.Asset, query string, now time.Time) string {
	tag := lipgloss.NewStyle().
		Foreground(lipgloss.Color(KindColor(a.Kind))).
		Width(4).
		Render(a.Kind.Label())

	name := a.Name
	if query != "" && virtualscroll.Matches(a.Name, query) {
		name = m.styles.Highlight.Render(name)
	}

	var extra string
	switch {
	case a.Expiry != nil && a.Expired(now):
		extra = m.styles.Expired.Render("expired " + a.Expiry.Format(time.DateOnly))
	case a.Expiry != nil:
		extra = m.styles.Dim.Render("until " + a.Expiry.Format(time.DateOnly))
	case a.Cost > 0:
		extra = m.styles.Dim.Render(fmt.Sprintf("%.2f", a.Cost))
	case a.Notes != "":
		extra = m.styles.Dim.Render(a.Notes)
	}

	return fmt.Sprintf("%s %s  %s  %s", tag, name, m.styles.Dim.Render(a.Vendor), extra)
}

func (m *Model) renderStatus() string {
	// The window is over the filtered view, the one on screen
	r := m.list.Viewport().ComputeVisibleRange(m.list.ScrollOffset(), m.viewLen)
	parts := []string{
		fmt.Sprintf("%d/%d", min(m.cursor+1, m.viewLen), m.viewLen),
		fmt.Sprintf("window %d-%d of %d loaded", r.Start, r.End, m.list.Len()),
	}
	switch m.list.LoaderState() {
	case virtualscroll.StateLoading:
		parts = append(parts, m.styles.StatusLoading.Render("loading..."))
	case virtualscroll.StateExhausted:
		parts = append(parts, m.styles.StatusSuccess.Render("all loaded"))
	}
	if m.lastErr != nil {
		parts = append(parts, m.styles.StatusError.Render("last load failed"))
	}

	line := m.styles.Status.Render(strings.Join(parts, " · "))
	if m.status != "" {
		style := m.styles.Status
		if m.statusIsErr {
			style = m.styles.StatusError
		}
		line += "  " + style.Render(m.status)
	}
	if m.readySignal {
		line += " __READY__"
	}
	return line
}

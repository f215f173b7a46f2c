package tui

import (
	"fmt"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is what the user asked for when the grid exited.
type Action string

const (
	ActionNone Action = ""
	ActionOpen Action = "open"
)

// Result is returned by RunGrid.
type Result struct {
	Action Action
	Entry  *catalog.Entry
}

// GridOptions connects the grid to the running session.
type GridOptions struct {
	// Snapshots delivers the catalog after every change, typically from
	// catalog.Store.Subscribe.
	Snapshots <-chan []catalog.Entry
	// Events carries acquisition outcomes, used to clear the downloading
	// marker when a transfer fails. May be nil.
	Events <-chan cache.Event
	// Acquire starts acquisition of one entry without blocking.
	Acquire func(id string)
	// Protocol selects inline preview rendering.
	Protocol ImageProtocol
}

type snapshotMsg []catalog.Entry

type eventMsg cache.Event

type feedClosedMsg struct{}

// GridModel is the booklet grid. Catalog state arrives only as
// snapshotMsg values; the model never reads the store directly.
type GridModel struct {
	opts    GridOptions
	keys    gridKeys
	spinner spinner.Model

	entries []catalog.Entry
	pending map[string]bool
	failed  map[string]string
	status  string

	cursor    int
	offset    int // first visible row
	width     int
	height    int
	activeKey string

	action   Action
	selected *catalog.Entry
	quitting bool
}

// NewGridModel creates the model. Entries arrive with the first snapshot.
func NewGridModel(opts GridOptions) GridModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = StyleHighlight
	if opts.Acquire == nil {
		opts.Acquire = func(string) {}
	}
	return GridModel{
		opts:    opts,
		keys:    newGridKeys(),
		spinner: sp,
		pending: map[string]bool{},
		failed:  map[string]string{},
		width:   80,
		height:  24,
	}
}

func (m GridModel) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.opts.Snapshots),
		waitForEvent(m.opts.Events),
		m.spinner.Tick,
	)
}

func waitForSnapshot(ch <-chan []catalog.Entry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func waitForEvent(ch <-chan cache.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scrollToCursor()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, waitForSnapshot(m.opts.Snapshots)

	case eventMsg:
		m.applyEvent(cache.Event(msg))
		return m, waitForEvent(m.opts.Events)

	case feedClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearActiveKeyMsg:
		m.activeKey = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m GridModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		m.move(-1)
	case key.Matches(msg, m.keys.Right):
		m.move(1)
	case key.Matches(msg, m.keys.Up):
		m.move(-cols)
	case key.Matches(msg, m.keys.Down):
		m.move(cols)

	case key.Matches(msg, m.keys.Get):
		if e := m.current(); e != nil {
			m.acquire(*e)
		}
		m.activeKey = "g"
		return m, highlightCmd()

	case key.Matches(msg, m.keys.All):
		n := 0
		for _, e := range m.entries {
			if !e.Acquired() && !m.pending[e.ID] {
				m.acquire(e)
				n++
			}
		}
		m.status = fmt.Sprintf("requested %d booklets", n)
		m.activeKey = "a"
		return m, highlightCmd()

	case key.Matches(msg, m.keys.Open):
		e := m.current()
		if e == nil {
			return m, nil
		}
		if !e.Acquired() {
			m.status = fmt.Sprintf("%q is not downloaded yet, press g first", e.Title)
			return m, nil
		}
		sel := *e
		m.action = ActionOpen
		m.selected = &sel
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *GridModel) acquire(e catalog.Entry) {
	if e.HasPreview() {
		m.status = fmt.Sprintf("%q is ready", e.Title)
		return
	}
	delete(m.failed, e.ID)
	m.pending[e.ID] = true
	m.status = ""
	m.opts.Acquire(e.ID)
}

// applySnapshot replaces the entry list, keeping the cursor on the same
// entry when it still exists.
func (m *GridModel) applySnapshot(entries []catalog.Entry) {
	var curID string
	if e := m.current(); e != nil {
		curID = e.ID
	}
	m.entries = entries
	for id := range m.pending {
		e := catalog.ByID(entries, id)
		if e == nil || e.HasPreview() {
			delete(m.pending, id)
		}
	}
	m.cursor = 0
	for i, e := range entries {
		if e.ID == curID {
			m.cursor = i
			break
		}
	}
	m.scrollToCursor()
}

func (m *GridModel) applyEvent(ev cache.Event) {
	switch ev.Stage {
	case cache.StageInvalid, cache.StageTransferFailed, cache.StagePreviewFailed:
		delete(m.pending, ev.ID)
		if ev.Err != nil {
			m.failed[ev.ID] = ev.Err.Error()
		}
	case cache.StagePreviewed:
		delete(m.pending, ev.ID)
	}
}

func (m *GridModel) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.entries) {
		return
	}
	m.cursor = next
	m.status = ""
	m.scrollToCursor()
}

func (m *GridModel) scrollToCursor() {
	cols := m.columns()
	rows := m.visibleRows()
	row := m.cursor / cols
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+rows {
		m.offset = row - rows + 1
	}
}

func (m GridModel) current() *catalog.Entry {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	return &m.entries[m.cursor]
}

// Result reports the exit action.
func (m GridModel) Result() Result {
	return Result{Action: m.action, Entry: m.selected}
}

// RunGrid runs the grid on the alternate screen until the user quits or
// opens a booklet.
func RunGrid(opts GridOptions) (Result, error) {
	p := tea.NewProgram(NewGridModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running TUI: %w", err)
	}
	if fm, ok := final.(GridModel); ok {
		return fm.Result(), nil
	}
	return Result{}, nil
}

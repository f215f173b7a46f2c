package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/booklets/internal/cache"
	"github.com/blackwell-systems/booklets/internal/catalog"
	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testEntries() []catalog.Entry {
	return []catalog.Entry{
		{ID: "1", Title: "Bears", Rating: 4, RemoteURL: "https://x/1.pdf", Tags: []string{"animals"}},
		{ID: "2", Title: "Rivers", Rating: 3, RemoteURL: "https://x/2.pdf"},
		{ID: "3", Title: "Stars", Rating: 5, RemoteURL: "https://x/3.pdf"},
	}
}

func newTestGrid(t *testing.T) (GridModel, *[]string) {
	t.Helper()
	var calls []string
	m := NewGridModel(GridOptions{Acquire: func(id string) { calls = append(calls, id) }})
	next, _ := m.Update(snapshotMsg(testEntries()))
	return next.(GridModel), &calls
}

func update(t *testing.T, m GridModel, msg tea.Msg) GridModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(GridModel)
}

func TestGrid_GetRequestsAcquisition(t *testing.T) {
	m, calls := newTestGrid(t)
	m = update(t, m, runes("l"))
	m = update(t, m, runes("g"))

	if len(*calls) != 1 || (*calls)[0] != "2" {
		t.Fatalf("acquire calls = %v, want [2]", *calls)
	}
	if m.stateOf(m.entries[1]) != stateDownloading {
		t.Errorf("state = %v, want downloading", m.stateOf(m.entries[1]))
	}
}

func TestGrid_EnterAlsoAcquires(t *testing.T) {
	m, calls := newTestGrid(t)
	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(*calls) != 1 || (*calls)[0] != "1" {
		t.Errorf("acquire calls = %v, want [1]", *calls)
	}
}

func TestGrid_AllSkipsAcquired(t *testing.T) {
	m, calls := newTestGrid(t)
	entries := testEntries()
	entries[0].LocalPath = "/c/1.pdf"
	m = update(t, m, snapshotMsg(entries))
	update(t, m, runes("a"))
	if got := strings.Join(*calls, ","); got != "2,3" {
		t.Errorf("acquire calls = %s, want 2,3", got)
	}
}

func TestGrid_SnapshotAdvancesState(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, runes("g"))

	entries := testEntries()
	entries[0].LocalPath = "/c/1.pdf"
	m = update(t, m, snapshotMsg(entries))
	if got := m.stateOf(m.entries[0]); got != stateDeriving {
		t.Errorf("state after download = %v, want deriving", got)
	}

	entries[0].Preview = &catalog.Preview{Path: "/c/.previews/1.pdf.png"}
	m = update(t, m, snapshotMsg(entries))
	if got := m.stateOf(m.entries[0]); got != statePreview {
		t.Errorf("state after preview = %v, want preview", got)
	}
	if m.pending["1"] {
		t.Error("pending marker not cleared")
	}
}

func TestGrid_FailureEventClearsPending(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, runes("g"))
	m = update(t, m, eventMsg(cache.Event{ID: "1", Stage: cache.StageTransferFailed, Err: errors.New("boom")}))

	if m.pending["1"] {
		t.Error("pending marker survived failure")
	}
	if got := m.stateOf(m.entries[0]); got != stateFailed {
		t.Errorf("state = %v, want failed", got)
	}

	// Retrying clears the failure.
	m = update(t, m, runes("g"))
	if got := m.stateOf(m.entries[0]); got != stateDownloading {
		t.Errorf("state after retry = %v, want downloading", got)
	}
}

func TestGrid_CursorFollowsEntryAcrossSnapshots(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, runes("l"))
	m = update(t, m, runes("l"))
	if m.current().ID != "3" {
		t.Fatalf("cursor on %s, want 3", m.current().ID)
	}
	entries := testEntries()
	m = update(t, m, snapshotMsg(entries[1:]))
	if m.current().ID != "3" {
		t.Errorf("cursor moved to %s after snapshot", m.current().ID)
	}
}

func TestGrid_OpenRequiresDownload(t *testing.T) {
	m, _ := newTestGrid(t)
	next, cmd := m.Update(runes("o"))
	m = next.(GridModel)
	if cmd != nil || m.quitting {
		t.Fatal("open of a remote entry should not exit")
	}
	if !strings.Contains(m.status, "not downloaded") {
		t.Errorf("status = %q", m.status)
	}

	entries := testEntries()
	entries[0].LocalPath = "/c/1.pdf"
	m = update(t, m, snapshotMsg(entries))
	m = update(t, m, runes("o"))
	res := m.Result()
	if res.Action != ActionOpen || res.Entry == nil || res.Entry.LocalPath != "/c/1.pdf" {
		t.Errorf("result = %+v", res)
	}
}

func TestGrid_MoveStaysInBounds(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, runes("h"))
	m = update(t, m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m = update(t, m, runes("l"))
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
}

func TestGrid_ViewShowsCards(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"Bears", "Rivers", "Stars", "0/3 downloaded"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestGrid_FeedClosedQuits(t *testing.T) {
	m, _ := newTestGrid(t)
	m = update(t, m, feedClosedMsg{})
	if !m.quitting {
		t.Error("grid should quit when the catalog feed closes")
	}
}

func TestDetectImageProtocol(t *testing.T) {
	tests := []struct {
		term, program string
		want          ImageProtocol
	}{
		{"xterm-kitty", "", ProtocolKitty},
		{"xterm-256color", "ghostty", ProtocolKitty},
		{"xterm-256color", "iTerm.app", ProtocolITerm2},
		{"xterm-256color", "Apple_Terminal", ProtocolNone},
	}
	for _, tt := range tests {
		if got := detectImageProtocol(tt.term, tt.program); got != tt.want {
			t.Errorf("detect(%q, %q) = %v, want %v", tt.term, tt.program, got, tt.want)
		}
	}
}

func TestEncodeImage(t *testing.T) {
	if got := encodeImage([]byte("png"), 10, 7, ProtocolKitty); !strings.HasPrefix(got, "\x1b_Ga=T,f=100,c=10,r=7;") {
		t.Errorf("kitty sequence = %q", got)
	}
	if got := encodeImage([]byte("png"), 10, 7, ProtocolNone); got != "" {
		t.Errorf("no-protocol sequence = %q", got)
	}
	if got := RenderPreview("/no/such.png", 10, 7, ProtocolKitty); got != "" {
		t.Error("missing file should render nothing")
	}
}

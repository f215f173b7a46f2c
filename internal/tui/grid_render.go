package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/booklets/internal/catalog"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	cardInnerW   = 22
	cardOuterW   = cardInnerW + 4 // padding + border
	cardLines    = 4
	cardOuterH   = cardLines + 2
	cardGap      = 1
	detailsW     = 34
	minDetailsAt = 90 // narrower screens hide the details pane
	chromeH      = 6  // border, header and footer
)

// cardState is the acquisition state shown on a card.
type cardState int

const (
	stateRemote cardState = iota
	stateDownloading
	stateDeriving
	stateReady
	statePreview
	stateFailed
)

func (m GridModel) stateOf(e catalog.Entry) cardState {
	switch {
	case m.failed[e.ID] != "":
		return stateFailed
	case m.pending[e.ID] && !e.Acquired():
		return stateDownloading
	case e.HasPreview():
		return statePreview
	case m.pending[e.ID]:
		return stateDeriving
	case e.Acquired():
		return stateReady
	}
	return stateRemote
}

func (m GridModel) stateLabel(s cardState) string {
	switch s {
	case stateDownloading:
		return m.spinner.View() + " downloading"
	case stateDeriving:
		return m.spinner.View() + " preview"
	case stateReady:
		return StyleReady.Render("✓ ready")
	case statePreview:
		return StyleReady.Render("✓ preview")
	case stateFailed:
		return StyleError.Render("✗ failed")
	}
	return StyleHelp.Render("· remote")
}

func (m GridModel) showDetails() bool {
	return m.width >= minDetailsAt
}

func (m GridModel) columns() int {
	w := m.width - 2
	if m.showDetails() {
		w -= detailsW + 1
	}
	return max(1, (w+cardGap)/(cardOuterW+cardGap))
}

func (m GridModel) visibleRows() int {
	return max(1, (m.height-chromeH)/cardOuterH)
}

func (m GridModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	body := m.renderGrid()
	if m.showDetails() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderDetails())
	}
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleHelp.Render(" " + m.status))
		b.WriteString("\n")
	}
	b.WriteString(renderFooter([]key.Binding{
		m.keys.Get, m.keys.All, m.keys.Open, m.keys.Quit,
	}, m.activeKey))

	return StyleBorder.Render(b.String())
}

func (m GridModel) renderHeader() string {
	ready := 0
	for _, e := range m.entries {
		if e.Acquired() {
			ready++
		}
	}
	return StyleHeader.Render(" Booklets") + "  " +
		StyleHelp.Render(fmt.Sprintf("%d/%d downloaded", ready, len(m.entries)))
}

func (m GridModel) renderGrid() string {
	if len(m.entries) == 0 {
		return StyleHelp.Render(" loading catalog…")
	}
	cols := m.columns()
	first := m.offset * cols
	last := min(len(m.entries), first+m.visibleRows()*cols)

	var rows []string
	for start := first; start < last; start += cols {
		end := min(start+cols, last)
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, strings.Repeat(" ", cardGap))
			}
			cells = append(cells, m.renderCard(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m GridModel) renderCard(i int) string {
	e := m.entries[i]
	title := xansi.Truncate(e.Title, cardInnerW, "…")
	rating := StyleRating.Render(e.Stars()) + " " + e.RatingString()
	tags := StyleTag.Render(xansi.Truncate(strings.Join(e.Tags, " "), cardInnerW, "…"))
	content := strings.Join([]string{title, rating, tags, m.stateLabel(m.stateOf(e))}, "\n")

	border := ColorDim
	if i == m.cursor {
		border = ColorOrange
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cardInnerW + 2).
		Height(cardLines).
		Padding(0, 1).
		Render(content)
}

func (m GridModel) renderDetails() string {
	e := m.current()
	if e == nil {
		return ""
	}
	inner := detailsW - 4
	var s strings.Builder

	if e.HasPreview() {
		if img := RenderPreview(e.Preview.Path, inner/2, inner*7/10/2, m.opts.Protocol); img != "" {
			s.WriteString(img)
			s.WriteString("\n")
		}
	}
	s.WriteString(StyleHighlight.Render(xansi.Truncate(e.Title, inner, "…")))
	s.WriteString("\n\n")
	s.WriteString(StyleRating.Render(e.Stars()) + " " + e.RatingString())
	s.WriteString("\n")
	if len(e.Tags) > 0 {
		s.WriteString(StyleTag.Render(xansi.Wordwrap("#"+strings.Join(e.Tags, " #"), inner, " ")))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(m.stateLabel(m.stateOf(*e)))
	s.WriteString("\n")
	if e.Acquired() {
		s.WriteString(StyleHelp.Render(xansi.Truncate(filepath.Base(e.LocalPath), inner, "…")))
		s.WriteString("\n")
	}
	if msg := m.failed[e.ID]; msg != "" {
		s.WriteString(StyleError.Render(xansi.Wordwrap(msg, inner, " /")))
		s.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(detailsW).
		Padding(0, 2).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorDim).
		Render(s.String())
}

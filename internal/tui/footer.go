package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// clearActiveKeyMsg ends the footer highlight of the last pressed key.
type clearActiveKeyMsg struct{}

// highlightCmd clears the footer highlight after a short delay. Set the
// model's activeKey before returning it:
//
//	m.activeKey = "g"
//	return m, highlightCmd()
func highlightCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return clearActiveKeyMsg{}
	})
}

// renderFooter lays out key help, highlighting the binding whose first
// key equals active.
func renderFooter(bindings []key.Binding, active string) string {
	dim := lipgloss.NewStyle().Foreground(ColorDim)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		label := h.Key + " " + h.Desc
		if active != "" && containsKey(b.Keys(), active) {
			parts = append(parts, StyleHighlight.Render("[ "+label+" ]"))
		} else {
			parts = append(parts, dim.Render(label))
		}
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, dim.Render(" • ")))
}

func containsKey(keys []string, k string) bool {
	for _, s := range keys {
		if s == k {
			return true
		}
	}
	return false
}

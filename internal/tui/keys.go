package tui

import "github.com/charmbracelet/bubbles/key"

type gridKeys struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Get   key.Binding
	All   key.Binding
	Open  key.Binding
	Quit  key.Binding
}

func newGridKeys() gridKeys {
	return gridKeys{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Get:   key.NewBinding(key.WithKeys("enter", "g"), key.WithHelp("enter/g", "download")),
		All:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "download all")),
		Open:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

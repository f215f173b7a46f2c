package tui

import "github.com/charmbracelet/lipgloss"

// Color palette matching the fatih/color output of the CLI.
var (
	ColorGreen  = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}
	ColorCyan   = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}
	ColorWhite  = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}
	ColorGray   = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}
	ColorRed    = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	ColorOrange = lipgloss.Color("#fb6820")
	ColorDim    = lipgloss.Color("240")
)

var (
	StyleNormal    = lipgloss.NewStyle().Foreground(ColorWhite)
	StyleHighlight = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleReady     = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleTag       = lipgloss.NewStyle().Foreground(ColorCyan)
	StyleHelp      = lipgloss.NewStyle().Foreground(ColorGray)
	StyleError     = lipgloss.NewStyle().Foreground(ColorRed)
	StyleRating    = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleHeader    = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)

	// StyleBorder frames the whole screen.
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)
)

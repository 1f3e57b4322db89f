package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(colorWhite)
	hintStyle  = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorRed)

	modeNormalStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	modeMiniStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	flagStyle       = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// Package tui implements the live status monitor for a running host.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is how often the monitor polls the host.
const DefaultInterval = time.Second

// Run launches the monitor against client and blocks until the user quits.
func Run(client Client, interval time.Duration) error {
	p := tea.NewProgram(NewModel(client, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the transport console
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the transport console and blocks until it exits
func Run(controls Controls) error {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ystepanoff/ookcomm/monitor"
)

// Run connects to the hub at url and shows the monitor until the operator quits.
func Run(url string) error {
	client, err := monitor.Dial(url)
	if err != nil {
		return err
	}
	defer client.Close()

	p := tea.NewProgram(NewModel(client, url), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#3b82f6")
	alertColor   = lipgloss.Color("#ef4444")
	okColor      = lipgloss.Color("#10b981")
	mutedColor   = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(alertColor).
			Padding(0, 1)

	idleStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	unreadStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(alertColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ookcomm monitor  " + m.addr))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(m.renderHistory()))
	b.WriteString("\n")

	if m.prompting {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("s stop alert • m toggle sound • t test • : command • q quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	var state string
	if m.active {
		state = alertStyle.Render("ALERT")
	} else {
		state = idleStyle.Render("idle")
	}

	sound := "sound on"
	if !m.sound {
		sound = "muted"
	}

	line := fmt.Sprintf("%s  %s  received %d  unread %d  unrecognised %d",
		state, mutedStyle.Render(sound), m.stats.Received, m.stats.Unread, m.stats.Unrecognized)
	if m.lastMessage != "" {
		line += "\nlast: " + m.lastMessage
	}
	return line
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("no events yet")
	}

	rows := m.height - 10
	if rows < 5 {
		rows = 5
	}
	start := 0
	if len(m.history) > rows {
		start = len(m.history) - rows
	}

	lines := make([]string, 0, len(m.history)-start)
	for _, e := range m.history[start:] {
		if e.Unread {
			lines = append(lines, unreadStyle.Render("* "+e.String()))
		} else {
			lines = append(lines, "  "+e.String())
		}
	}
	return strings.Join(lines, "\n")
}

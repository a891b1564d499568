// Package ui is the terminal monitor for a networked receiver.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ystepanoff/ookcomm/journal"
	"github.com/ystepanoff/ookcomm/monitor"
)

// historySize bounds the event log kept on screen.
const historySize = 50

// Conn is the hub connection the model drives.
type Conn interface {
	Send(line string) error
	Messages() <-chan monitor.Message
}

// KeyMap defines the monitor shortcuts
type KeyMap struct {
	Stop    key.Binding
	Mute    key.Binding
	Test    key.Binding
	Command key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

var DefaultKeyMap = KeyMap{
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop alert"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "toggle sound"),
	),
	Test: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "test alert"),
	),
	Command: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "command"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Entry is one line of the on-screen event log.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
	Code    string
	Unread  bool
}

type (
	hubMsg          monitor.Message
	disconnectedMsg struct{}
	sentMsg         string
	errMsg          struct{ err error }
)

// Model represents the monitor state
type Model struct {
	conn Conn
	addr string

	width  int
	height int

	active      bool
	sound       bool
	lastMessage string
	stats       journal.Stats
	history     []Entry

	input     textinput.Model
	prompting bool

	connected bool
	status    string
	err       error
	quitting  bool
}

func NewModel(conn Conn, addr string) Model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "status, help, testsound, clear..."
	ti.CharLimit = 64

	return Model{
		conn:      conn,
		addr:      addr,
		sound:     true,
		input:     ti,
		connected: true,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForMessage(m.conn)
}

func waitForMessage(conn Conn) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-conn.Messages()
		if !ok {
			return disconnectedMsg{}
		}
		return hubMsg(msg)
	}
}

func send(conn Conn, line string) tea.Cmd {
	return func() tea.Msg {
		if err := conn.Send(line); err != nil {
			return errMsg{err}
		}
		return sentMsg(line)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case hubMsg:
		m.apply(monitor.Message(msg))
		return m, waitForMessage(m.conn)

	case disconnectedMsg:
		m.connected = false
		m.status = "disconnected from " + m.addr
		return m, nil

	case sentMsg:
		m.err = nil
		m.status = "sent " + string(msg)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Quit):
		m.quitting = true
		return m, tea.Quit
	case !m.connected:
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Stop):
		return m, send(m.conn, "stopalert")
	case key.Matches(msg, DefaultKeyMap.Mute):
		if m.sound {
			return m, send(m.conn, "soundoff")
		}
		return m, send(m.conn, "soundon")
	case key.Matches(msg, DefaultKeyMap.Test):
		return m, send(m.conn, "test")
	case key.Matches(msg, DefaultKeyMap.Command):
		m.prompting = true
		m.input.Reset()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Cancel):
		m.prompting = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.prompting = false
		m.input.Blur()
		m.input.Reset()
		if line == "" || !m.connected {
			return m, nil
		}
		return m, send(m.conn, line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) apply(msg monitor.Message) {
	switch msg.Kind {
	case monitor.KindStats:
		if msg.Stats != nil {
			m.stats = *msg.Stats
		}
		return
	case monitor.KindStatus:
		m.active = msg.Active
		m.sound = msg.Sound
		m.lastMessage = msg.Message
		return
	case "message":
		m.lastMessage = msg.Message
	case "alert-stopped":
		for i := range m.history {
			m.history[i].Unread = false
		}
	case "frame":
		return
	}
	m.active = msg.Active
	m.sound = msg.Sound

	at := msg.Time
	if at.IsZero() {
		at = time.Now()
	}
	m.history = append(m.history, Entry{
		Time:    at,
		Kind:    msg.Kind,
		Message: msg.Message,
		Code:    msg.Code,
		Unread:  msg.Kind == "message",
	})
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

func (m Model) Active() bool         { return m.active }
func (m Model) Sound() bool          { return m.sound }
func (m Model) LastMessage() string  { return m.lastMessage }
func (m Model) Stats() journal.Stats { return m.stats }
func (m Model) History() []Entry     { return m.history }
func (m Model) Quitting() bool       { return m.quitting }

func (e Entry) String() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s  %-15s %q", e.Time.Format("15:04:05"), e.Kind, e.Message)
	case e.Code != "":
		return fmt.Sprintf("%s  %-15s %s", e.Time.Format("15:04:05"), e.Kind, e.Code)
	default:
		return fmt.Sprintf("%s  %s", e.Time.Format("15:04:05"), e.Kind)
	}
}

package command

import (
	"fmt"
	"io"

	"github.com/ystepanoff/ookcomm/alert"
	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

const (
	// NoAlertActive is the stopalert reply when there is nothing to stop.
	NoAlertActive = "no alert active"
	// TestMessage is the message raised by the test command.
	TestMessage = "Test alert message"

	clearScreen = "\033[2J\033[H"
)

// Alerter is the alert surface the receiver console drives.
type Alerter interface {
	Complete(message string)
	Stop() bool
	SetSound(enabled bool)
	PlaySiren() bool
	State() alert.State
}

// Diagnostics exposes the reassembly session for status.
type Diagnostics interface {
	Snapshot() transport.Snapshot
}

// Dispatcher executes receiver console lines.
type Dispatcher struct {
	out   io.Writer
	alert Alerter
	diag  Diagnostics
}

// NewDispatcher writes replies to out. diag may be nil.
func NewDispatcher(out io.Writer, a Alerter, diag Diagnostics) *Dispatcher {
	return &Dispatcher{out: out, alert: a, diag: diag}
}

// Execute runs one line. changed reports whether the alert or sound state moved.
func (d *Dispatcher) Execute(line string) (cmd Command, changed bool) {
	cmd, norm := Parse(line)
	if cmd == None {
		return cmd, false
	}
	logger.Debug("[Console] Command %q\r\n", norm)

	switch cmd {
	case StopAlert:
		last := d.alert.State().LastMessage
		if !d.alert.Stop() {
			d.printf("stopalert: %s\r\n", NoAlertActive)
			return cmd, false
		}
		d.printf("Alert stopped, LED and sound off\r\n")
		d.printf("Message read: %q\r\n", last)
		return cmd, true

	case SoundOn:
		d.alert.SetSound(true)
		d.printf("Sound enabled\r\n")
		return cmd, true

	case SoundOff:
		d.alert.SetSound(false)
		d.printf("Sound disabled, the LED keeps blinking during alerts\r\n")
		return cmd, true

	case Status:
		d.status()

	case Help:
		d.help()

	case Test:
		d.printf("Simulating a complete alert\r\n")
		d.alert.Complete(TestMessage)
		if d.alert.State().SoundEnabled {
			d.printf("Test alert raised with sound\r\n")
		} else {
			d.printf("Test alert raised (silent)\r\n")
		}
		d.printf("Type 'stopalert' to stop it\r\n")
		return cmd, true

	case TestSound:
		if !d.alert.PlaySiren() {
			d.printf("Sound disabled, type 'soundon' to enable it\r\n")
			break
		}
		d.printf("Siren test finished\r\n")

	case Clear:
		d.printf("%sTerminal cleared\r\n", clearScreen)

	default:
		d.printf("Unknown command: '%s'\r\n", norm)
		d.printf("Type 'help' for the list of commands\r\n")
	}
	return cmd, false
}

func (d *Dispatcher) status() {
	st := d.alert.State()
	d.printf("=== STATUS ===\r\n")
	d.printf("Alert active: %s\r\n", yesNo(st.Active))
	d.printf("Sound: %s\r\n", onOff(st.SoundEnabled))
	d.printf("Last message: %q\r\n", st.LastMessage)
	if st.Active {
		d.printf("LED: blinking\r\n")
	} else {
		d.printf("LED: off\r\n")
	}
	if d.diag != nil {
		snap := d.diag.Snapshot()
		d.printf("Reassembly: %s, buffer %q (%d/%d)\r\n", snap.State, snap.Buffer, len(snap.Buffer), snap.Expected)
		d.printf("Frames: %d, completed: %d, timeouts: %d, out of sequence: %d, aborted: %d, dropped bytes: %d\r\n",
			snap.Stats.Frames, snap.Stats.Completed, snap.Stats.Timeouts,
			snap.Stats.OutOfSequence, snap.Stats.Aborted, snap.Stats.DroppedBytes)
	}
	d.printf("==============\r\n")
}

func (d *Dispatcher) help() {
	d.printf("=== COMMANDS ===\r\n")
	d.printf("stopalert  - stop the LED and sound alert\r\n")
	d.printf("soundon    - enable alert sound\r\n")
	d.printf("soundoff   - disable alert sound\r\n")
	d.printf("status     - show system state\r\n")
	d.printf("test       - simulate a complete alert\r\n")
	d.printf("testsound  - play the alert siren only\r\n")
	d.printf("clear      - clear the terminal\r\n")
	d.printf("help       - show this help\r\n")
	d.printf("Commands are case insensitive. Sound: %s\r\n", onOff(d.alert.State().SoundEnabled))
}

func (d *Dispatcher) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Sender is what the sender console drives.
type Sender interface {
	SetMessage(msg string)
	Message() string
	Present(uid credential.UID) bool
}

// SenderDispatcher executes sender console lines.
type SenderDispatcher struct {
	out    io.Writer
	sender Sender
	limit  int
}

// NewSenderDispatcher truncates new messages to limit bytes; zero means
// proto.DefaultMessageLimit.
func NewSenderDispatcher(out io.Writer, s Sender, limit int) *SenderDispatcher {
	if limit <= 0 {
		limit = proto.DefaultMessageLimit
	}
	if limit > proto.MaxMessageLength {
		limit = proto.MaxMessageLength
	}
	return &SenderDispatcher{out: out, sender: s, limit: limit}
}

func (d *SenderDispatcher) Execute(line string) SenderCommand {
	cmd, arg := ParseSender(line)
	switch cmd {
	case SetMessage:
		if arg == "" {
			return SenderIgnored
		}
		msg, truncated := Truncate(arg, d.limit)
		if truncated {
			fmt.Fprintf(d.out, "INFO: Message limited to %d characters\r\n", d.limit)
		}
		d.sender.SetMessage(msg)
		fmt.Fprintf(d.out, "INFO: New message set: '%s'\r\n", msg)
		fmt.Fprintf(d.out, "INFO: Present an authorised card to send it\r\n")

	case PresentCard:
		uid, err := credential.ParseUID(arg)
		if err != nil {
			fmt.Fprintf(d.out, "ERROR: %v\r\n", err)
			return SenderIgnored
		}
		d.sender.Present(uid)
	}
	return cmd
}

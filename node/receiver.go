package node

import (
	"context"
	"io"
	"time"

	"github.com/ystepanoff/ookcomm/alert"
	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/timing"
	"github.com/ystepanoff/ookcomm/transport"
)

const DefaultPollInterval = 2 * time.Millisecond

type ReceiverConfig struct {
	Radio transport.RadioDriver
	Tone  transport.ToneDriver
	LED   transport.LEDDriver
	Clock timing.Clock
	// Console receives command replies; nil discards them.
	Console io.Writer
	// Lines is the command source; nil means no console.
	Lines   *command.Queue
	Options transport.Options
	// Muted starts the receiver with alert sound disabled.
	Muted        bool
	PollInterval time.Duration
}

// Receiver is the receiving node: radio intake, reassembly, alert and console.
type Receiver struct {
	clock     timing.Clock
	radio     *transport.Receiver
	alert     *alert.Scheduler
	console   *command.Dispatcher
	lines     *command.Queue
	interval  time.Duration
	listeners listeners
}

func NewReceiver(cfg ReceiverConfig) *Receiver {
	if cfg.Clock == nil {
		cfg.Clock = timing.NewSystemClock()
	}
	if cfg.Console == nil {
		cfg.Console = io.Discard
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	radio := transport.NewReceiverWithDriver(cfg.Radio, cfg.Options)
	sched := alert.NewScheduler(cfg.Tone, cfg.LED, cfg.Clock)
	if cfg.Muted {
		sched.SetSound(false)
	}

	return &Receiver{
		clock:    cfg.Clock,
		radio:    radio,
		alert:    sched,
		console:  command.NewDispatcher(cfg.Console, sched, radio.Reassembler()),
		lines:    cfg.Lines,
		interval: cfg.PollInterval,
	}
}

func (r *Receiver) AddListener(l Listener) { r.listeners = append(r.listeners, l) }

func (r *Receiver) Alert() *alert.Scheduler        { return r.alert }
func (r *Receiver) Transport() *transport.Receiver { return r.radio }

// Initialise configures the radio and plays the startup beeps.
func (r *Receiver) Initialise() error {
	if err := r.radio.Initialise(); err != nil {
		return err
	}
	logger.Info("[Receiver] Ready, waiting for messages\r\n")
	r.alert.Startup()
	return nil
}

// Execute runs one console line immediately.
func (r *Receiver) Execute(line string) {
	cmd, changed := r.console.Execute(line)
	if !changed {
		return
	}
	st := r.alert.State()
	ev := Event{Active: st.Active, Sound: st.SoundEnabled, Message: st.LastMessage}
	switch cmd {
	case command.StopAlert:
		ev.Kind = EventAlertStopped
	case command.SoundOn, command.SoundOff:
		ev.Kind = EventSound
	case command.Test:
		ev.Kind = EventMessage
	default:
		return
	}
	r.listeners.emit(ev)
}

// Tick runs one loop iteration: alert cadence, reassembly timeout, one console
// line and one radio capture. Only a completion blocks, for the siren.
func (r *Receiver) Tick() {
	now := r.clock.Millis()
	r.alert.Tick(now)

	if r.radio.CheckTimeout(now) {
		r.emit(EventTimeout, transport.Result{})
	}

	if r.lines != nil {
		if line, ok := r.lines.Poll(); ok {
			r.Execute(line)
		}
	}

	res, ok := r.radio.Poll(r.clock.Millis())
	if !ok {
		return
	}
	switch res.Outcome {
	case transport.OutcomeCompleted:
		r.alert.Complete(res.Message)
		r.emit(EventMessage, res)
	case transport.OutcomeOutOfSequence:
		r.emit(EventOutOfSequence, res)
	case transport.OutcomeAborted:
		r.emit(EventAborted, res)
	default:
		r.emit(EventFrame, res)
	}
}

func (r *Receiver) emit(kind EventKind, res transport.Result) {
	if len(r.listeners) == 0 {
		return
	}
	st := r.alert.State()
	r.listeners.emit(Event{
		Kind:    kind,
		Message: res.Message,
		Code:    res.Code,
		Active:  st.Active,
		Sound:   st.SoundEnabled,
	})
}

// Run ticks until ctx is done.
func (r *Receiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

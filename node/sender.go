package node

import (
	"context"
	"io"
	"time"

	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
	"github.com/ystepanoff/ookcomm/transport"
)

const (
	DefaultMessage = "HELLO"
	// IndicatorHold is how long the green or red LED stays lit after a card.
	IndicatorHold = 2000 // ms
	// PresentCooldown follows the hold; presentations are ignored until it ends.
	PresentCooldown = 500 // ms
)

type SenderConfig struct {
	Radio   transport.RadioDriver
	Checker credential.Checker
	Green   transport.LEDDriver
	Red     transport.LEDDriver
	Clock   timing.Clock
	Console io.Writer
	Lines   *command.Queue
	// Message is sent until a MSG: line replaces it.
	Message      string
	MessageLimit int
	PollInterval time.Duration
}

// Sender is the sending node: a credential gate in front of the encoder.
type Sender struct {
	clock    timing.Clock
	tx       *transport.Transmitter
	checker  credential.Checker
	green    transport.LEDDriver
	red      transport.LEDDriver
	console  *command.SenderDispatcher
	lines    *command.Queue
	interval time.Duration

	message   string
	lit       bool
	busy      bool
	presented timing.Millis
	listeners listeners
}

func NewSender(cfg SenderConfig) *Sender {
	if cfg.Clock == nil {
		cfg.Clock = timing.NewSystemClock()
	}
	if cfg.Console == nil {
		cfg.Console = io.Discard
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	s := &Sender{
		clock:    cfg.Clock,
		tx:       transport.NewTransmitterWithDriver(cfg.Radio),
		checker:  cfg.Checker,
		green:    cfg.Green,
		red:      cfg.Red,
		lines:    cfg.Lines,
		interval: cfg.PollInterval,
		message:  cfg.Message,
	}
	s.console = command.NewSenderDispatcher(cfg.Console, s, cfg.MessageLimit)
	if len(s.message) > proto.MaxMessageLength {
		s.message = s.message[:proto.MaxMessageLength]
	}
	return s
}

func (s *Sender) AddListener(l Listener) { s.listeners = append(s.listeners, l) }

func (s *Sender) Transmitter() *transport.Transmitter { return s.tx }

func (s *Sender) Initialise() error {
	if err := s.tx.Initialise(); err != nil {
		return err
	}
	s.setIndicator(false, false)
	logger.Info("[Sender] Ready, current message %q\r\n", s.message)
	return nil
}

// SetMessage replaces the outgoing message from the next accepted card on.
func (s *Sender) SetMessage(msg string) {
	s.message = msg
	logger.Info("[Sender] Message set to %q\r\n", msg)
}

func (s *Sender) Message() string { return s.message }

// HandleLine runs one console line immediately.
func (s *Sender) HandleLine(line string) command.SenderCommand {
	return s.console.Execute(line)
}

// Present checks uid once and, when it is authorised, transmits the current
// message. It reports whether a transmission happened.
func (s *Sender) Present(uid credential.UID) bool {
	now := s.clock.Millis()
	if s.busy && timing.Since(now, s.presented) < IndicatorHold+PresentCooldown {
		logger.Debug("[Sender] Card %v ignored, previous presentation still held\r\n", uid)
		return false
	}

	logger.Debug("[Sender] Card detected, UID %v\r\n", uid)
	allowed := s.checker != nil && s.checker.Allowed(uid)
	s.setIndicator(allowed, !allowed)

	sent := false
	if allowed {
		msg := s.message
		logger.Info("[Sender] UID authorised, sending %q\r\n", msg)
		if err := s.tx.SendMessage(msg); err != nil {
			logger.Error("[Sender] Transmission failed: %v\r\n", err)
		} else {
			sent = true
			s.listeners.emit(Event{Kind: EventSent, Message: msg})
		}
	} else {
		logger.Info("[Sender] UID %v not authorised, nothing sent\r\n", uid)
		s.listeners.emit(Event{Kind: EventRefused, Message: uid.String()})
	}

	s.busy = true
	s.presented = s.clock.Millis()
	return sent
}

// Tick clears the indicator once its hold expires and drains one console line.
func (s *Sender) Tick() {
	if s.busy {
		elapsed := timing.Since(s.clock.Millis(), s.presented)
		if s.lit && elapsed >= IndicatorHold {
			s.setIndicator(false, false)
		}
		if elapsed >= IndicatorHold+PresentCooldown {
			s.busy = false
		}
	}

	if s.lines != nil {
		if line, ok := s.lines.Poll(); ok {
			s.console.Execute(line)
		}
	}
}

// Run ticks until ctx is done.
func (s *Sender) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *Sender) setIndicator(green, red bool) {
	s.lit = green || red
	if s.green != nil {
		s.green.SetLED(green)
	}
	if s.red != nil {
		s.red.SetLED(red)
	}
}

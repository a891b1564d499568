// Package alert drives the receiver's persistent alert: a blinking LED, a
// warbling tone and the one blocking siren played when a message completes.
package alert

import (
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/timing"
	"github.com/ystepanoff/ookcomm/transport"
)

// State is a copy of the scheduler for status reports.
type State struct {
	Active       bool
	SoundEnabled bool
	LastMessage  string
	LEDOn        bool
	ToneIndex    int
	Completions  uint32
}

// Scheduler owns the alert state. It is not safe for concurrent use; the node
// loop is its only caller.
type Scheduler struct {
	tone  transport.ToneDriver
	led   transport.LEDDriver
	clock timing.Clock
	sleep timing.Sleeper

	active       bool
	lastMessage  string
	soundEnabled bool
	completions  uint32

	ledOn     bool
	toneOn    bool
	toneIndex int
	blink     timing.Cadence
	warble    timing.Cadence
}

// NewScheduler returns an inactive scheduler with sound enabled.
func NewScheduler(tone transport.ToneDriver, led transport.LEDDriver, clock timing.Clock) *Scheduler {
	return &Scheduler{
		tone:         tone,
		led:          led,
		clock:        clock,
		sleep:        timing.Sleep,
		soundEnabled: true,
		blink:        timing.NewCadence(BlinkInterval),
		warble:       timing.NewCadence(ToneStepInterval),
	}
}

// SetSleeper replaces the delay used by the blocking sounds.
func (s *Scheduler) SetSleeper(sl timing.Sleeper) { s.sleep = sl }

func (s *Scheduler) State() State {
	return State{
		Active:       s.active,
		SoundEnabled: s.soundEnabled,
		LastMessage:  s.lastMessage,
		LEDOn:        s.ledOn,
		ToneIndex:    s.toneIndex,
		Completions:  s.completions,
	}
}

func (s *Scheduler) Active() bool       { return s.active }
func (s *Scheduler) SoundEnabled() bool { return s.soundEnabled }
func (s *Scheduler) LastMessage() string {
	return s.lastMessage
}

// Complete raises the alert for message. A completion while already active
// replaces the message and restarts the tone cycle. With sound enabled it
// blocks for up to SirenDuration while the siren plays.
func (s *Scheduler) Complete(message string) {
	s.active = true
	s.lastMessage = message
	s.completions++
	logger.Info("[Alert] Alert raised: %q\r\n", message)

	s.PlaySiren()
	s.toneIndex = 0
	s.warble.Reset(s.clock.Millis())
}

// Tick advances LED and tone cadence. It never blocks.
func (s *Scheduler) Tick(now timing.Millis) {
	if !s.active {
		s.setLED(false)
		if s.soundEnabled {
			s.stopTone()
		}
		return
	}

	if s.blink.Due(now) {
		s.setLED(!s.ledOn)
	}
	if s.soundEnabled && s.warble.Due(now) {
		s.setTone(Warble[s.toneIndex])
		s.toneIndex = (s.toneIndex + 1) % len(Warble)
	}
}

// Stop acknowledges the alert. It reports false, changing nothing, when no
// alert is active.
func (s *Scheduler) Stop() bool {
	if !s.active {
		return false
	}
	s.active = false
	s.setLED(false)
	s.stopTone()
	logger.Info("[Alert] Alert stopped, message was %q\r\n", s.lastMessage)
	s.confirm()
	return true
}

// SetSound mutes or unmutes the buzzer. The alert and its blink are untouched.
func (s *Scheduler) SetSound(enabled bool) {
	s.soundEnabled = enabled
	if !enabled {
		s.stopTone()
		logger.Info("[Alert] Sound disabled\r\n")
		return
	}
	logger.Info("[Alert] Sound enabled\r\n")
	s.confirm()
}

// Startup plays three short beeps when sound is enabled.
func (s *Scheduler) Startup() {
	if !s.soundEnabled {
		return
	}
	for i := 0; i < StartupBeeps; i++ {
		s.setTone(StartupFrequency)
		s.sleep(StartupBeep)
		s.stopTone()
		s.sleep(StartupBeep)
	}
}

// PlaySiren runs the completion siren without touching the alert state. It
// reports false when sound is disabled.
func (s *Scheduler) PlaySiren() bool {
	if !s.soundEnabled {
		return false
	}
	s.stopTone()
	sweep := SirenSweep()
	for i := 0; i < SirenRepeats; i++ {
		for _, hz := range sweep {
			s.setTone(hz)
			s.sleep(SirenDwell)
		}
	}
	return true
}

func (s *Scheduler) confirm() {
	if !s.soundEnabled {
		return
	}
	s.setTone(ConfirmFrequency)
	s.sleep(ConfirmDuration)
	s.stopTone()
}

func (s *Scheduler) setLED(on bool) {
	if s.ledOn == on {
		return
	}
	s.ledOn = on
	s.led.SetLED(on)
}

func (s *Scheduler) setTone(hz uint32) {
	s.toneOn = true
	s.tone.SetTone(hz)
}

func (s *Scheduler) stopTone() {
	if !s.toneOn {
		return
	}
	s.toneOn = false
	s.tone.StopTone()
}

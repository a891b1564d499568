package transport

import (
	"fmt"

	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
)

// Transmitter streams messages as START, DATA... and END frames. It is
// fire-and-forget: nothing is acknowledged and nothing is retransmitted.
type Transmitter struct {
	driver RadioDriver
	sleep  timing.Sleeper
	sent   uint32
}

func NewTransmitterWithDriver(d RadioDriver) *Transmitter {
	return &Transmitter{
		driver: d,
		sleep:  timing.Sleep,
	}
}

func (t *Transmitter) Initialise() error { return t.driver.Configure() }

// SetSleeper replaces the delay used between frames.
func (t *Transmitter) SetSleeper(s timing.Sleeper) { t.sleep = s }

// MessagesSent counts completed SendMessage calls.
func (t *Transmitter) MessagesSent() uint32 { return t.sent }

// SendFrame hands one logical frame to the driver exactly once.
func (t *Transmitter) SendFrame(code proto.Code) error {
	if err := t.driver.Send(uint32(code), proto.FrameBits); err != nil {
		return fmt.Errorf("send frame %v: %w", code, err)
	}
	return nil
}

// SendMessage blocks for the settle delay plus one inter-frame delay per DATA
// frame (100ms + 50ms per 3 bytes).
func (t *Transmitter) SendMessage(msg string) error {
	codes, err := proto.SplitMessage([]byte(msg))
	if err != nil {
		return err
	}

	logger.Debug("[Transmitter] Sending %q (%d bytes, %d packets)\r\n", msg, len(msg), len(codes)-2)

	if err := t.SendFrame(codes[0]); err != nil {
		return err
	}
	logger.Debug("[Transmitter] Start code %v\r\n", codes[0])
	t.sleep(proto.SettleDelay)

	data := codes[1 : len(codes)-1]
	for p, code := range data {
		if err := t.SendFrame(code); err != nil {
			return err
		}
		logger.Debug("[Transmitter] Packet %d/%d code %v\r\n", p+1, len(data), code)
		t.sleep(proto.InterFrameDelay)
	}

	end := codes[len(codes)-1]
	if err := t.SendFrame(end); err != nil {
		return err
	}
	logger.Debug("[Transmitter] End code %v\r\n", end)

	t.sent++
	return nil
}

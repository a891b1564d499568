//go:build tinygo || baremetal

package ook

import (
	"machine"
	"runtime/interrupt"
	"time"

	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

// Driver provides a RadioDriver backed by a 433MHz OOK module pair. Either pin
// may be machine.NoPin for a one-way node.
type Driver struct {
	txPin  machine.Pin
	rxPin  machine.Pin
	repeat int

	decoder   Decoder
	lastEdge  int64
	slot      transport.Capture
	available bool
}

func New(txPin, rxPin machine.Pin) *Driver {
	return &Driver{txPin: txPin, rxPin: rxPin, repeat: proto.RepeatTransmit}
}

func (d *Driver) Configure() error {
	if d.txPin != machine.NoPin {
		d.txPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		d.txPin.Low()
	}
	if d.rxPin != machine.NoPin {
		d.rxPin.Configure(machine.PinConfig{Mode: machine.PinInput})
		d.lastEdge = time.Now().UnixMicro()
		return d.rxPin.SetInterrupt(machine.PinToggle, d.handleEdge)
	}
	return nil
}

// handleEdge runs in interrupt context.
func (d *Driver) handleEdge(machine.Pin) {
	now := time.Now().UnixMicro()
	elapsed := uint32(now - d.lastEdge)
	d.lastEdge = now

	if c, ok := d.decoder.Edge(elapsed); ok {
		d.slot = c
		d.available = true
	}
}

// Send bit-bangs the frame repeat times; it blocks for about 56ms per copy.
func (d *Driver) Send(code uint32, bitLength int) error {
	if d.txPin == machine.NoPin {
		return proto.ErrNotConnected
	}
	pulses := Pulses(code, bitLength)
	for i := 0; i < d.repeat; i++ {
		for _, p := range pulses {
			d.txPin.Set(p.High)
			time.Sleep(time.Duration(p.Micros) * time.Microsecond)
		}
	}
	d.txPin.Low()
	return nil
}

func (d *Driver) Poll() (transport.Capture, bool) {
	state := interrupt.Disable()
	c, ok := d.slot, d.available
	interrupt.Restore(state)
	return c, ok
}

func (d *Driver) MarkConsumed() {
	state := interrupt.Disable()
	d.available = false
	interrupt.Restore(state)
}

// Package ook drives a 433MHz on-off-keyed transmitter and receiver pair with
// RC-Switch protocol 1 timing, plus the buzzer, LED and serial console of the
// nodes. The pulse codec in this file is target independent.
package ook

import "github.com/ystepanoff/ookcomm/transport"

// RC-Switch protocol 1: 350us base pulse, sync 1:31, zero 1:3, one 3:1.
const (
	PulseLength = 350 // us

	syncHigh, syncLow = 1, 31
	zeroHigh, zeroLow = 1, 3
	oneHigh, oneLow   = 3, 1

	// Any gap longer than this ends a transmission.
	separationLimit = 4300 // us
	// Percentage a pulse may deviate from its nominal length.
	receiveTolerance = 60

	maxChanges = 67
)

// Pulse is one level held for Micros microseconds.
type Pulse struct {
	High   bool
	Micros uint32
}

// Pulses returns one transmission of the low bitLength bits of code, most
// significant first, followed by the sync pulse.
func Pulses(code uint32, bitLength int) []Pulse {
	out := make([]Pulse, 0, 2*bitLength+2)
	for i := bitLength - 1; i >= 0; i-- {
		if code&(1<<uint(i)) != 0 {
			out = append(out, Pulse{true, oneHigh * PulseLength}, Pulse{false, oneLow * PulseLength})
		} else {
			out = append(out, Pulse{true, zeroHigh * PulseLength}, Pulse{false, zeroLow * PulseLength})
		}
	}
	return append(out, Pulse{true, syncHigh * PulseLength}, Pulse{false, syncLow * PulseLength})
}

// TransmissionMicros is the on-air time of one copy of a frame.
func TransmissionMicros(bitLength int) uint32 {
	return uint32(bitLength*(zeroHigh+zeroLow)+syncHigh+syncLow) * PulseLength
}

// Decoder rebuilds codes from the durations between level changes. It does not
// allocate, so Edge may run inside a pin interrupt.
type Decoder struct {
	timings [maxChanges]uint32
	changes int
}

// Edge records the time since the previous level change. It returns a capture
// when the edge closes a well-formed transmission.
func (d *Decoder) Edge(micros uint32) (transport.Capture, bool) {
	if micros > separationLimit {
		c, ok := d.decode(micros)
		d.changes = 0
		return c, ok
	}
	if d.changes >= maxChanges {
		d.changes = 0
		return transport.Capture{}, false
	}
	d.timings[d.changes] = micros
	d.changes++
	return transport.Capture{}, false
}

// decode interprets the buffered pulses, the sync gap giving the base length.
// The last buffered pulse is the sync high and carries no data.
func (d *Decoder) decode(gap uint32) (transport.Capture, bool) {
	n := d.changes - 1
	if n < 2 || n%2 != 0 {
		return transport.Capture{}, false
	}

	delay := gap / syncLow
	tolerance := delay * receiveTolerance / 100

	var code uint32
	for i := 0; i < n; i += 2 {
		high, low := d.timings[i], d.timings[i+1]
		code <<= 1
		switch {
		case near(high, delay*zeroHigh, tolerance) && near(low, delay*zeroLow, tolerance):
		case near(high, delay*oneHigh, tolerance) && near(low, delay*oneLow, tolerance):
			code |= 1
		default:
			return transport.Capture{}, false
		}
	}
	return transport.Capture{Code: code, BitLength: n / 2}, true
}

func near(v, want, tolerance uint32) bool {
	if v > want {
		return v-want <= tolerance
	}
	return want-v <= tolerance
}

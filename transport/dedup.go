package transport

import (
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
)

// Deduplicator suppresses the transport's own burst repeats. It remembers only
// the immediately preceding accepted frame.
type Deduplicator struct {
	window   timing.Millis
	lastCode proto.Code
	lastTime timing.Millis
	primed   bool
}

func NewDeduplicator(window timing.Millis) *Deduplicator {
	return &Deduplicator{window: window}
}

// Accept reports whether code should reach the reassembler. A suppressed
// repeat leaves the remembered timestamp untouched, so the window is measured
// from the first copy.
func (d *Deduplicator) Accept(code proto.Code, now timing.Millis) bool {
	if d.primed && code == d.lastCode && timing.Since(now, d.lastTime) < d.window {
		return false
	}
	d.lastCode = code
	d.lastTime = now
	d.primed = true
	return true
}

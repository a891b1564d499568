package transport

import (
	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
)

type State uint8

const (
	Idle State = iota
	Receiving
)

func (s State) String() string {
	if s == Receiving {
		return "receiving"
	}
	return "idle"
}

// Outcome tells the caller what a frame did to the session.
type Outcome uint8

const (
	OutcomeIgnored Outcome = iota
	OutcomeStarted
	OutcomeData
	OutcomeCompleted
	OutcomeOutOfSequence
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeData:
		return "data"
	case OutcomeCompleted:
		return "completed"
	case OutcomeOutOfSequence:
		return "out-of-sequence"
	case OutcomeAborted:
		return "aborted"
	default:
		return "ignored"
	}
}

type Result struct {
	Code    proto.Code
	Outcome Outcome
	// Message is set when Outcome is OutcomeCompleted.
	Message string
}

type Options struct {
	DedupWindow timing.Millis
	Timeout     timing.Millis
	// StrictSequence aborts the session when a DATA index is not the next one
	// expected. Off by default: gaps and reordering then go undetected.
	StrictSequence bool
}

func DefaultOptions() Options {
	return Options{
		DedupWindow: proto.DedupWindowMs,
		Timeout:     proto.ReassemblyTimeoutMs,
	}
}

type Stats struct {
	Frames        uint32
	Completed     uint32
	Timeouts      uint32
	OutOfSequence uint32
	DroppedBytes  uint32
	Aborted       uint32
	Restarted     uint32
}

// Snapshot is a copy of the session for diagnostics.
type Snapshot struct {
	State    State
	Buffer   string
	Expected int
	Stats    Stats
}

// Reassembler turns the deduplicated frame stream into completed messages.
// Only one session exists at a time; it cycles between Idle and Receiving forever.
type Reassembler struct {
	opts      Options
	state     State
	buffer    []byte
	expected  int
	nextIndex int
	lastFrame timing.Millis
	stats     Stats
}

func NewReassembler(opts Options) *Reassembler {
	if opts.Timeout == 0 {
		opts.Timeout = proto.ReassemblyTimeoutMs
	}
	return &Reassembler{
		opts:   opts,
		buffer: make([]byte, 0, proto.MaxMessageLength),
	}
}

func (r *Reassembler) State() State { return r.state }

func (r *Reassembler) Snapshot() Snapshot {
	return Snapshot{
		State:    r.state,
		Buffer:   string(r.buffer),
		Expected: r.expected,
		Stats:    r.stats,
	}
}

// Feed applies one frame at time now.
func (r *Reassembler) Feed(code proto.Code, now timing.Millis) Result {
	r.stats.Frames++
	res := Result{Code: code}

	switch code.Kind() {
	case proto.KindStart:
		if r.state == Receiving {
			r.stats.Restarted++
			logger.Debug("[Reassembler] Start while receiving, dropping %q\r\n", r.buffer)
		}
		r.reset()
		r.expected = int(proto.ExpectedLength(code))
		r.state = Receiving
		r.lastFrame = now
		logger.Debug("[Reassembler] Message start, expected length %d\r\n", r.expected)
		res.Outcome = OutcomeStarted

	case proto.KindEnd:
		if r.state != Receiving {
			r.reset()
			return res
		}
		res.Outcome = OutcomeCompleted
		res.Message = string(r.buffer)
		r.stats.Completed++
		logger.Info("[Reassembler] Message received: %q (%d/%d chars)\r\n", res.Message, len(r.buffer), r.expected)
		r.reset()

	default:
		if r.state != Receiving {
			r.stats.OutOfSequence++
			logger.Debug("[Reassembler] Out of sequence frame %v (byte0=0x%02X)\r\n", code, byte(code>>24))
			res.Outcome = OutcomeOutOfSequence
			return res
		}

		index, payload := proto.UnpackDataFrame(code)
		if r.opts.StrictSequence && int(index) != r.nextIndex {
			r.stats.Aborted++
			logger.Info("[Reassembler] Packet %d out of order (want %d), aborting\r\n", index, r.nextIndex)
			r.reset()
			res.Outcome = OutcomeAborted
			return res
		}
		r.nextIndex = int(index) + 1

		for _, b := range payload {
			r.appendByte(b)
		}
		r.lastFrame = now
		logger.Debug("[Reassembler] Packet %d %v, buffer %q (%d/%d chars)\r\n", int(index)+1, code, r.buffer, len(r.buffer), r.expected)
		res.Outcome = OutcomeData
	}

	return res
}

func (r *Reassembler) appendByte(b byte) {
	if b == 0 {
		return
	}
	if b < proto.MinPrintable || b > proto.MaxPrintable || len(r.buffer) >= r.expected {
		r.stats.DroppedBytes++
		return
	}
	r.buffer = append(r.buffer, b)
}

// CheckTimeout abandons a session that has been silent for longer than the
// timeout. It reports whether a session was dropped.
func (r *Reassembler) CheckTimeout(now timing.Millis) bool {
	if r.state != Receiving || timing.Since(now, r.lastFrame) <= r.opts.Timeout {
		return false
	}
	r.stats.Timeouts++
	logger.Info("[Reassembler] Timeout, discarding %q\r\n", r.buffer)
	r.reset()
	return true
}

// Reset returns to Idle with an empty buffer.
func (r *Reassembler) Reset() { r.reset() }

func (r *Reassembler) reset() {
	r.buffer = r.buffer[:0]
	r.expected = 0
	r.nextIndex = 0
	r.state = Idle
}

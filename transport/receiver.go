package transport

import (
	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
)

// Receiver pulls captures from the radio, filters noise and burst repeats and
// feeds the survivors to the reassembler.
type Receiver struct {
	driver      RadioDriver
	dedup       *Deduplicator
	reassembler *Reassembler

	rejected   uint32
	suppressed uint32
}

func NewReceiverWithDriver(d RadioDriver, opts Options) *Receiver {
	if opts.DedupWindow == 0 {
		opts.DedupWindow = proto.DedupWindowMs
	}
	return &Receiver{
		driver:      d,
		dedup:       NewDeduplicator(opts.DedupWindow),
		reassembler: NewReassembler(opts),
	}
}

func (r *Receiver) Initialise() error { return r.driver.Configure() }

func (r *Receiver) Reassembler() *Reassembler { return r.reassembler }

// Rejected counts captures dropped for a wrong bit length or an all-zero code.
func (r *Receiver) Rejected() uint32 { return r.rejected }

// Suppressed counts burst repeats dropped by the deduplicator.
func (r *Receiver) Suppressed() uint32 { return r.suppressed }

// Poll consumes at most one capture. ok is false when nothing reached the
// reassembler.
func (r *Receiver) Poll(now timing.Millis) (res Result, ok bool) {
	c, available := r.driver.Poll()
	if !available {
		return res, false
	}
	defer r.driver.MarkConsumed()

	if c.BitLength != proto.FrameBits || c.Code == 0 {
		r.rejected++
		logger.Debug("[Receiver] Rejected capture 0x%X (%d bits)\r\n", c.Code, c.BitLength)
		return res, false
	}

	code := proto.Code(c.Code)
	if !r.dedup.Accept(code, now) {
		r.suppressed++
		return res, false
	}

	return r.reassembler.Feed(code, now), true
}

// CheckTimeout runs the reassembly timeout; call it once per loop iteration.
func (r *Receiver) CheckTimeout(now timing.Millis) bool {
	return r.reassembler.CheckTimeout(now)
}

//go:build !tinygo && !baremetal

package stub

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

// Driver implements a mock radio driver for host-side testing. Like the
// hardware decoder it holds a single capture: a frame arriving before the
// previous one is consumed overwrites it.
type Driver struct {
	mu          sync.Mutex
	slot        transport.Capture
	available   bool
	overwritten uint32
	txBuf       ringBuffer

	peer      *Driver
	repeat    int
	repeatGap time.Duration
	loss      float64
	rng       *rand.Rand
	lost      uint32
}

func New() *Driver {
	return &Driver{repeat: proto.RepeatTransmit}
}

// Connect links a's transmitter to b's receiver and b's to a's.
func Connect(a, b *Driver) {
	a.mu.Lock()
	a.peer = b
	a.mu.Unlock()
	b.mu.Lock()
	b.peer = a
	b.mu.Unlock()
}

// ConnectTo links d's transmitter to peer's receiver only.
func (d *Driver) ConnectTo(peer *Driver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peer = peer
}

// SetRepeat sets how many copies of each frame reach the peer and the gap
// between them. RC-Switch takes about 56ms per 32-bit copy.
func (d *Driver) SetRepeat(n int, gap time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 1 {
		n = 1
	}
	d.repeat = n
	d.repeatGap = gap
}

// SetLoss drops each transmitted copy with probability rate.
func (d *Driver) SetLoss(rate float64, seed int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loss = rate
	d.rng = rand.New(rand.NewSource(seed))
}

func (d *Driver) Configure() error { return nil }

func (d *Driver) Send(code uint32, bitLength int) error {
	d.mu.Lock()
	d.txBuf.push(transport.Capture{Code: code, BitLength: bitLength})
	peer, repeat, gap := d.peer, d.repeat, d.repeatGap
	d.mu.Unlock()

	if peer == nil {
		return nil
	}
	for i := 0; i < repeat; i++ {
		if i > 0 && gap > 0 {
			time.Sleep(gap)
		}
		if d.dropped() {
			continue
		}
		peer.InjectRx(code, bitLength)
	}
	return nil
}

func (d *Driver) dropped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rng == nil || d.loss <= 0 {
		return false
	}
	if d.rng.Float64() < d.loss {
		d.lost++
		return true
	}
	return false
}

func (d *Driver) Poll() (transport.Capture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slot, d.available
}

func (d *Driver) MarkConsumed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.available = false
}

// InjectRx places a capture in the slot as if it had just been decoded.
func (d *Driver) InjectRx(code uint32, bitLength int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available {
		d.overwritten++
		logger.Debug("[Stub] Capture 0x%08X overwritten before consumption\r\n", d.slot.Code)
	}
	d.slot = transport.Capture{Code: code, BitLength: bitLength}
	d.available = true
}

func (d *Driver) GetTxLog() []transport.Capture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txBuf.snapshot()
}

// Overwritten counts captures lost because the loop had not consumed them.
func (d *Driver) Overwritten() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overwritten
}

// Lost counts copies dropped by SetLoss.
func (d *Driver) Lost() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

const ringCapacity = 512

type ringBuffer struct {
	data       [ringCapacity]transport.Capture
	head, tail int // head = oldest, tail = next push
	count      int
}

func (rb *ringBuffer) push(c transport.Capture) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = c
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) snapshot() []transport.Capture {
	out := make([]transport.Capture, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		out[c] = rb.data[i]
		i = (i + 1) % ringCapacity
	}
	return out
}

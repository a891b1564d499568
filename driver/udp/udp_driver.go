//go:build !tinygo && !baremetal

// Package udp emulates the 433MHz air link between two host processes with
// UDP datagrams. Loss is real: nothing is acknowledged or retried.
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ystepanoff/ookcomm/logger"
	proto "github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

// DatagramSize is a 4-byte big-endian code followed by the bit length.
const DatagramSize = 5

// DefaultRepeatGap spaces the repeated copies like an RC-Switch burst.
const DefaultRepeatGap = 5 * time.Millisecond

func Encode(code uint32, bitLength int) []byte {
	buf := make([]byte, DatagramSize)
	binary.BigEndian.PutUint32(buf, code)
	buf[4] = byte(bitLength)
	return buf
}

func Decode(buf []byte) (transport.Capture, error) {
	if len(buf) != DatagramSize {
		return transport.Capture{}, fmt.Errorf("%w: datagram of %d bytes", proto.ErrInvalidBitLength, len(buf))
	}
	return transport.Capture{
		Code:      binary.BigEndian.Uint32(buf),
		BitLength: int(buf[4]),
	}, nil
}

type Driver struct {
	listen    string
	target    string
	repeat    int
	repeatGap time.Duration

	mu          sync.Mutex
	conn        *net.UDPConn
	peer        *net.UDPAddr
	slot        transport.Capture
	available   bool
	overwritten uint32
}

// New returns a driver that receives on listen and transmits to target.
// Either may be empty for a one-way node.
func New(listen, target string) *Driver {
	return &Driver{
		listen:    listen,
		target:    target,
		repeat:    proto.RepeatTransmit,
		repeatGap: DefaultRepeatGap,
	}
}

func (d *Driver) SetRepeat(n int, gap time.Duration) {
	if n < 1 {
		n = 1
	}
	d.repeat = n
	d.repeatGap = gap
}

func (d *Driver) Configure() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		return nil
	}

	var laddr *net.UDPAddr
	if d.listen != "" {
		addr, err := net.ResolveUDPAddr("udp", d.listen)
		if err != nil {
			return fmt.Errorf("resolve listen address: %w", err)
		}
		laddr = addr
	}
	if d.target != "" {
		addr, err := net.ResolveUDPAddr("udp", d.target)
		if err != nil {
			return fmt.Errorf("resolve target address: %w", err)
		}
		d.peer = addr
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("listen udp: %w", err)
	}
	d.conn = conn
	logger.Info("[UDP] Air link on %s, transmitting to %s\r\n", conn.LocalAddr(), d.target)

	if d.listen != "" {
		go d.readLoop(conn)
	}
	return nil
}

func (d *Driver) readLoop(conn *net.UDPConn) {
	buf := make([]byte, 64)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Error("[UDP] Read error: %v\r\n", err)
			continue
		}
		c, err := Decode(buf[:n])
		if err != nil {
			logger.Debug("[UDP] Dropping datagram: %v\r\n", err)
			continue
		}
		d.deliver(c)
	}
}

func (d *Driver) deliver(c transport.Capture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available {
		d.overwritten++
	}
	d.slot = c
	d.available = true
}

func (d *Driver) Send(code uint32, bitLength int) error {
	d.mu.Lock()
	conn, peer := d.conn, d.peer
	d.mu.Unlock()

	if conn == nil || peer == nil {
		return proto.ErrNotConnected
	}

	pkt := Encode(code, bitLength)
	for i := 0; i < d.repeat; i++ {
		if i > 0 && d.repeatGap > 0 {
			time.Sleep(d.repeatGap)
		}
		if _, err := conn.WriteToUDP(pkt, peer); err != nil {
			return fmt.Errorf("write udp: %w", err)
		}
	}
	return nil
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

func (d *Driver) Overwritten() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overwritten
}

// LocalAddr is nil until Configure succeeds.
func (d *Driver) LocalAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	return d.conn.LocalAddr()
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

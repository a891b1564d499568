//go:build tinygo || baremetal

package ook

import "machine"

const maxLine = 128

// Console reads operator lines from a UART without blocking the loop and
// writes replies back to it.
type Console struct {
	uart *machine.UART
	buf  [maxLine]byte
	n    int
}

func NewConsole(uart *machine.UART) *Console {
	return &Console{uart: uart}
}

// ReadLine returns a complete line once its newline has arrived.
func (c *Console) ReadLine() (string, bool) {
	for c.uart.Buffered() > 0 {
		b, err := c.uart.ReadByte()
		if err != nil {
			return "", false
		}
		switch b {
		case '\n':
			line := string(c.buf[:c.n])
			c.n = 0
			return line, true
		case '\r':
		default:
			if c.n < maxLine {
				c.buf[c.n] = b
				c.n++
			}
		}
	}
	return "", false
}

func (c *Console) Write(p []byte) (int, error) { return c.uart.Write(p) }

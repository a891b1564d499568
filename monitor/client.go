package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ystepanoff/ookcomm/logger"
)

// Client is the operator side of a Hub connection.
type Client struct {
	conn      *websocket.Conn
	messages  chan Message
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// Dial connects to a hub websocket URL such as ws://host:8080/ws.
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	c := &Client{
		conn:     conn,
		messages: make(chan Message, clientBuffer),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages yields hub messages until the connection drops, then closes.
func (c *Client) Messages() <-chan Message { return c.messages }

// Send forwards one console line to the receiver.
func (c *Client) Send(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		return fmt.Errorf("send %q: %w", line, err)
	}
	return nil
}

// Close ends the connection. Messages is closed once the read loop exits,
// even when nobody is draining it.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("[Monitor] Connection lost: %v\r\n", err)
			}
			return
		}
		select {
		case c.messages <- msg:
		case <-c.done:
			return
		}
	}
}

// Package monitor exposes a running receiver over websocket so an operator
// can watch messages and send console commands from another machine.
package monitor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/journal"
	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/node"
)

const (
	// KindStatus is sent to each client on connect with the current alert state.
	KindStatus = "status"
	// KindStats carries journal counters after each stored event.
	KindStats = "stats"

	clientBuffer = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	maxLineSize  = 512
)

// Message is the JSON frame pushed to websocket clients.
type Message struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Time    time.Time      `json:"time"`
	Active  bool           `json:"active"`
	Sound   bool           `json:"sound"`
	Stats   *journal.Stats `json:"stats,omitempty"`
}

// JournalReader is the part of the journal the HTTP API serves.
type JournalReader interface {
	Recent(limit int) ([]journal.Entry, error)
	Stats() (journal.Stats, error)
}

// JournalResponse is the body of GET /api/journal.
type JournalResponse struct {
	Entries []journal.Entry `json:"entries"`
	Stats   journal.Stats   `json:"stats"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans node events out to websocket clients and feeds their text frames
// to the receiver's console queue.
type Hub struct {
	upgrader websocket.Upgrader
	lines    *command.Queue
	journal  JournalReader

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    Message
}

// NewHub creates a hub. lines may be nil for a read-only monitor.
func NewHub(lines *command.Queue, j JournalReader) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		lines:   lines,
		journal: j,
		clients: make(map[*client]struct{}),
		last:    Message{Kind: KindStatus, Sound: true},
	}
}

// Handler routes /ws and, when a journal is attached, /api/journal.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	if h.journal != nil {
		mux.HandleFunc("/api/journal", h.handleJournal)
	}
	return mux
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify implements node.Listener. Clients that cannot keep up are dropped.
func (h *Hub) Notify(ev node.Event) {
	msg := Message{
		Kind:    ev.Kind.String(),
		Message: ev.Message,
		Time:    ev.Time,
		Active:  ev.Active,
		Sound:   ev.Sound,
	}
	if ev.Code != 0 {
		msg.Code = ev.Code.String()
	}

	h.mu.Lock()
	switch ev.Kind {
	case node.EventMessage, node.EventAlertStopped, node.EventSound:
		h.last.Active = ev.Active
		h.last.Sound = ev.Sound
		if ev.Kind == node.EventMessage {
			h.last.Message = ev.Message
		}
		h.last.Time = ev.Time
	}
	h.mu.Unlock()

	h.broadcast(msg)
}

// BroadcastStats pushes journal counters to every client. It fits
// journal.Recorder.OnUpdate.
func (h *Hub) BroadcastStats(s journal.Stats) {
	h.broadcast(Message{Kind: KindStats, Time: time.Now(), Stats: &s})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("[Monitor] Failed to encode %s: %v\r\n", msg.Kind, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.Error("[Monitor] Client %s too slow, disconnecting\r\n", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

// HandleWebSocket upgrades the request and serves the client until it leaves.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[Monitor] Failed to upgrade connection: %v\r\n", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	status := h.last
	status.Kind = KindStatus
	if status.Time.IsZero() {
		status.Time = time.Now()
	}
	if data, err := json.Marshal(status); err == nil {
		c.send <- data
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logger.Info("[Monitor] Client %s connected\r\n", conn.RemoteAddr())

	go h.writer(c)
	h.reader(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) reader(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		logger.Info("[Monitor] Client %s disconnected\r\n", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(maxLineSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("[Monitor] Unexpected close: %v\r\n", err)
			}
			return
		}
		if messageType != websocket.TextMessage || h.lines == nil {
			continue
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}
		logger.Debug("[Monitor] Command from %s: %q\r\n", c.conn.RemoteAddr(), line)
		h.lines.Push(line)
	}
}

func (h *Hub) writer(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stats, err := h.journal.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(JournalResponse{Entries: entries, Stats: stats})
}

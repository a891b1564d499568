package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ystepanoff/ookcomm/command"
	"github.com/ystepanoff/ookcomm/journal"
	"github.com/ystepanoff/ookcomm/node"
	proto "github.com/ystepanoff/ookcomm/protocol"
)

type fakeJournal struct {
	entries []journal.Entry
	stats   journal.Stats
}

func (f *fakeJournal) Recent(limit int) ([]journal.Entry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeJournal) Stats() (journal.Stats, error) { return f.stats, nil }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestHub_BroadcastsEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	status := readMessage(t, conn)
	if status.Kind != KindStatus || status.Active || !status.Sound {
		t.Errorf("initial status = %+v", status)
	}

	hub.Notify(node.Event{Kind: node.EventMessage, Message: "HELLO", Active: true, Sound: true})
	hub.Notify(node.Event{Kind: node.EventOutOfSequence, Code: proto.Code(0x05414243)})
	hub.BroadcastStats(journal.Stats{Received: 1, Unread: 1})

	msg := readMessage(t, conn)
	if msg.Kind != "message" || msg.Message != "HELLO" || !msg.Active {
		t.Errorf("message event = %+v", msg)
	}
	msg = readMessage(t, conn)
	if msg.Kind != "out-of-sequence" || msg.Code != "0x05414243" {
		t.Errorf("out-of-sequence event = %+v", msg)
	}
	msg = readMessage(t, conn)
	if msg.Kind != KindStats || msg.Stats == nil || msg.Stats.Unread != 1 {
		t.Errorf("stats event = %+v", msg)
	}

	// A late client sees the alert state left by the message.
	late := dial(t, srv)
	status = readMessage(t, late)
	if status.Kind != KindStatus || !status.Active || status.Message != "HELLO" {
		t.Errorf("late status = %+v", status)
	}
	if hub.Clients() != 2 {
		t.Errorf("Clients() = %d, want 2", hub.Clients())
	}
}

func TestHub_ForwardsCommands(t *testing.T) {
	lines := command.NewQueue(4)
	hub := NewHub(lines, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	readMessage(t, conn)

	for _, s := range []string{"  stopalert \n", "", "soundoff"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
	}

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		if line, ok := lines.Poll(); ok {
			got = append(got, line)
			continue
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(got) != 2 || got[0] != "stopalert" || got[1] != "soundoff" {
		t.Errorf("queued lines = %q", got)
	}
}

func TestHub_Journal(t *testing.T) {
	j := &fakeJournal{
		entries: []journal.Entry{{ID: 2, Message: "two"}, {ID: 1, Message: "one", Read: true}},
		stats:   journal.Stats{Received: 2, Unread: 1},
	}
	hub := NewHub(nil, j)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	tests := []struct {
		name    string
		query   string
		status  int
		entries int
	}{
		{"default", "", http.StatusOK, 2},
		{"limited", "?limit=1", http.StatusOK, 1},
		{"bad limit", "?limit=x", http.StatusBadRequest, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/api/journal" + tt.query)
			if err != nil {
				t.Fatalf("GET error = %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var body JournalResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if len(body.Entries) != tt.entries || body.Stats != j.stats {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestHub_NoJournalRoute(t *testing.T) {
	srv := httptest.NewServer(NewHub(nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/journal")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestClient(t *testing.T) {
	lines := command.NewQueue(4)
	hub := NewHub(lines, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	next := func() Message {
		t.Helper()
		select {
		case msg := <-c.Messages():
			return msg
		case <-time.After(2 * time.Second):
			t.Fatal("no message from hub")
			return Message{}
		}
	}

	if msg := next(); msg.Kind != KindStatus {
		t.Fatalf("first message = %+v", msg)
	}
	hub.Notify(node.Event{Kind: node.EventSound, Sound: false})
	if msg := next(); msg.Kind != "sound" || msg.Sound {
		t.Errorf("sound event = %+v", msg)
	}

	if err := c.Send("status"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if line, ok := lines.Poll(); ok {
			if line != "status" {
				t.Errorf("queued %q", line)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("command not queued")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClient_CloseWithoutDraining(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	c, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Paced so the hub never drops the client as slow.
	for i := 0; i < clientBuffer+16; i++ {
		hub.Notify(node.Event{Kind: node.EventSound, Sound: i%2 == 0})
		time.Sleep(time.Millisecond)
	}
	for len(c.messages) < cap(c.messages) {
		if time.Now().After(deadline.Add(2 * time.Second)) {
			t.Fatalf("buffered %d messages, want %d", len(c.messages), cap(c.messages))
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Close()
	time.Sleep(200 * time.Millisecond)

	// The read loop must have given up its pending message and exited.
	got := 0
	for {
		select {
		case _, ok := <-c.Messages():
			if !ok {
				if got != clientBuffer {
					t.Errorf("drained %d messages after Close, want %d", got, clientBuffer)
				}
				return
			}
			got++
		case <-time.After(2 * time.Second):
			t.Fatalf("Messages() not closed after Close, %d drained", got)
		}
	}
}

package journal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ystepanoff/ookcomm/node"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestJournal_AddAndRead(t *testing.T) {
	j := openTemp(t)

	for i, msg := range []string{"HELLO", "Fire drill", "All clear"} {
		if _, err := j.Add(msg, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Add(%q) error = %v", msg, err)
		}
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Message != "All clear" || recent[1].Message != "Fire drill" {
		t.Errorf("Recent(2) = %+v", recent)
	}

	s, _ := j.Stats()
	if s != (Stats{Received: 3, Unread: 3}) {
		t.Errorf("Stats() = %+v", s)
	}

	if err := j.MarkRead(recent[1].ID, base.Add(time.Hour)); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if err := j.MarkRead(9999, base); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkRead(9999) error = %v, want %v", err, ErrNotFound)
	}

	n, err := j.MarkAllRead(base.Add(2 * time.Hour))
	if err != nil || n != 2 {
		t.Errorf("MarkAllRead() = %d, %v; want 2", n, err)
	}
	unread, _ := j.Unread()
	if len(unread) != 0 {
		t.Errorf("Unread() = %+v after MarkAllRead", unread)
	}

	recent, _ = j.Recent(3)
	for _, e := range recent {
		if !e.Read || e.ReadAt == nil {
			t.Errorf("entry %d read = %v, read_at = %v", e.ID, e.Read, e.ReadAt)
		}
	}
}

func TestJournal_EmptyMessageIsAnomaly(t *testing.T) {
	j := openTemp(t)

	e, err := j.Add("", base)
	if err != nil || e != nil {
		t.Fatalf("Add(\"\") = %v, %v; want nil entry", e, err)
	}
	j.AddUnrecognized(AnomalyOutOfSequence, 0x00414243, base)

	s, _ := j.Stats()
	if s.Received != 0 || s.Unrecognized != 2 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestJournal_Prune(t *testing.T) {
	j := openTemp(t)

	for i := 0; i < 12; i++ {
		j.Add(fmt.Sprintf("msg %d", i), base.Add(time.Duration(i)*time.Second))
	}

	n, err := j.Prune(5)
	if err != nil || n != 7 {
		t.Fatalf("Prune(5) = %d, %v; want 7", n, err)
	}
	recent, _ := j.Recent(100)
	if len(recent) != 5 || recent[0].Message != "msg 11" || recent[4].Message != "msg 7" {
		t.Errorf("after Prune: %+v", recent)
	}
}

func TestRecorder(t *testing.T) {
	j := openTemp(t)
	r := NewRecorder(j, 2)

	updates := make(chan Stats, 16)
	r.OnUpdate = func(s Stats) { updates <- s }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	r.Notify(node.Event{Kind: node.EventFrame, Time: base})
	for i, msg := range []string{"one", "two", "three"} {
		r.Notify(node.Event{Kind: node.EventMessage, Message: msg, Time: base.Add(time.Duration(i) * time.Second)})
	}
	r.Notify(node.Event{Kind: node.EventOutOfSequence, Code: 0x00414243, Time: base})
	r.Notify(node.Event{Kind: node.EventAlertStopped, Time: base.Add(time.Minute)})

	var last Stats
	for i := 0; i < 5; i++ {
		select {
		case last = <-updates:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d updates recorded", i)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}

	if last != (Stats{Received: 2, Unread: 0, Unrecognized: 1}) {
		t.Errorf("final stats = %+v", last)
	}
}

// Package node runs the receiver and sender as single-threaded cooperative
// loops and fans their events out to host-side listeners.
package node

import (
	"time"

	proto "github.com/ystepanoff/ookcomm/protocol"
)

type EventKind uint8

const (
	EventFrame EventKind = iota
	EventMessage
	EventOutOfSequence
	EventTimeout
	EventAborted
	EventAlertStopped
	EventSound
	EventSent
	EventRefused
)

var eventNames = [...]string{
	EventFrame:         "frame",
	EventMessage:       "message",
	EventOutOfSequence: "out-of-sequence",
	EventTimeout:       "timeout",
	EventAborted:       "aborted",
	EventAlertStopped:  "alert-stopped",
	EventSound:         "sound",
	EventSent:          "sent",
	EventRefused:       "refused",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event describes something a node loop did. Active and Sound carry the alert
// state after the event on the receiver.
type Event struct {
	Kind    EventKind
	Message string
	Code    proto.Code
	Time    time.Time
	Active  bool
	Sound   bool
}

// Listener receives events on the loop's goroutine and must return promptly.
type Listener interface {
	Notify(ev Event)
}

type ListenerFunc func(ev Event)

func (f ListenerFunc) Notify(ev Event) { f(ev) }

type listeners []Listener

func (ls listeners) emit(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	for _, l := range ls {
		l.Notify(ev)
	}
}

package journal

import (
	"context"

	"github.com/ystepanoff/ookcomm/logger"
	"github.com/ystepanoff/ookcomm/node"
)

const recorderBuffer = 64

// Recorder is a node listener that persists events on its own goroutine so
// the node loop never waits on the database.
type Recorder struct {
	j      *Journal
	keep   int
	events chan node.Event
	// OnUpdate, if set, runs after each event is stored.
	OnUpdate func(Stats)
}

func NewRecorder(j *Journal, keep int) *Recorder {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Recorder{j: j, keep: keep, events: make(chan node.Event, recorderBuffer)}
}

// Notify queues ev, dropping it if the writer has fallen behind.
func (r *Recorder) Notify(ev node.Event) {
	switch ev.Kind {
	case node.EventMessage, node.EventAlertStopped, node.EventOutOfSequence, node.EventTimeout:
	default:
		return
	}
	select {
	case r.events <- ev:
	default:
		logger.Error("[Journal] Writer behind, dropping %s event\r\n", ev.Kind)
	}
}

// Run stores queued events until ctx is done, then drains what is left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-r.events:
			r.store(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-r.events:
					r.store(ev)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) store(ev node.Event) {
	var err error
	switch ev.Kind {
	case node.EventMessage:
		_, err = r.j.Add(ev.Message, ev.Time)
		if err == nil {
			_, err = r.j.Prune(r.keep)
		}
	case node.EventAlertStopped:
		_, err = r.j.MarkAllRead(ev.Time)
	case node.EventOutOfSequence:
		err = r.j.AddUnrecognized(AnomalyOutOfSequence, uint32(ev.Code), ev.Time)
	case node.EventTimeout:
		err = r.j.AddUnrecognized(AnomalyTimeout, 0, ev.Time)
	}
	if err != nil {
		logger.Error("[Journal] %v\r\n", err)
		return
	}

	if r.OnUpdate != nil {
		if s, err := r.j.Stats(); err == nil {
			r.OnUpdate(s)
		}
	}
}

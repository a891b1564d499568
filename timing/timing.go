// Package timing provides the wrap-safe millisecond counter and the non-blocking
// cadence primitive shared by every cooperative loop in ookcomm.
package timing

import "time"

// Millis is a free-running millisecond counter. It wraps after ~49.7 days;
// compare two readings only through Since.
type Millis uint32

// Since returns the milliseconds elapsed from then to now. Unsigned subtraction
// keeps the result correct across a counter wrap.
func Since(now, then Millis) Millis { return now - then }

// Duration converts a millisecond count into a time.Duration.
func (m Millis) Duration() time.Duration { return time.Duration(m) * time.Millisecond }

// FromDuration truncates d to whole milliseconds.
func FromDuration(d time.Duration) Millis { return Millis(d / time.Millisecond) }

// Clock is the source of the millisecond counter.
type Clock interface {
	Millis() Millis
}

// SystemClock counts milliseconds from its construction.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock { return &SystemClock{start: time.Now()} }

func (c *SystemClock) Millis() Millis {
	return Millis(uint64(time.Since(c.start).Milliseconds()))
}

// Sleeper blocks for d. Blocking sections take one so tests can run them instantly.
type Sleeper func(d time.Duration)

// Sleep is the real Sleeper.
func Sleep(d time.Duration) { time.Sleep(d) }

// Cadence fires at most once per Period without blocking.
type Cadence struct {
	Period Millis
	last   Millis
}

func NewCadence(period Millis) Cadence { return Cadence{Period: period} }

// Reset re-arms the cadence so the next firing is one full period after now.
func (c *Cadence) Reset(now Millis) { c.last = now }

// Due reports whether a full period has elapsed since the last firing and, if so,
// records now as the new firing time.
func (c *Cadence) Due(now Millis) bool {
	if Since(now, c.last) < c.Period {
		return false
	}
	c.last = now
	return true
}

//go:build !tinygo && !baremetal

package stub

import "sync"

// Tone records buzzer activity. A zero entry in the log is a StopTone.
type Tone struct {
	mu      sync.Mutex
	log     []uint32
	current uint32
}

func (t *Tone) SetTone(hz uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = hz
	t.log = append(t.log, hz)
}

func (t *Tone) StopTone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = 0
	t.log = append(t.log, 0)
}

// Current returns the sounding frequency, 0 when silent.
func (t *Tone) Current() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tone) Log() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]uint32(nil), t.log...)
}

func (t *Tone) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = nil
}

// LED records indicator activity.
type LED struct {
	mu      sync.Mutex
	on      bool
	changes int
}

func (l *LED) SetLED(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on != on {
		l.changes++
	}
	l.on = on
}

func (l *LED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Changes counts on/off transitions.
func (l *LED) Changes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changes
}

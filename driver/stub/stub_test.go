//go:build !tinygo && !baremetal

package stub

import (
	"testing"

	"github.com/ystepanoff/ookcomm/transport"
)

var _ transport.RadioDriver = (*Driver)(nil)
var _ transport.ToneDriver = (*Tone)(nil)
var _ transport.LEDDriver = (*LED)(nil)

func TestDriver_SingleSlot(t *testing.T) {
	d := New()

	if _, ok := d.Poll(); ok {
		t.Fatal("Poll() on a fresh driver returned a capture")
	}

	d.InjectRx(0xFF000005, 32)
	d.InjectRx(0x0048454C, 32)

	c, ok := d.Poll()
	if !ok || c.Code != 0x0048454C {
		t.Fatalf("Poll() = %v, %v; want the newest capture", c, ok)
	}
	if c2, _ := d.Poll(); c2 != c {
		t.Error("unconsumed capture changed between polls")
	}
	if d.Overwritten() != 1 {
		t.Errorf("Overwritten() = %d, want 1", d.Overwritten())
	}

	d.MarkConsumed()
	if _, ok := d.Poll(); ok {
		t.Error("Poll() returned a consumed capture")
	}
}

func TestDriver_RepeatToPeer(t *testing.T) {
	a, b := New(), New()
	a.ConnectTo(b)

	if err := a.Send(0xFE000000, 32); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if log := a.GetTxLog(); len(log) != 1 || log[0].Code != 0xFE000000 {
		t.Errorf("tx log = %v, want one END frame", log)
	}
	c, ok := b.Poll()
	if !ok || c.Code != 0xFE000000 || c.BitLength != 32 {
		t.Errorf("peer Poll() = %v, %v", c, ok)
	}
	// Three back-to-back copies land in one slot.
	if b.Overwritten() != 2 {
		t.Errorf("peer Overwritten() = %d, want 2", b.Overwritten())
	}
}

func TestDriver_Loss(t *testing.T) {
	a, b := New(), New()
	Connect(a, b)
	a.SetLoss(1, 1)

	a.Send(0x00414243, 32)
	if _, ok := b.Poll(); ok {
		t.Error("frame delivered with total loss")
	}
	if a.Lost() != 3 {
		t.Errorf("Lost() = %d, want 3", a.Lost())
	}

	b.Send(0x00444546, 32)
	if c, ok := a.Poll(); !ok || c.Code != 0x00444546 {
		t.Errorf("reverse direction Poll() = %v, %v", c, ok)
	}
}

func TestRingBuffer_Wrap(t *testing.T) {
	var rb ringBuffer
	for i := 0; i < ringCapacity+10; i++ {
		rb.push(transport.Capture{Code: uint32(i)})
	}
	snap := rb.snapshot()
	if len(snap) != ringCapacity {
		t.Fatalf("len(snapshot) = %d, want %d", len(snap), ringCapacity)
	}
	if snap[0].Code != 10 || snap[len(snap)-1].Code != ringCapacity+9 {
		t.Errorf("snapshot spans %d..%d", snap[0].Code, snap[len(snap)-1].Code)
	}
}

func TestOutputs(t *testing.T) {
	var tone Tone
	tone.SetTone(440)
	if tone.Current() != 440 {
		t.Errorf("Current() = %d, want 440", tone.Current())
	}
	tone.StopTone()
	if log := tone.Log(); len(log) != 2 || log[1] != 0 {
		t.Errorf("Log() = %v", log)
	}

	var led LED
	led.SetLED(true)
	led.SetLED(true)
	led.SetLED(false)
	if led.On() || led.Changes() != 2 {
		t.Errorf("On() = %v, Changes() = %d; want false, 2", led.On(), led.Changes())
	}
}

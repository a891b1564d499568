package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ystepanoff/ookcomm/transport"
)

func TestPrintFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := printFrames(&buf, "HELLO", false); err != nil {
		t.Fatalf("printFrames() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"0xFF000005", "0x0048454C", "0x014C4F00", "0xFE000000"}
	if len(lines) != len(want)+1 {
		t.Fatalf("output:\n%s", buf.String())
	}
	for i, code := range want {
		if !strings.HasPrefix(lines[i], code) {
			t.Errorf("line %d = %q, want prefix %s", i, lines[i], code)
		}
	}
	if !strings.HasPrefix(lines[4], "4 frames") {
		t.Errorf("summary = %q", lines[4])
	}
}

func TestPrintFrames_TooLong(t *testing.T) {
	var buf bytes.Buffer
	if err := printFrames(&buf, strings.Repeat("x", 256), false); err == nil {
		t.Error("printFrames() accepted a 256 byte message")
	}
}

func TestPrintFrames_Pulses(t *testing.T) {
	var buf bytes.Buffer
	if err := printFrames(&buf, "A", true); err != nil {
		t.Fatalf("printFrames() error = %v", err)
	}
	// END frame: 0xFE then 24 zero bits, closed by the sync pulse.
	if !strings.Contains(buf.String(), "+1050 -350 +1050 -350") || !strings.Contains(buf.String(), "+350 -10850") {
		t.Errorf("pulse output:\n%s", buf.String())
	}
}

func TestAirtime(t *testing.T) {
	tests := []struct {
		frames int
		want   time.Duration
	}{
		{0, 0},
		// 3 copies of 56ms per frame, settle 100ms, 50ms after each data frame
		{2, 436 * time.Millisecond},
		{4, 872 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := airtime(tt.frames); got != tt.want {
			t.Errorf("airtime(%d) = %v, want %v", tt.frames, got, tt.want)
		}
	}
}

func TestSimulate(t *testing.T) {
	res, err := simulate(context.Background(), transport.DefaultOptions(), simOptions{
		message: "HELLO",
		count:   2,
		repeat:  3,
	})
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	if res.Sent != 2 || res.Delivered != 2 || res.Corrupted != 0 || res.Lost != 0 {
		t.Errorf("simulate() = %+v", res)
	}
}

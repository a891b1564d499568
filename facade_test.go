package ookcomm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/driver/udp"
	"github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/timing"
	"github.com/ystepanoff/ookcomm/transport"
)

func TestNewLink_RoundTrip(t *testing.T) {
	tx, rx := NewLink(DefaultOptions())
	if err := tx.Initialise(); err != nil {
		t.Fatalf("Initialise() error = %v", err)
	}

	now := timing.Millis(1000)
	var got []string
	poll := func() {
		if res, ok := rx.Poll(now); ok && res.Outcome == transport.OutcomeCompleted {
			got = append(got, res.Message)
		}
	}
	// Drain the single capture slot whenever the transmitter waits.
	tx.SetSleeper(func(d time.Duration) {
		now += timing.FromDuration(d)
		poll()
	})

	for _, msg := range []string{"HELLO", "Fire drill"} {
		if err := tx.SendMessage(msg); err != nil {
			t.Fatalf("SendMessage(%q) error = %v", msg, err)
		}
		poll()
		now += 1000
	}

	if strings.Join(got, "|") != "HELLO|Fire drill" {
		t.Errorf("received %q", got)
	}
}

func TestSplitMessage(t *testing.T) {
	codes, err := SplitMessage("HELLO")
	if err != nil {
		t.Fatalf("SplitMessage() error = %v", err)
	}
	if len(codes) != 4 || codes[0] != 0xFF000005 || codes[3] != 0xFE000000 {
		t.Errorf("SplitMessage() = %v", codes)
	}

	if _, err := SplitMessage(strings.Repeat("x", MaxMessageLength+1)); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("SplitMessage(too long) error = %v, want %v", err, ErrMessageTooLong)
	}
}

func TestPublicErrors(t *testing.T) {
	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"message too long", func() error {
			_, err := SplitMessage(strings.Repeat("x", MaxMessageLength+1))
			return err
		}, ErrMessageTooLong},
		{"invalid payload", func() error {
			_, err := protocol.PackDataFrame(0, []byte("ABCD"))
			return err
		}, ErrInvalidPayload},
		{"invalid bit length", func() error {
			_, err := udp.Decode([]byte{1, 2, 3})
			return err
		}, ErrInvalidBitLength},
		{"invalid uid", func() error {
			_, err := credential.ParseUID("C0 A9")
			return err
		}, ErrInvalidUID},
		{"not connected", func() error {
			return udp.New("", "").Send(1, FrameBits)
		}, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

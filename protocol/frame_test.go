package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeKind(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want Kind
	}{
		{name: "start with length", code: 0xFF000005, want: KindStart},
		{name: "start ignores middle bytes", code: 0xFFABCD00, want: KindStart},
		{name: "end", code: 0xFE000000, want: KindEnd},
		{name: "end ignores payload", code: 0xFE414243, want: KindEnd},
		{name: "first data packet", code: 0x00484540, want: KindData},
		{name: "last data index", code: 0xFD000041, want: KindData},
		{name: "all zero", code: 0x00000000, want: KindData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeKind(tt.code); got != tt.want {
				t.Errorf("DecodeKind(%v) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestStartAndEndFrames(t *testing.T) {
	start := StartFrame(5)
	if start != 0xFF000005 {
		t.Errorf("StartFrame(5) = %v, want 0xFF000005", start)
	}
	if ExpectedLength(start) != 5 {
		t.Errorf("ExpectedLength = %d, want 5", ExpectedLength(start))
	}
	if EndFrame() != 0xFE000000 {
		t.Errorf("EndFrame() = %v, want 0xFE000000", EndFrame())
	}
}

func TestPackDataFrame(t *testing.T) {
	tests := []struct {
		name    string
		index   byte
		payload []byte
		want    Code
		wantErr error
	}{
		{name: "full packet", index: 0, payload: []byte("HEL"), want: 0x0048454C},
		{name: "two bytes", index: 1, payload: []byte("LO"), want: 0x014C4F00},
		{name: "one byte", index: 7, payload: []byte("A"), want: 0x07410000},
		{name: "empty payload", index: 2, payload: nil, want: 0x02000000},
		{name: "index too large", index: 0xFE, payload: []byte("A"), wantErr: ErrInvalidIndex},
		{name: "payload too large", index: 0, payload: []byte("ABCD"), wantErr: ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PackDataFrame(tt.index, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PackDataFrame() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got != tt.want {
				t.Errorf("PackDataFrame() = %v, want %v", got, tt.want)
			}

			index, payload := UnpackDataFrame(got)
			if index != tt.index {
				t.Errorf("UnpackDataFrame() index = %d, want %d", index, tt.index)
			}
			if !bytes.Equal(payload[:len(tt.payload)], tt.payload) {
				t.Errorf("UnpackDataFrame() payload = %q, want prefix %q", payload, tt.payload)
			}
			for _, b := range payload[len(tt.payload):] {
				if b != 0 {
					t.Errorf("UnpackDataFrame() padding = %v, want zeros", payload)
				}
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	codes, err := SplitMessage([]byte("HELLO"))
	if err != nil {
		t.Fatalf("SplitMessage() error = %v", err)
	}

	want := []Code{0xFF000005, 0x0048454C, 0x014C4F00, 0xFE000000}
	if len(codes) != len(want) {
		t.Fatalf("SplitMessage() = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, codes[i], want[i])
		}
	}
}

func TestSplitMessageBounds(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantFrames int
		wantErr    error
	}{
		{name: "empty", length: 0, wantFrames: 2},
		{name: "exact multiple", length: 6, wantFrames: 4},
		{name: "sender cap", length: DefaultMessageLimit, wantFrames: 2 + 17},
		{name: "protocol maximum", length: MaxMessageLength, wantFrames: 2 + 85},
		{name: "too long", length: MaxMessageLength + 1, wantErr: ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := SplitMessage(bytes.Repeat([]byte{'x'}, tt.length))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SplitMessage() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(codes) != tt.wantFrames {
				t.Errorf("SplitMessage() frames = %d, want %d", len(codes), tt.wantFrames)
			}
			if ExpectedLength(codes[0]) != byte(tt.length) {
				t.Errorf("START length = %d, want %d", ExpectedLength(codes[0]), tt.length)
			}
			for i, c := range codes[1 : len(codes)-1] {
				if index, _ := UnpackDataFrame(c); int(index) != i {
					t.Errorf("data frame %d carries index %d", i, index)
				}
			}
		})
	}
}

func TestCodeString(t *testing.T) {
	if got := Code(0xFE000000).String(); got != "0xFE000000" {
		t.Errorf("String() = %q, want 0xFE000000", got)
	}
}

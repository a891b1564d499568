package protocol

import (
	"encoding/binary"
	"fmt"
)

// Code is one 32-bit radio frame. Its kind is decided by the most significant
// byte alone; there is no separate type tag on air.
type Code uint32

type Kind uint8

const (
	KindData Kind = iota
	KindStart
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	default:
		return "data"
	}
}

// DecodeKind is total over b0: 0xFF is START, 0xFE is END, everything else is DATA.
func DecodeKind(code Code) Kind {
	switch byte(code >> 24) {
	case StartMarker:
		return KindStart
	case EndMarker:
		return KindEnd
	default:
		return KindData
	}
}

func (c Code) Kind() Kind { return DecodeKind(c) }

// Bytes returns b0..b3, most significant first.
func (c Code) Bytes() [FrameSize]byte {
	var b [FrameSize]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return b
}

func (c Code) String() string { return fmt.Sprintf("0x%08X", uint32(c)) }

// StartFrame announces a message of length bytes.
func StartFrame(length byte) Code {
	return Code(uint32(StartMarker)<<24 | uint32(length))
}

// EndFrame closes a message.
func EndFrame() Code { return Code(uint32(EndMarker) << 24) }

// ExpectedLength reads the announced length from a START frame.
func ExpectedLength(code Code) byte { return byte(code) }

// PackDataFrame places up to three payload bytes after the packet index.
// Missing positions stay 0x00, the "no byte here" sentinel.
func PackDataFrame(index byte, payload []byte) (Code, error) {
	if index > MaxDataIndex {
		return 0, ErrInvalidIndex
	}
	if len(payload) > BytesPerFrame {
		return 0, ErrInvalidPayload
	}

	var b [FrameSize]byte
	b[0] = index
	copy(b[1:], payload)
	return Code(binary.BigEndian.Uint32(b[:])), nil
}

// UnpackDataFrame splits a DATA frame into its index and the three candidate bytes.
func UnpackDataFrame(code Code) (index byte, payload [BytesPerFrame]byte) {
	b := code.Bytes()
	copy(payload[:], b[1:])
	return b[0], payload
}

// SplitMessage returns the complete frame sequence for msg: START, ceil(len/3)
// DATA frames and END.
func SplitMessage(msg []byte) ([]Code, error) {
	if len(msg) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	packets := (len(msg) + BytesPerFrame - 1) / BytesPerFrame
	codes := make([]Code, 0, packets+2)
	codes = append(codes, StartFrame(byte(len(msg))))

	for p := 0; p < packets; p++ {
		end := min((p+1)*BytesPerFrame, len(msg))
		code, err := PackDataFrame(byte(p), msg[p*BytesPerFrame:end])
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return append(codes, EndFrame()), nil
}

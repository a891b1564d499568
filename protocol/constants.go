package protocol

import "time"

// Generic radio & protocol constants (platform independent). All higher layers should depend on this file.
const (
	// Frame layout (32 bits, most significant byte first):
	//   b0 (discriminant / packet index) | b1 | b2 | b3
	// START: b0 = 0xFF, b3 = expected message length
	// END:   b0 = 0xFE
	// DATA:  b0 = 0x00..0xFD packet index, b1..b3 message bytes (0x00 = no byte)
	FrameBits     = 32
	FrameSize     = FrameBits / 8
	BytesPerFrame = FrameSize - 1

	StartMarker  = 0xFF
	EndMarker    = 0xFE
	MaxDataIndex = 0xFD

	// Longest message the START length byte can announce.
	MaxMessageLength = 0xFF

	// Usability cap applied by the sender console, not a protocol limit.
	DefaultMessageLimit = 50

	// Printable ASCII window accepted by the reassembler.
	MinPrintable = 32
	MaxPrintable = 126

	// Number of times the transport repeats every logical frame on air.
	RepeatTransmit = 3
)

// Timeouts / intervals (milliseconds)
const (
	SettleDelayMs       = 100
	InterFrameDelayMs   = 50
	DedupWindowMs       = 200
	ReassemblyTimeoutMs = 10000
)

const (
	SettleDelay     = SettleDelayMs * time.Millisecond
	InterFrameDelay = InterFrameDelayMs * time.Millisecond
)

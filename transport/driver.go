package transport

// Capture is one frame surfaced by the radio's capture mechanism.
type Capture struct {
	Code      uint32
	BitLength int
}

// RadioDriver is the interface that wraps the basic radio operations.
//
// Send hands one logical frame to the transport, which repeats it on air.
// Poll surfaces the most recent capture; the driver keeps returning it until
// MarkConsumed is called, and a capture arriving before that overwrites it.
type RadioDriver interface {
	Configure() error
	Send(code uint32, bitLength int) error
	Poll() (Capture, bool)
	MarkConsumed()
}

// ToneDriver drives the buzzer. SetTone keeps sounding until StopTone or the
// next SetTone.
type ToneDriver interface {
	SetTone(hz uint32)
	StopTone()
}

// LEDDriver drives a single indicator LED.
type LEDDriver interface {
	SetLED(on bool)
}

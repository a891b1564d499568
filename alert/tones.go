package alert

import "time"

const (
	// BlinkInterval is the LED half period: 200ms square wave, 50% duty.
	BlinkInterval = 100 // ms
	// ToneStepInterval is how long each warble entry sounds.
	ToneStepInterval = 150 // ms
)

// Warble is the continuous alert tone cycle, 200 to 1000 and back in 100Hz steps.
var Warble = [16]uint32{200, 300, 400, 500, 600, 700, 800, 900, 1000, 900, 800, 700, 600, 500, 400, 300}

// Completion siren, played synchronously when a message arrives.
const (
	SirenLow     = 200
	SirenHigh    = 1000
	SirenStep    = 50
	SirenDwell   = 20 * time.Millisecond
	SirenRepeats = 5
)

const (
	ConfirmFrequency = 440
	ConfirmDuration  = 200 * time.Millisecond

	StartupFrequency = 800
	StartupBeeps     = 3
	StartupBeep      = 100 * time.Millisecond
)

// SirenSweep returns one up/down sweep of the siren: both ends are included in
// each direction, so the peak is played twice.
func SirenSweep() []uint32 {
	steps := (SirenHigh-SirenLow)/SirenStep + 1
	sweep := make([]uint32, 0, 2*steps)
	for f := SirenLow; f <= SirenHigh; f += SirenStep {
		sweep = append(sweep, uint32(f))
	}
	for f := SirenHigh; f >= SirenLow; f -= SirenStep {
		sweep = append(sweep, uint32(f))
	}
	return sweep
}

// SirenDuration is the longest the completion siren blocks the loop (3.4s).
func SirenDuration() time.Duration {
	return time.Duration(SirenRepeats*len(SirenSweep())) * SirenDwell
}

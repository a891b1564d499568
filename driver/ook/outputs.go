//go:build tinygo || baremetal

package ook

import "machine"

// PWM is the subset of a TinyGo PWM peripheral the buzzer needs.
type PWM interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetPeriod(period uint64) error
	Set(channel uint8, value uint32)
	Top() uint32
}

// Buzzer drives a passive piezo with a 50% duty square wave.
type Buzzer struct {
	pwm     PWM
	channel uint8
}

func NewBuzzer(pwm PWM, pin machine.Pin) (*Buzzer, error) {
	if err := pwm.Configure(machine.PWMConfig{}); err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil, err
	}
	pwm.Set(ch, 0)
	return &Buzzer{pwm: pwm, channel: ch}, nil
}

func (b *Buzzer) SetTone(hz uint32) {
	if hz == 0 {
		b.StopTone()
		return
	}
	if err := b.pwm.SetPeriod(1e9 / uint64(hz)); err != nil {
		return
	}
	b.pwm.Set(b.channel, b.pwm.Top()/2)
}

func (b *Buzzer) StopTone() { b.pwm.Set(b.channel, 0) }

// LED is an active-high indicator on a GPIO pin.
type LED struct {
	pin machine.Pin
}

func NewLED(pin machine.Pin) *LED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return &LED{pin: pin}
}

func (l *LED) SetLED(on bool) { l.pin.Set(on) }

//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package ookcomm

import (
	"machine"

	"github.com/ystepanoff/ookcomm/driver/ook"
	"github.com/ystepanoff/ookcomm/transport"
)

// NewTransmitter returns a transmitter keying the OOK module on pin.
func NewTransmitter(pin machine.Pin) *transport.Transmitter {
	return transport.NewTransmitterWithDriver(ook.New(pin, machine.NoPin))
}

// NewReceiver returns a receiver decoding the OOK module output on pin.
func NewReceiver(pin machine.Pin, opts Options) *transport.Receiver {
	return transport.NewReceiverWithDriver(ook.New(machine.NoPin, pin), opts)
}

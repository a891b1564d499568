//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package ookcomm

import (
	"github.com/ystepanoff/ookcomm/driver/stub"
	"github.com/ystepanoff/ookcomm/transport"
)

// NewTransmitter returns a transmitter on an unconnected stub radio.
func NewTransmitter() *transport.Transmitter {
	return transport.NewTransmitterWithDriver(stub.New())
}

// NewReceiver returns a receiver on an unconnected stub radio.
func NewReceiver(opts Options) *transport.Receiver {
	return transport.NewReceiverWithDriver(stub.New(), opts)
}

// NewLink returns a transmitter whose frames reach the returned receiver.
func NewLink(opts Options) (*transport.Transmitter, *transport.Receiver) {
	tx, rx := stub.New(), stub.New()
	tx.ConnectTo(rx)
	return transport.NewTransmitterWithDriver(tx), transport.NewReceiverWithDriver(rx, opts)
}

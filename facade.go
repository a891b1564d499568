// Package ookcomm provides a façade to access the OOK text messaging layer.
package ookcomm

import (
	"github.com/ystepanoff/ookcomm/alert"
	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/node"
	"github.com/ystepanoff/ookcomm/protocol"
	"github.com/ystepanoff/ookcomm/transport"
)

// The radio constructors are split into build-tag specific files:
// - constructors_ook.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

// Re-export types
type (
	Code           = protocol.Code
	Transmitter    = transport.Transmitter
	Receiver       = transport.Receiver
	Reassembler    = transport.Reassembler
	Options        = transport.Options
	AlertScheduler = alert.Scheduler
	UID            = credential.UID
	ReceiverNode   = node.Receiver
	SenderNode     = node.Sender
	Event          = node.Event
)

// Error constants exposed in the public API
var (
	ErrMessageTooLong   = protocol.ErrMessageTooLong
	ErrInvalidPayload   = protocol.ErrInvalidPayload
	ErrInvalidBitLength = protocol.ErrInvalidBitLength
	ErrInvalidUID       = protocol.ErrInvalidUID
	ErrNotConnected     = protocol.ErrNotConnected
)

// Constants exposed in the public API
const (
	FrameBits        = protocol.FrameBits
	MaxMessageLength = protocol.MaxMessageLength
	StartMarker      = protocol.StartMarker
	EndMarker        = protocol.EndMarker
)

// SplitMessage returns the START, DATA and END frames for msg.
func SplitMessage(msg string) ([]Code, error) {
	return protocol.SplitMessage([]byte(msg))
}

// DefaultOptions are the reassembly settings of a standard receiver.
func DefaultOptions() Options { return transport.DefaultOptions() }

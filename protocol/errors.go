package protocol

import "errors"

var (
	ErrMessageTooLong   = errors.New("message longer than 255 bytes")
	ErrInvalidIndex     = errors.New("data packet index out of range (valid range: 0-253)")
	ErrInvalidPayload   = errors.New("data payload larger than 3 bytes")
	ErrInvalidBitLength = errors.New("frame is not 32 bits long")
	ErrInvalidUID       = errors.New("invalid credential UID")
	ErrNotConnected     = errors.New("radio link not connected")
)

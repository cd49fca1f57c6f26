package variopro

import "errors"

// Predefined error types for robust error handling
var (
	ErrNoDisplay       = errors.New("no VarioPro display found")
	ErrClosed          = errors.New("driver is closed")
	ErrInvalidConfig   = errors.New("invalid driver configuration")
	ErrShortPayload    = errors.New("payload too short")
	ErrPayloadTooLarge = errors.New("payload exceeds the one-byte frame length field")
)

package transport

import (
	"errors"
	"syscall"
)

var (
	ErrTimeout        = errors.New("transport: request timed out")
	ErrConnection     = errors.New("transport: connection failed")
	ErrInvalidRequest = errors.New("transport: invalid request")
)

// IsConnectionReset reports whether err was caused by the peer resetting the
// connection or by writing to a closed pipe.
func IsConnectionReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

package display

import (
	"errors"
	"fmt"
)

// Sentinel errors for the display package.
var (
	// ErrUnavailable is returned when the channel has tripped and is
	// refusing sends until ResetAvailability is called.
	ErrUnavailable = errors.New("display: channel unavailable")

	// ErrUnknownTransport is returned for transport names outside the
	// supported set.
	ErrUnknownTransport = errors.New("display: unknown transport")
)

// TransportError wraps a delivery failure with the transport and
// address that failed.
type TransportError struct {
	Transport Transport
	Address   string
	Cause     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("display: %s send to %s failed: %v", e.Transport, e.Address, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

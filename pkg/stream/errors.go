package stream

import (
	"errors"
	"fmt"
)

// Sentinel errors for the stream package.
var (
	// ErrNotStreaming is returned when the endpoint answers with a
	// non-success status instead of a stream body.
	ErrNotStreaming = errors.New("stream: endpoint did not return a stream")
)

// ConnError indicates the endpoint could not be reached at connect time.
// It is surfaced synchronously; no background work starts after it.
type ConnError struct {
	URL   string
	Cause error
}

// Error implements the error interface.
func (e *ConnError) Error() string {
	return fmt.Sprintf("stream: cannot connect to %s: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConnError) Unwrap() error {
	return e.Cause
}

// StreamError indicates the stream failed mid-flight (socket error,
// unexpected EOF). It terminates ingestion; callers stop the pipeline
// rather than auto-restart.
type StreamError struct {
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("stream: stream terminated: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// FramingError indicates the demux buffer grew past its cap without a
// complete frame. It is recovered internally by resetting the buffer and
// resyncing on the next start marker; it never stops the stream.
type FramingError struct {
	Buffered int
	Cap      int
}

// Error implements the error interface.
func (e *FramingError) Error() string {
	return fmt.Sprintf("stream: framing lost, %d bytes buffered without a frame (cap %d)", e.Buffered, e.Cap)
}

// IsConnError returns true if err is a connect-time failure.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}

// IsStreamError returns true if err is a mid-stream failure.
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}

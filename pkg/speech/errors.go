package speech

import (
	"errors"
	"fmt"
)

// Sentinel errors for the speech package.
var (
	// ErrTimeout is returned when no utterance started within the
	// service's listening window.
	ErrTimeout = errors.New("speech: listening timed out")

	// ErrNotUnderstood is returned when audio was captured but could
	// not be transcribed.
	ErrNotUnderstood = errors.New("speech: could not understand audio")

	// ErrEmptyText is returned when there is nothing to synthesize.
	ErrEmptyText = errors.New("speech: empty text")

	// ErrNoAudio is returned when playback is requested with no audio.
	ErrNoAudio = errors.New("speech: no audio to play")
)

// ServiceError wraps a failure reported by a speech service.
type ServiceError struct {
	Service    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("speech: %s service: %v", e.Service, e.Cause)
	}
	return fmt.Sprintf("speech: %s service returned status %d", e.Service, e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

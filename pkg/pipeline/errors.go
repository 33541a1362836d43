package pipeline

import "errors"

// Sentinel errors for the pipeline package.
var (
	// ErrAlreadyRunning is returned by Start when the pipeline is not
	// stopped.
	ErrAlreadyRunning = errors.New("pipeline: already running")

	// ErrNotRunning is returned by Stop when there is nothing to stop.
	ErrNotRunning = errors.New("pipeline: not running")
)

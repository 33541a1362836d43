package pose

import (
	"errors"
)

// Sentinel errors for the pose package.
var (
	// ErrNoService is returned when the detector has no service address.
	ErrNoService = errors.New("pose: detector service URL required")

	// ErrDetectorClosed is returned when detecting after Close.
	ErrDetectorClosed = errors.New("pose: detector closed")
)

// Detector is the interface for hand pose extraction backends.
// At most one pose is considered per frame.
type Detector interface {
	// Detect extracts a hand pose from a JPEG frame.
	// Returns (nil, nil) when no hand is visible; errors are reserved
	// for backend failures and are absorbed per-frame by callers.
	Detect(jpeg []byte) (*Pose, error)

	// Close releases resources.
	Close() error
}

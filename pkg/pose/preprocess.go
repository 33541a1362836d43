package pose

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Default working resolution for detection. Full camera frames are larger
// than the detector needs; shrinking them first keeps the ingestion loop
// cheap.
const (
	DefaultWorkingWidth  = 320
	DefaultWorkingHeight = 240
)

// Resizer shrinks frames to the working resolution before detection.
// It owns OpenCV state and serializes access to it.
type Resizer struct {
	width  int
	height int
	mu     sync.Mutex // gocv mats are not safe for concurrent use
}

// NewResizer creates a resizer for the given working resolution.
// Non-positive dimensions fall back to the defaults.
func NewResizer(width, height int) *Resizer {
	if width <= 0 {
		width = DefaultWorkingWidth
	}
	if height <= 0 {
		height = DefaultWorkingHeight
	}
	return &Resizer{width: width, height: height}
}

// Process decodes a JPEG frame, resizes it to the working resolution and
// re-encodes it. Frames already at or below the working size pass through
// untouched. Errors are per-frame; callers absorb them.
func (r *Resizer) Process(jpeg []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("pose: decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("pose: empty frame")
	}

	if img.Cols() <= r.width && img.Rows() <= r.height {
		return jpeg, nil
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(img, &small, image.Pt(r.width, r.height), 0, 0, gocv.InterpolationArea)

	buf, err := gocv.IMEncode(".jpg", small)
	if err != nil {
		return nil, fmt.Errorf("pose: encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

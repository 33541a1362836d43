package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wavespeak/go-wavespeak/internal/httpc"
)

// DefaultDetectTimeout bounds one detection round trip. Detection runs on
// the ingestion path, so a slow service must fail fast.
const DefaultDetectTimeout = 2 * time.Second

// Remote calls a hand-landmark service over HTTP. The service accepts a
// JPEG body and answers with the landmark JSON for the most confident hand,
// or an empty landmark list when no hand is visible.
type Remote struct {
	url    string
	client *http.Client
	closed bool
}

// RemoteOption configures a Remote detector.
type RemoteOption func(*Remote)

// WithDetectTimeout sets the per-request timeout.
func WithDetectTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) { r.client = httpc.NewClient(d) }
}

// NewRemote creates a detector backed by a landmark service.
func NewRemote(serviceURL string, opts ...RemoteOption) (*Remote, error) {
	if serviceURL == "" {
		return nil, ErrNoService
	}
	r := &Remote{
		url:    serviceURL,
		client: httpc.NewClient(DefaultDetectTimeout),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// detectResponse is the service's wire format.
type detectResponse struct {
	Landmarks []Landmark `json:"landmarks"`
	Score     float64    `json:"score"`
}

// Detect posts the frame and decodes the landmark response.
func (r *Remote) Detect(jpeg []byte) (*Pose, error) {
	if r.closed {
		return nil, ErrDetectorClosed
	}

	resp, err := r.client.Post(r.url, "image/jpeg", bytes.NewReader(jpeg))
	if err != nil {
		return nil, fmt.Errorf("pose: detect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose: detect service returned status %d", resp.StatusCode)
	}

	var dr detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("pose: decode detect response: %w", err)
	}

	if len(dr.Landmarks) == 0 {
		return nil, nil // no hand in frame
	}
	return &Pose{Landmarks: dr.Landmarks, Score: dr.Score}, nil
}

// Close releases the detector.
func (r *Remote) Close() error {
	r.closed = true
	return nil
}

// Verify Remote implements Detector at compile time.
var _ Detector = (*Remote)(nil)

package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/wavespeak/go-wavespeak/internal/httpc"
	"github.com/wavespeak/go-wavespeak/internal/log"
)

// Remote is a Recognizer backed by a companion speech gateway. The
// gateway owns the microphone: one POST triggers capture plus
// transcription of a single utterance and returns the text.
type Remote struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// RemoteOption configures a Remote recognizer.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// NewRemote creates a recognizer pointed at the gateway's listen
// endpoint.
func NewRemote(url string, opts ...RemoteOption) (*Remote, error) {
	if url == "" {
		return nil, fmt.Errorf("speech: recognizer URL required")
	}
	r := &Remote{
		url: url,
		// Capturing an utterance takes as long as the speaker does,
		// so the request runs well past the default timeout.
		client: httpc.NewClient(httpc.LongTimeout),
		logger: log.Component("speech.recognizer"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type listenRequest struct {
	Language string `json:"language"`
}

type listenResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Listen asks the gateway to capture and transcribe one utterance.
// A 408 maps to ErrTimeout, a 422 to ErrNotUnderstood.
func (r *Remote) Listen(ctx context.Context, lang string) (string, error) {
	body, err := json.Marshal(listenRequest{Language: lang})
	if err != nil {
		return "", fmt.Errorf("speech: marshal listen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("speech: build listen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &ServiceError{Service: "recognizer", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusRequestTimeout:
		return "", ErrTimeout
	case http.StatusUnprocessableEntity:
		return "", ErrNotUnderstood
	default:
		io.Copy(io.Discard, resp.Body)
		return "", &ServiceError{Service: "recognizer", StatusCode: resp.StatusCode}
	}

	var lr listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return "", fmt.Errorf("speech: decode listen response: %w", err)
	}
	if lr.Text == "" {
		return "", ErrNotUnderstood
	}

	r.logger.Debug("transcribed utterance", "lang", lang, "chars", len(lr.Text))
	return lr.Text, nil
}

// Close releases recognizer resources.
func (r *Remote) Close() error {
	return nil
}

// Verify Remote implements Recognizer at compile time.
var _ Recognizer = (*Remote)(nil)

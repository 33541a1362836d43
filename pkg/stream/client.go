package stream

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG for DecodeConfig
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wavespeak/go-wavespeak/internal/httpc"
	"github.com/wavespeak/go-wavespeak/internal/log"
)

// Default tuning for the stream client.
const (
	DefaultChunkSize    = 2048
	DefaultProbeTimeout = 3 * time.Second
)

// Client pulls an MJPEG byte stream from a camera endpoint and demuxes it
// into Frames. One Client serves one endpoint at a time; Run is not
// reentrant. SetURL retargets the client for the next Probe/Run.
type Client struct {
	mu           sync.RWMutex
	url          string
	chunkSize    int
	maxBuffer    int
	probeTimeout time.Duration

	// streaming client has no overall timeout; the body is long-lived
	httpClient  *http.Client
	probeClient *http.Client

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithChunkSize sets the read chunk size.
func WithChunkSize(n int) Option {
	return func(c *Client) { c.chunkSize = n }
}

// WithMaxBuffer sets the demux accumulator cap.
func WithMaxBuffer(n int) Option {
	return func(c *Client) { c.maxBuffer = n }
}

// WithProbeTimeout sets the reachability probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) { c.probeTimeout = d }
}

// WithHTTPClient overrides the streaming HTTP client (for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a stream client for the given endpoint URL.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:          url,
		chunkSize:    DefaultChunkSize,
		maxBuffer:    DefaultMaxBuffer,
		probeTimeout: DefaultProbeTimeout,
		httpClient:   httpc.NewStreamingClient(),
		logger:       log.Component("stream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.probeClient = httpc.NewClient(c.probeTimeout)
	return c
}

// URL returns the endpoint this client reads from.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url
}

// SetURL retargets the client. In-flight runs keep their connection;
// the new endpoint applies to the next Probe or Run.
func (c *Client) SetURL(url string) {
	c.mu.Lock()
	c.url = url
	c.mu.Unlock()
}

// Probe checks endpoint reachability with a short HEAD request.
// It is the synchronous pre-flight the pipeline runs before starting any
// background work. Failure is returned as a *ConnError.
func (c *Client) Probe(ctx context.Context) error {
	url := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return &ConnError{URL: url, Cause: err}
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return &ConnError{URL: url, Cause: err}
	}
	resp.Body.Close()
	return nil
}

// Run connects to the endpoint and emits demuxed frames to emit until the
// context is cancelled, emit returns false, or the stream fails.
//
// Connect-time failures (dial refused, timeout, non-200 status) return a
// *ConnError before any frame is emitted. Mid-stream read failures return a
// *StreamError. Framing errors are absorbed: the buffer is dropped and the
// scan resyncs on the next start marker.
func (c *Client) Run(ctx context.Context, emit func(Frame) bool) error {
	url := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ConnError{URL: url, Cause: err}
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ConnError{URL: url, Cause: fmt.Errorf("%w: status %d", ErrNotStreaming, resp.StatusCode)}
	}

	c.logger.Info("stream connected", "url", url)

	demux := NewDemuxer(c.maxBuffer)
	chunk := make([]byte, c.chunkSize)
	var seq uint64

	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			frames, ferr := demux.Push(chunk[:n])
			if ferr != nil {
				// Recovered internally: drop and resync.
				c.logger.Warn("framing lost, resyncing", "error", ferr)
			}
			for _, data := range frames {
				frame, ok := c.decode(data, seq)
				if !ok {
					continue
				}
				seq++
				if !emit(frame) {
					c.logger.Info("stream stopped by consumer", "frames", seq)
					return nil
				}
			}
		}

		if readErr != nil {
			if ctx.Err() != nil {
				c.logger.Info("stream cancelled", "frames", seq)
				return nil
			}
			if readErr == io.EOF {
				readErr = io.ErrUnexpectedEOF
			}
			return &StreamError{Cause: readErr}
		}

		select {
		case <-ctx.Done():
			c.logger.Info("stream cancelled", "frames", seq)
			return nil
		default:
		}
	}
}

// decode validates a demuxed byte run as a JPEG and wraps it in a Frame.
// Undecodable runs are dropped; one bad frame never stops the stream.
func (c *Client) decode(data []byte, seq uint64) (Frame, bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.logger.Debug("dropping undecodable frame", "bytes", len(data), "error", err)
		return Frame{}, false
	}
	return Frame{
		Data:      data,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Seq:       seq,
		Timestamp: time.Now(),
	}, true
}

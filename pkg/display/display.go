// Package display delivers text to the remote companion display.
//
// Two transports are supported: a WebSocket push (connect, write one
// text frame, close) and an HTTP POST carrying {"text": ...}. The
// channel trips on the first delivery failure and refuses further sends
// until a caller resets it, so a dead display costs one failed attempt
// rather than one per gesture.
package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wavespeak/go-wavespeak/internal/httpc"
	"github.com/wavespeak/go-wavespeak/internal/log"
)

// Transport selects the delivery mechanism.
type Transport string

// Supported transports.
const (
	TransportWebSocket Transport = "websocket"
	TransportHTTP      Transport = "http"
)

// ParseTransport validates a transport name.
func ParseTransport(s string) (Transport, error) {
	switch Transport(s) {
	case TransportWebSocket, TransportHTTP:
		return Transport(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTransport, s)
}

// MaxTextLen is the display's line capacity in runes. Callers truncate
// to it before sending; the channel delivers text as given.
const MaxTextLen = 80

// Default transport timeouts.
const (
	DefaultDialTimeout = 2 * time.Second
	DefaultPostTimeout = 3 * time.Second
)

// Channel sends text to the display over the configured transport.
// Safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	transport Transport
	address   string
	available bool

	dialer *websocket.Dialer
	client *http.Client
	logger *slog.Logger
}

// Option configures a Channel.
type Option func(*Channel)

// WithDialer overrides the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithHTTPClient overrides the HTTP client used for POST delivery.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Channel) { c.client = h }
}

// NewChannel creates a display channel. For TransportWebSocket the
// address is a ws:// URL; for TransportHTTP it is the full POST URL.
// A new channel starts available.
func NewChannel(transport Transport, address string, opts ...Option) *Channel {
	c := &Channel{
		transport: transport,
		address:   address,
		available: true,
		dialer: &websocket.Dialer{
			HandshakeTimeout: DefaultDialTimeout,
		},
		client: httpc.NewClient(DefaultPostTimeout),
		logger: log.Component("display"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers one message to the display, as given. A tripped channel
// returns ErrUnavailable without touching the network; a delivery
// failure trips the channel and returns a *TransportError.
func (c *Channel) Send(text string) error {
	c.mu.Lock()
	if !c.available {
		c.mu.Unlock()
		return ErrUnavailable
	}
	transport, address := c.transport, c.address
	c.mu.Unlock()

	var err error
	switch transport {
	case TransportWebSocket:
		err = c.sendWS(address, text)
	case TransportHTTP:
		err = c.sendHTTP(address, text)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}

	if err != nil {
		c.mu.Lock()
		c.available = false
		c.mu.Unlock()
		c.logger.Warn("display send failed, channel marked unavailable",
			"transport", transport,
			"address", address,
			"error", err,
		)
		return &TransportError{Transport: transport, Address: address, Cause: err}
	}

	c.logger.Debug("display message sent", "transport", transport, "chars", len(text))
	return nil
}

// sendWS connects, writes one text frame, and closes. The display
// treats every frame as a full-screen replace, so there is no value in
// holding the connection open between gestures.
func (c *Channel) sendWS(address, text string) error {
	conn, _, err := c.dialer.Dial(address, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(DefaultDialTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Channel) sendHTTP(address, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := c.client.Post(address, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Available reports whether the channel will attempt delivery.
func (c *Channel) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// ResetAvailability re-arms a tripped channel. Recovery is deliberate:
// only an explicit reset (typically a settings update) restores sends,
// never a timer.
func (c *Channel) ResetAvailability() {
	c.mu.Lock()
	c.available = true
	c.mu.Unlock()
	c.logger.Info("display availability reset")
}

// Configure swaps the transport and address, re-arming the channel.
func (c *Channel) Configure(transport Transport, address string) {
	c.mu.Lock()
	c.transport = transport
	c.address = address
	c.available = true
	c.mu.Unlock()
	c.logger.Info("display channel reconfigured", "transport", transport, "address", address)
}

// Target returns the current transport and address.
func (c *Channel) Target() (Transport, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport, c.address
}

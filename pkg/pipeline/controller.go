// Package pipeline owns the capture-to-dispatch lifecycle.
//
// A running pipeline is two loops joined by a single-slot FrameBuffer:
// the ingest loop pulls frames off the camera stream and walks every
// one through detection, classification, and dispatch; the presentation
// loop drains the newest frame from the buffer and publishes it to live
// viewers. Recognition never skips a frame; only the viewer feed is
// lossy.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/dispatch"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
	"github.com/wavespeak/go-wavespeak/pkg/pose"
	"github.com/wavespeak/go-wavespeak/pkg/stream"
)

// State is the pipeline lifecycle phase.
type State string

// Pipeline states. Starting covers the synchronous camera probe.
const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
)

// DefaultStopGrace bounds how long Stop waits for the loops to drain.
const DefaultStopGrace = 3 * time.Second

// FrameSource supplies camera frames. *stream.Client satisfies this.
type FrameSource interface {
	Probe(ctx context.Context) error
	Run(ctx context.Context, emit func(stream.Frame) bool) error
}

// Preprocessor prepares a frame for detection. *pose.Resizer satisfies
// this.
type Preprocessor interface {
	Process(jpeg []byte) ([]byte, error)
}

// GestureSink receives classified gestures. *dispatch.Dispatcher
// satisfies this.
type GestureSink interface {
	Offer(ctx context.Context, g gesture.Gesture) (dispatch.Invocation, bool)
}

// FramePublisher pushes raw frames to live viewers. Optional.
type FramePublisher interface {
	BroadcastBinary(data []byte)
}

// Status is a point-in-time snapshot for the control surface.
type Status struct {
	State           State  `json:"state"`
	SessionID       string `json:"session_id,omitempty"`
	FramesIngested  uint64 `json:"frames_ingested"`
	FramesPresented uint64 `json:"frames_presented"`
	FramesDropped   uint64 `json:"frames_dropped"`
	LastError       string `json:"last_error,omitempty"`
}

// Controller drives the pipeline lifecycle. Safe for concurrent use by
// the control surface.
type Controller struct {
	source     FrameSource
	pre        Preprocessor
	detector   pose.Detector
	classifier gesture.Classifier
	sink       GestureSink
	publisher  FramePublisher
	grace      time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	buffer    *FrameBuffer
	ingested  uint64
	presented uint64
	lastErr   error
}

// Option configures a Controller.
type Option func(*Controller)

// WithPreprocessor sets an optional frame preprocessor.
func WithPreprocessor(p Preprocessor) Option {
	return func(c *Controller) { c.pre = p }
}

// WithPublisher sets an optional live-frame publisher.
func WithPublisher(p FramePublisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithStopGrace overrides how long Stop waits for loop shutdown.
func WithStopGrace(d time.Duration) Option {
	return func(c *Controller) { c.grace = d }
}

// NewController wires the pipeline stages. Source, detector, classifier
// and sink are required.
func NewController(source FrameSource, detector pose.Detector, classifier gesture.Classifier, sink GestureSink, opts ...Option) *Controller {
	c := &Controller{
		source:     source,
		detector:   detector,
		classifier: classifier,
		sink:       sink,
		grace:      DefaultStopGrace,
		state:      StateStopped,
		logger:     log.Component("pipeline"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start probes the camera and, on success, launches the ingest and
// presentation loops. The probe runs synchronously so an unreachable
// camera fails Start directly instead of surfacing later as a stream
// error. Returns ErrAlreadyRunning unless the pipeline is stopped.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.state = StateStarting
	c.lastErr = nil
	c.mu.Unlock()

	if err := c.source.Probe(ctx); err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("camera probe failed", "error", err)
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	buffer := NewFrameBuffer()
	sessionID := uuid.New().String()

	c.mu.Lock()
	c.state = StateRunning
	c.sessionID = sessionID
	c.cancel = cancel
	c.wg = wg
	c.buffer = buffer
	c.ingested = 0
	c.presented = 0
	c.mu.Unlock()

	c.logger.Info("pipeline started", "session", sessionID)

	wg.Add(2)
	go c.ingestLoop(runCtx, wg, buffer, sessionID)
	go c.presentLoop(runCtx, wg, buffer, sessionID)
	return nil
}

// ingestLoop feeds the buffer from the camera stream and runs the
// recognition chain on every frame before pulling the next one. A
// stream failure tears the whole session down; the controller returns
// to stopped with the error recorded for the control surface.
func (c *Controller) ingestLoop(ctx context.Context, wg *sync.WaitGroup, buffer *FrameBuffer, sessionID string) {
	defer wg.Done()

	err := c.source.Run(ctx, func(f stream.Frame) bool {
		buffer.Put(f)
		c.inspect(ctx, f, sessionID)
		c.mu.Lock()
		c.ingested++
		c.mu.Unlock()
		return true
	})

	if err != nil && ctx.Err() == nil {
		c.logger.Error("camera stream failed", "session", sessionID, "error", err)
		c.fail(err)
	}
}

// inspect runs one frame through preprocess, detection, classification,
// and dispatch. Per-frame failures are logged and skipped; they never
// end the session.
func (c *Controller) inspect(ctx context.Context, frame stream.Frame, sessionID string) {
	data := frame.Data
	if c.pre != nil {
		processed, err := c.pre.Process(data)
		if err != nil {
			c.logger.Debug("preprocess failed, using raw frame", "error", err)
		} else {
			data = processed
		}
	}

	p, err := c.detector.Detect(data)
	if err != nil {
		c.logger.Debug("pose detection failed", "session", sessionID, "error", err)
		return
	}
	if p == nil {
		return
	}
	if g := c.classifier.Classify(p); g != gesture.None {
		c.sink.Offer(ctx, g)
	}
}

// presentLoop drains the newest frame and pushes it to live viewers.
// The single-slot buffer decouples the viewer feed from ingest: a slow
// viewer path sees stale frames dropped, never a backlog, and never
// stalls recognition.
func (c *Controller) presentLoop(ctx context.Context, wg *sync.WaitGroup, buffer *FrameBuffer, sessionID string) {
	defer wg.Done()

	for {
		frame, err := buffer.Get(ctx)
		if err != nil {
			return
		}

		if c.publisher != nil {
			c.publisher.BroadcastBinary(frame.Data)
		}

		c.mu.Lock()
		c.presented++
		c.mu.Unlock()
	}
}

// fail cancels the session from inside a loop.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	c.lastErr = err
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Stop cancels the session and waits up to the grace period for both
// loops to exit. Loops still running after the grace period are
// abandoned; they hold no resources beyond the stream connection, which
// dies with the cancelled context.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return ErrNotRunning
	}
	cancel := c.cancel
	wg := c.wg
	sessionID := c.sessionID
	c.state = StateStopped
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if wg != nil {
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(c.grace):
			c.logger.Warn("pipeline loops did not drain within grace period", "session", sessionID)
		}
	}

	c.logger.Info("pipeline stopped", "session", sessionID)
	return nil
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns a snapshot for the control surface.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		State:           c.state,
		FramesIngested:  c.ingested,
		FramesPresented: c.presented,
	}
	if c.state != StateStopped {
		s.SessionID = c.sessionID
	}
	if c.buffer != nil {
		_, s.FramesDropped = c.buffer.Stats()
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

package pipeline

import (
	"context"
	"sync"

	"github.com/wavespeak/go-wavespeak/pkg/stream"
)

// FrameBuffer is a single-slot mailbox between the ingest and
// presentation loops. Put never blocks: a frame already waiting is
// overwritten, so the presentation side always sees the newest frame
// and a slow detector costs staleness, never backlog.
type FrameBuffer struct {
	mu      sync.Mutex
	latest  *stream.Frame
	notify  chan struct{}
	puts    uint64
	dropped uint64
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		notify: make(chan struct{}, 1),
	}
}

// Put deposits a frame, replacing any frame not yet consumed.
func (b *FrameBuffer) Put(f stream.Frame) {
	b.mu.Lock()
	if b.latest != nil {
		b.dropped++
	}
	b.latest = &f
	b.puts++
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Get returns the newest frame, blocking until one arrives or ctx is
// cancelled.
func (b *FrameBuffer) Get(ctx context.Context) (stream.Frame, error) {
	for {
		b.mu.Lock()
		if b.latest != nil {
			f := *b.latest
			b.latest = nil
			b.mu.Unlock()
			return f, nil
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return stream.Frame{}, ctx.Err()
		case <-b.notify:
		}
	}
}

// Stats returns total deposits and frames overwritten before
// consumption.
func (b *FrameBuffer) Stats() (puts, dropped uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts, b.dropped
}

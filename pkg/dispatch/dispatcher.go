// Package dispatch gates classified gestures through a global cooldown
// and fires their mapped actions asynchronously.
//
// The cooldown is deliberately global rather than per-gesture: its job
// is to keep one held hand pose from machine-gunning actions, and a
// user switching poses mid-cooldown should not bypass it.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/actions"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
)

// Mapping resolves a gesture to its bound action. *actions.Registry
// satisfies this.
type Mapping interface {
	Get(g gesture.Gesture) actions.ActionName
}

// Executor runs one action body. *actions.Runner satisfies this.
type Executor interface {
	Run(ctx context.Context, name actions.ActionName) error
}

// State is the dispatcher's cooldown phase.
type State string

// Dispatcher states.
const (
	StateArmed   State = "armed"
	StateCooling State = "cooling"
)

// DefaultCooldown matches a comfortable gesture-and-hold rhythm.
const DefaultCooldown = time.Second

// Clock abstracts time for tests.
type Clock func() time.Time

// Invocation describes one accepted dispatch.
type Invocation struct {
	ID      string
	Gesture gesture.Gesture
	Action  actions.ActionName
}

// Dispatcher applies the cooldown and fires actions. Safe for
// concurrent use; Offer is called from the pipeline's presentation loop
// while the control surface reads state and adjusts the cooldown.
type Dispatcher struct {
	mapping Mapping
	exec    Executor
	logger  *slog.Logger
	now     Clock

	mu        sync.Mutex
	cooldown  time.Duration
	lastFired time.Time
	fired     uint64
	dropped   uint64

	singleFlight bool
	inFlight     map[actions.ActionName]bool

	wg sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCooldown overrides the initial cooldown window.
func WithCooldown(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.cooldown = d }
}

// WithClock injects a time source for tests.
func WithClock(c Clock) Option {
	return func(dp *Dispatcher) { dp.now = c }
}

// WithSingleFlight drops an accepted gesture when the same action is
// still running, instead of overlapping invocations.
func WithSingleFlight() Option {
	return func(dp *Dispatcher) { dp.singleFlight = true }
}

// New creates a dispatcher over a mapping and an executor.
func New(mapping Mapping, exec Executor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		mapping:  mapping,
		exec:     exec,
		cooldown: DefaultCooldown,
		now:      time.Now,
		inFlight: make(map[actions.ActionName]bool),
		logger:   log.Component("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Offer presents one classified gesture. None and unknown gestures are
// ignored without touching the cooldown. An accepted gesture stamps the
// cooldown first, then resolves its action, so a gesture mapped to
// none still arms the window. Returns the invocation and true when an
// action fires.
func (d *Dispatcher) Offer(ctx context.Context, g gesture.Gesture) (Invocation, bool) {
	if !g.Valid() {
		return Invocation{}, false
	}

	d.mu.Lock()
	now := d.now()
	if now.Sub(d.lastFired) < d.cooldown {
		d.dropped++
		d.mu.Unlock()
		return Invocation{}, false
	}
	d.lastFired = now
	d.fired++
	d.mu.Unlock()

	action := d.mapping.Get(g)
	if action == actions.ActionNone {
		d.logger.Debug("gesture accepted, no action bound", "gesture", g)
		return Invocation{}, false
	}

	if d.singleFlight {
		d.mu.Lock()
		if d.inFlight[action] {
			d.mu.Unlock()
			d.logger.Debug("action already in flight, skipping", "action", action)
			return Invocation{}, false
		}
		d.inFlight[action] = true
		d.mu.Unlock()
	}

	inv := Invocation{
		ID:      uuid.New().String(),
		Gesture: g,
		Action:  action,
	}

	d.logger.Info("dispatching action",
		"invocation", inv.ID,
		"gesture", g,
		"action", action,
	)

	// Fire and forget: a slow translate must not stall frame ingest.
	// Errors are logged, never propagated to the loop. The action runs
	// on a context detached from the caller's so a pipeline stop never
	// aborts it mid-flight; it completes or fails on its own, and
	// shutdown drains through Wait.
	actionCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if d.singleFlight {
			defer func() {
				d.mu.Lock()
				delete(d.inFlight, action)
				d.mu.Unlock()
			}()
		}
		if err := d.exec.Run(actionCtx, inv.Action); err != nil {
			d.logger.Error("action failed",
				"invocation", inv.ID,
				"action", inv.Action,
				"error", err,
			)
		}
	}()

	return inv, true
}

// State reports whether the dispatcher would accept a gesture now.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.now().Sub(d.lastFired) < d.cooldown {
		return StateCooling
	}
	return StateArmed
}

// Cooldown returns the current window.
func (d *Dispatcher) Cooldown() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cooldown
}

// SetCooldown adjusts the window at runtime. It applies to the next
// acceptance decision; an in-progress cooling period is re-evaluated
// against the new value.
func (d *Dispatcher) SetCooldown(cd time.Duration) {
	if cd < 0 {
		cd = 0
	}
	d.mu.Lock()
	d.cooldown = cd
	d.mu.Unlock()
	d.logger.Info("cooldown updated", "cooldown", cd)
}

// Stats returns accepted and dropped gesture counts.
func (d *Dispatcher) Stats() (fired, dropped uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fired, d.dropped
}

// Wait blocks until all in-flight action goroutines finish. Used during
// shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

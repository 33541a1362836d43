package actions

import (
	"log/slog"
	"sync"

	"github.com/wavespeak/go-wavespeak/internal/log"
	"github.com/wavespeak/go-wavespeak/pkg/gesture"
)

// Defaults returns the compiled-in gesture→action mapping.
func Defaults() map[gesture.Gesture]ActionName {
	return map[gesture.Gesture]ActionName{
		gesture.ThumbsUp: ActionTranslate,
		gesture.Peace:    ActionRepeat,
		gesture.Fist:     ActionStop,
		gesture.OpenPalm: ActionCycleLanguage,
		gesture.Pointing: ActionSendMessage,
		gesture.OKSign:   ActionNone,
		gesture.Pinch:    ActionNone,
	}
}

// Registry is the mutable gesture→action mapping. Keys are fixed to the
// known gesture set; values change at runtime through Set. It is safe for
// concurrent use: the dispatcher reads while settings edits write.
//
// In-memory state is the source of truth during a session; persistence
// failures are logged and never roll back a mutation.
type Registry struct {
	mu     sync.RWMutex
	m      map[gesture.Gesture]ActionName
	store  Store
	logger *slog.Logger
}

// NewRegistry creates a registry seeded from compiled-in defaults, merged
// with whatever the store has persisted. Persisted keys outside the fixed
// gesture set, and values outside the fixed action set, are ignored, so
// gesture keys added in a later version always appear with their defaults.
// A nil store disables persistence.
func NewRegistry(store Store) *Registry {
	r := &Registry{
		m:      Defaults(),
		store:  store,
		logger: log.Component("actions"),
	}

	if store == nil {
		return r
	}

	persisted, err := store.Load()
	if err != nil {
		r.logger.Warn("failed to load gesture mappings, using defaults", "error", err)
		return r
	}
	for k, v := range persisted {
		g, a := gesture.Gesture(k), ActionName(v)
		if !g.Valid() {
			r.logger.Debug("ignoring persisted mapping for unknown gesture", "gesture", k)
			continue
		}
		if !a.Valid() {
			r.logger.Debug("ignoring persisted mapping with unknown action", "gesture", k, "action", v)
			continue
		}
		r.m[g] = a
	}
	return r
}

// Get returns the action bound to a gesture. It is total: gestures with no
// explicit binding, including gestures unknown at lookup time, map to none.
func (r *Registry) Get(g gesture.Gesture) ActionName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.m[g]; ok {
		return a
	}
	return ActionNone
}

// Set binds a gesture to an action and persists the change. Both sides are
// validated against their fixed sets; failure leaves the map unchanged.
func (r *Registry) Set(g gesture.Gesture, a ActionName) error {
	if !g.Valid() || !a.Valid() {
		return &MappingError{Gesture: string(g), Action: string(a)}
	}

	r.mu.Lock()
	r.m[g] = a
	r.mu.Unlock()

	r.logger.Info("gesture mapping updated", "gesture", g, "action", a)
	r.persist()
	return nil
}

// ResetToDefaults restores the compiled-in mapping and persists it.
func (r *Registry) ResetToDefaults() {
	r.mu.Lock()
	r.m = Defaults()
	r.mu.Unlock()

	r.logger.Info("gesture mappings reset to defaults")
	r.persist()
}

// Snapshot returns a copy of the current mapping.
func (r *Registry) Snapshot() map[gesture.Gesture]ActionName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[gesture.Gesture]ActionName, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}

// Save persists the current mapping. Called on shutdown; mutations persist
// themselves as they happen.
func (r *Registry) Save() error {
	if r.store == nil {
		return nil
	}

	r.mu.RLock()
	kv := make(map[string]string, len(r.m))
	for k, v := range r.m {
		kv[string(k)] = string(v)
	}
	r.mu.RUnlock()

	return r.store.Save(kv)
}

// persist saves after a mutation, logging failure without rolling back.
func (r *Registry) persist() {
	if r.store == nil {
		return
	}
	if err := r.Save(); err != nil {
		r.logger.Warn("failed to persist gesture mappings", "error", err)
	}
}

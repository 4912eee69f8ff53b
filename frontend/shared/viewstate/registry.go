package viewstate

import (
	"log/slog"
	"sync"
)

// Registry keeps screens per operator session. Dropping a session discards
// every screen it owned.
type Registry struct {
	mu      sync.Mutex
	screens map[string]map[string]any

	// OnStale is called with the screen key whenever a superseded load is
	// discarded.
	OnStale func(key string)
}

func NewRegistry() *Registry {
	return &Registry{screens: make(map[string]map[string]any)}
}

// Get returns the session's screen under key, creating it on first use.
func Get[T any](r *Registry, session, key string) *Screen[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned, ok := r.screens[session]
	if !ok {
		owned = make(map[string]any)
		r.screens[session] = owned
	}
	if existing, ok := owned[key].(*Screen[T]); ok {
		return existing
	}
	s := NewScreen[T](key)
	s.onStale = r.OnStale
	owned[key] = s
	return s
}

// Drop discards every screen owned by session.
func (r *Registry) Drop(session string) {
	r.mu.Lock()
	n := len(r.screens[session])
	delete(r.screens, session)
	r.mu.Unlock()
	if n > 0 {
		slog.Debug("screens dropped", slog.Int("count", n))
	}
}

// Len reports how many screens session owns.
func (r *Registry) Len(session string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens[session])
}

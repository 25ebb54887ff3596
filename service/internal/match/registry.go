// internal/match/registry.go
package match

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks live and recently finished matches by ID.
type Registry struct {
	mu      sync.RWMutex
	matches map[uuid.UUID]*Match
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{matches: make(map[uuid.UUID]*Match)}
}

// Add registers m under its ID.
func (r *Registry) Add(m *Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = m
}

// Get returns the match with id, if any.
func (r *Registry) Get(id uuid.UUID) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[id]
	return m, ok
}

// Remove forgets the match with id.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, id)
}

// Len returns the number of registered matches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// All returns a snapshot of the registered matches.
func (r *Registry) All() []*Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	return out
}

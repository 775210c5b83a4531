package state

import (
	"log"
	"sync"
)

// Registry is the set of all strokes instantiated in the scene, live or
// soft-deleted. It allows a single writer and concurrent readers.
type Registry struct {
	strokes map[string]*Stroke
	order   []string
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strokes: make(map[string]*Stroke),
	}
}

// Add registers a stroke and returns false if a stroke with the same ID is
// already present.
func (r *Registry) Add(s *Stroke) bool {
	if s == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strokes[s.ID]; exists {
		log.Printf("[REGISTRY] Stroke %s already registered, ignoring", s.ID)
		return false
	}
	r.strokes[s.ID] = s
	r.order = append(r.order, s.ID)

	log.Printf("[REGISTRY] Stroke added: %s (%d points)", s.ID, s.Len())
	return true
}

func (r *Registry) Get(id string) (*Stroke, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strokes[id]
	return s, ok
}

// All returns every stroke in insertion order.
func (r *Registry) All() []*Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Stroke, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.strokes[id])
	}
	return out
}

// Live returns the strokes that are not soft-deleted, in insertion order.
func (r *Registry) Live() []*Stroke {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Stroke, 0, len(r.order))
	for _, id := range r.order {
		if s := r.strokes[id]; s.Live() {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

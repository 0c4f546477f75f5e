package state

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry keeps the live sessions. Sessions idle for longer than the TTL,
// or least recently used beyond capacity, are dropped.
type Registry struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *AppState]
	create   func(id string) *AppState
}

// NewRegistry builds a registry that calls create for unknown ids.
func NewRegistry(capacity int, ttl time.Duration, create func(id string) *AppState) *Registry {
	if capacity <= 0 {
		capacity = 512
	}
	return &Registry{
		sessions: expirable.NewLRU[string, *AppState](capacity, nil, ttl),
		create:   create,
	}
}

// Get returns the session for id, creating it when absent. created reports
// whether the session is new. Every access restarts the idle TTL.
func (r *Registry) Get(id string) (st *AppState, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions.Get(id)
	if !ok {
		st = r.create(id)
		created = true
	}
	r.sessions.Add(id, st)
	return st, created
}

// Remove drops a session.
func (r *Registry) Remove(id string) {
	r.sessions.Remove(id)
}

// Len counts live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

package analytics

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the JSON encoding of parts. Values that encode the same
// share a fingerprint.
func Fingerprint(parts ...any) (uint64, error) {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for _, part := range parts {
		if err := enc.Encode(part); err != nil {
			return 0, err
		}
	}
	return d.Sum64(), nil
}

// Memo caches the most recent result of a derivation. A new key replaces
// the cached value, so repeated renders over unchanged inputs reuse it.
type Memo[V any] struct {
	mu     sync.Mutex
	key    string
	value  V
	filled bool
	hits   int
	misses int
}

// Get returns the cached value for key or computes and stores it.
func (m *Memo[V]) Get(key string, compute func() V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filled && m.key == key {
		m.hits++
		return m.value
	}
	m.misses++
	m.value = compute()
	m.key = key
	m.filled = true
	return m.value
}

// Reset drops the cached value.
func (m *Memo[V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero V
	m.value = zero
	m.key = ""
	m.filled = false
}

// Stats reports cache hits and misses.
func (m *Memo[V]) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

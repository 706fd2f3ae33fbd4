// Package cache memoizes complete research payloads by query content.
//
// Entries expire lazily: an expired entry is deleted the moment a read
// finds it, and there is no background sweeper. The cache is process-scoped
// and never persisted.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/HendryAvila/scout/internal/query"
)

// TTL is how long a cached payload stays valid.
const TTL = time.Hour

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
var timeNow = time.Now

// Store is the cache seen by the orchestrator. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the payload for key, or false on a miss (including expiry).
	Get(key string) (string, bool)
	// Put stores payload under key, replacing any previous entry.
	Put(key, payload string)
}

// Key derives a deterministic cache key from every query field that
// influences the stored payload — including the output format, since the
// payload shape depends on it. Fields are serialized through a map so the
// representation is independent of declaration order.
func Key(q query.SearchQuery) string {
	canonical, _ := json.Marshal(map[string]string{
		"language":      q.Language,
		"topic":         q.Topic,
		"goal":          q.Goal,
		"current_setup": q.CurrentSetup,
		"format":        string(q.Format),
	})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

type entry struct {
	payload   string
	createdAt time.Time
}

// MemoryStore is the in-memory Store implementation. Growth is unbounded
// across the process lifetime; expired entries are only reclaimed when
// read again.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

// NewMemoryStore creates a MemoryStore with the standard TTL.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ttl:     TTL,
		entries: make(map[string]entry),
	}
}

// Get implements Store. An entry at or past its TTL is deleted and
// reported as a miss.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if timeNow().Sub(e.createdAt) >= s.ttl {
		delete(s.entries, key)
		return "", false
	}
	return e.payload, true
}

// Put implements Store. A write always replaces the whole entry.
func (s *MemoryStore) Put(key, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{payload: payload, createdAt: timeNow()}
}

// Len reports the number of live-or-stale entries currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

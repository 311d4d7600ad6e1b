package cpe

import (
	"sync"
	"time"
)

// CacheEntry pairs a cached catalog payload with its insertion time (spec
// §3). An entry is fresh while now-insertedAt < TTL.
type CacheEntry struct {
	Payload   CatalogResult
	InsertedAt time.Time
}

// CacheStore is the pluggable storage behind the §4.E cache half. The
// default MemoryStore satisfies spec §3's lifecycle ("lives for the
// process lifetime, bounded by TTL-based eviction on next lookup");
// internal/cachestore.SurrealStore is an optional persistent alternative
// (see SPEC_FULL.md §9).
type CacheStore interface {
	// Get returns the cached payload for key if a fresh entry exists.
	Get(key string, ttl time.Duration) (CatalogResult, bool)
	// Set stores payload for key with the current time as InsertedAt.
	Set(key string, payload CatalogResult)
}

// MemoryStore is a process-wide, mutex-protected in-memory CacheStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached payload for key, evicting it first if it has
// expired per ttl.
func (s *MemoryStore) Get(key string, ttl time.Duration) (CatalogResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return CatalogResult{}, false
	}
	if s.now().Sub(entry.InsertedAt) >= ttl {
		delete(s.entries, key)
		return CatalogResult{}, false
	}
	return entry.Payload, true
}

// Set stores payload for key, stamped with the current time.
func (s *MemoryStore) Set(key string, payload CatalogResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = CacheEntry{Payload: payload, InsertedAt: s.now()}
}

// Clear removes all entries. Mainly useful in tests.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]CacheEntry)
}

// fingerprint builds the canonical cache key for a query, per spec §4.E:
// "a canonical fingerprint of (exactCpeOrEmpty, keywordOrEmpty)".
func fingerprint(exactCPE, keyword string) string {
	return "exact=" + exactCPE + "|keyword=" + keyword
}

// Package session provides a bounded, TTL-evicted store for short-lived
// per-session state. Entries are keyed by an opaque session id and never
// outlive their TTL; when the store is full the oldest entry is dropped.
package session

import (
	"sync"
	"time"
)

// Store holds per-session values of type T.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]entry[T]
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// NewStore creates a store with the given TTL and capacity.
// A capacity of zero or below disables the bound.
func NewStore[T any](ttl time.Duration, capacity int) *Store[T] {
	return &Store[T]{
		entries:  make(map[string]entry[T]),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Put stores a value under the session id, replacing any previous value.
func (s *Store[T]) Put(id string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.entries) >= s.capacity {
		if _, exists := s.entries[id]; !exists {
			s.evictOldestLocked()
		}
	}

	s.entries[id] = entry[T]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Get returns the value for the session id if present and unexpired.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.now().After(e.expiresAt) {
		var zero T
		delete(s.entries, id)
		return zero, false
	}
	return e.value, true
}

// Delete removes the value for the session id.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Purge removes all expired entries and returns how many were dropped.
func (s *Store[T]) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged
}

// Len returns the number of stored entries, expired or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	first := true
	for id, e := range s.entries {
		if first || e.expiresAt.Before(oldest) {
			oldestID = id
			oldest = e.expiresAt
			first = false
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

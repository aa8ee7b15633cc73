package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     *Entry
	expiresAt time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu              sync.RWMutex
	items           map[string]memoryItem
	lastCleanup     time.Time
	cleanupInterval time.Duration
	now             func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:           make(map[string]memoryItem),
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string {
	return "memory"
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[key]
	if !ok || s.now().After(item.expiresAt) {
		return nil, false, nil
	}
	return item.entry, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = memoryItem{entry: entry, expiresAt: s.now().Add(retention)}
	s.cleanupIfNeeded()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// cleanupIfNeeded drops expired entries once per cleanup interval.
// Callers hold the write lock.
func (s *MemoryStore) cleanupIfNeeded() {
	now := s.now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	for key, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, key)
		}
	}
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"investigation-canvas/infrastructure/persistence"
)

// Store keeps encoded scenes in process memory
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.items[key]
	if !exists {
		return nil, persistence.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value under key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a value
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, key)
	return nil
}

// Keys returns the stored keys with the given prefix, sorted
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes all values
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string][]byte)
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

var _ persistence.Backend = (*Store)(nil)

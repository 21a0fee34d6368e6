package storage

import (
	"context"
	"maps"
	"sync"
)

// MemoryStorage keeps values in a map. Useful for tests and ephemeral sessions.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}
	v, ok := s.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.items, key)
	return nil
}

// Snapshot returns a copy of all stored keys and values.
func (s *MemoryStorage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.items)
}

func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

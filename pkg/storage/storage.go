package storage

import "context"

// Storage is a durable string key-value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// GetItem returns the value stored under key or ErrNotFound.
	GetItem(ctx context.Context, key string) (string, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Close releases resources held by the storage.
	Close() error
}

package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

const (
	DefaultQueueName  = "mutation_queue"
	DefaultNamespace  = "anon"
	DefaultMaxEntries = 100
)

// Store records and lists evicted mutations.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, namespace string) ([]Entry, error)
	Purge(ctx context.Context, namespace string) error
}

// Option configures a KVStore.
type Option func(*KVStore)

// WithQueueName sets the queue name used to derive storage keys.
func WithQueueName(name string) Option {
	return func(s *KVStore) {
		if name = strings.TrimSpace(name); name != "" {
			s.queueName = name
		}
	}
}

// WithMaxEntries caps entries kept per namespace. Non-positive values are ignored.
func WithMaxEntries(n int) Option {
	return func(s *KVStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *KVStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// KVStore is a Store on top of a key-value storage.Storage.
type KVStore struct {
	storage    storage.Storage
	queueName  string
	maxEntries int
	logger     *slog.Logger
	mu         sync.Mutex
}

// NewStore creates a dead letter store. It panics on a nil storage.
func NewStore(s storage.Storage, opts ...Option) *KVStore {
	if s == nil {
		panic(ErrStorageNil)
	}
	st := &KVStore{
		storage:    s,
		queueName:  DefaultQueueName,
		maxEntries: DefaultMaxEntries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Key returns the storage key holding entries for namespace.
func (s *KVStore) Key(namespace string) string {
	return s.queueName + "-deadletter:" + normalizeNamespace(namespace)
}

// Record appends e to its namespace list. A corrupted list is replaced.
func (s *KVStore) Record(ctx context.Context, e Entry) error {
	if e.Mutation.ID == "" && e.ID == "" {
		return ErrMissingID
	}
	if e.ID == "" {
		e.ID = e.Mutation.ID
	}
	e.Namespace = normalizeNamespace(e.Namespace)

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.Key(e.Namespace)
	entries, err := s.read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCorrupted) {
			return errors.Join(ErrRecordFailed, err)
		}
		s.logger.WarnContext(ctx, "discarding corrupted dead letter list",
			logger.StorageKey(key),
			logger.Error(err))
		entries = nil
	}

	entries = append(entries, e)
	if over := len(entries) - s.maxEntries; over > 0 {
		entries = entries[over:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	if err := s.storage.SetItem(ctx, key, string(data)); err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	return nil
}

// List returns entries for namespace, oldest first.
func (s *KVStore) List(ctx context.Context, namespace string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, s.Key(namespace))
}

// Purge removes every entry for namespace.
func (s *KVStore) Purge(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.RemoveItem(ctx, s.Key(namespace))
}

func (s *KVStore) read(ctx context.Context, key string) ([]Entry, error) {
	raw, err := s.storage.GetItem(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Entry{}, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func normalizeNamespace(ns string) string {
	if ns = strings.TrimSpace(ns); ns == "" {
		return DefaultNamespace
	}
	return ns
}

package syncqueue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// Queue is a persisted FIFO of pending mutations for one active namespace.
// It is safe for concurrent use.
type Queue struct {
	storage     storage.Storage
	name        string
	maxAttempts int
	logger      *slog.Logger
	deadLetter  deadletter.Store
	metrics     *metrics
	now         func() time.Time
	shared      bool

	mu         sync.Mutex
	namespace  string
	items      []mutation.PendingMutation
	loaded     bool
	generation uint64

	processing atomic.Bool
	hook       atomic.Pointer[Hook]
}

// New creates a queue on top of s. A nil storage falls back to an
// in-memory one, which keeps the queue usable but not durable.
func New(s storage.Storage, opts ...Option) *Queue {
	q := &Queue{
		storage:     s,
		name:        DefaultQueueName,
		namespace:   DefaultNamespace,
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With(logger.Component("syncqueue"))
	if q.storage == nil {
		q.logger.Warn("no storage configured, mutations will not survive a restart")
		q.storage = storage.NewMemoryStorage()
	}
	return q
}

// Key returns the storage key of the active namespace.
func (q *Queue) Key() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.keyLocked()
}

// MaxAttempts returns the number of failed executions before eviction.
func (q *Queue) MaxAttempts() int {
	return q.maxAttempts
}

// Load reads the active namespace's persisted queue into memory.
// Repeated calls are no-ops until the namespace changes. Missing or
// corrupted data yields an empty queue.
func (q *Queue) Load(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ensureLoadedLocked(ctx)
}

// Enqueue appends a mutation built from payload and persists the queue.
// It fails for an invalid payload or one that cannot be encoded, leaving the
// queue untouched; storage failures are logged.
func (q *Queue) Enqueue(ctx context.Context, payload mutation.Payload) (string, error) {
	m, err := mutation.NewAt(payload, q.now())
	if err != nil {
		return "", err
	}

	q.mu.Lock()
	q.ensureLoadedLocked(ctx)
	// keep timestamps non-decreasing in queue order even if the clock steps back
	if n := len(q.items); n > 0 && m.Timestamp.Before(q.items[n-1].Timestamp) {
		m.Timestamp = q.items[n-1].Timestamp
	}
	// an unencodable record never enters the queue
	items := append(slices.Clone(q.items), m)
	data, err := mutation.MarshalList(items)
	if err != nil {
		q.mu.Unlock()
		return "", errors.Join(ErrEncodeFailed, err)
	}
	q.items = items
	key := q.keyLocked()
	if err := q.storage.SetItem(ctx, key, string(data)); err != nil {
		q.logStorageErr(ctx, "write", key, err)
	}
	q.metrics.setPending(len(items))
	count := len(items)
	q.mu.Unlock()

	q.logger.DebugContext(ctx, "mutation enqueued",
		logger.MutationID(m.ID),
		logger.MutationType(m.Type),
		slog.Int("pending", count))

	return m.ID, nil
}

// Dequeue removes the mutation with id. Unknown ids are ignored.
func (q *Queue) Dequeue(ctx context.Context, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ensureLoadedLocked(ctx)
	q.removeLocked(ctx, id)
}

// IncrementRetry bumps the retry counter of the mutation with id.
// Unknown ids are ignored.
func (q *Queue) IncrementRetry(ctx context.Context, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ensureLoadedLocked(ctx)
	q.incrementLocked(ctx, id)
}

// Pending returns a copy of the queued mutations in FIFO order.
func (q *Queue) Pending(ctx context.Context) []mutation.PendingMutation {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ensureLoadedLocked(ctx)
	return slices.Clone(q.items)
}

// Count returns the number of queued mutations.
func (q *Queue) Count(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ensureLoadedLocked(ctx)
	return len(q.items)
}

// Clear drops every queued mutation and removes the persisted entry.
func (q *Queue) Clear(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
	q.loaded = true
	key := q.keyLocked()
	if err := q.storage.RemoveItem(ctx, key); err != nil {
		q.logStorageErr(ctx, "remove", key, err)
	}
	q.metrics.setPending(0)
	q.logger.InfoContext(ctx, "queue cleared", logger.StorageKey(key))
}

func (q *Queue) keyLocked() string {
	return q.name + ":" + q.namespace
}

// Reload drops the in-memory queue and reads the active namespace again,
// picking up mutations other writers persisted under the same key.
func (q *Queue) Reload(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.loaded = false
	q.items = nil
	q.ensureLoadedLocked(ctx)
}

// ensureLoadedLocked reads the persisted queue once per activation, or before
// every operation in shared mode. A failed re-read keeps the current items
// so a transient storage error never wipes the queue on the next write.
func (q *Queue) ensureLoadedLocked(ctx context.Context) {
	if q.loaded && !q.shared {
		return
	}
	items, err := q.readLocked(ctx)
	if err != nil {
		q.logStorageErr(ctx, "read", q.keyLocked(), err)
		if q.loaded {
			return
		}
	}
	q.items = items
	q.loaded = true
	q.metrics.setPending(len(items))
}

// readLocked returns the persisted queue. It always yields a usable slice,
// even alongside an error.
func (q *Queue) readLocked(ctx context.Context) ([]mutation.PendingMutation, error) {
	key := q.keyLocked()
	raw, err := q.storage.GetItem(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	items, err := mutation.UnmarshalList([]byte(raw))
	if err != nil {
		q.logger.WarnContext(ctx, "persisted queue is corrupted, starting empty",
			logger.StorageKey(key),
			logger.Error(err))
		return nil, nil
	}
	return items, nil
}

func (q *Queue) persistLocked(ctx context.Context) {
	key := q.keyLocked()
	if err := q.writeLocked(ctx, key); err != nil {
		q.logStorageErr(ctx, "write", key, err)
	}
	q.metrics.setPending(len(q.items))
}

func (q *Queue) writeLocked(ctx context.Context, key string) error {
	data, err := mutation.MarshalList(q.items)
	if err != nil {
		return err
	}
	return q.storage.SetItem(ctx, key, string(data))
}

func (q *Queue) removeLocked(ctx context.Context, id string) bool {
	idx := q.indexLocked(id)
	if idx < 0 {
		return false
	}
	q.items = slices.Delete(q.items, idx, idx+1)
	q.persistLocked(ctx)
	return true
}

func (q *Queue) incrementLocked(ctx context.Context, id string) bool {
	idx := q.indexLocked(id)
	if idx < 0 {
		return false
	}
	q.items[idx].RetryCount++
	q.persistLocked(ctx)
	return true
}

func (q *Queue) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(q.items, func(m mutation.PendingMutation) bool {
		return m.ID == id
	})
}

// logStorageErr is the single boundary where storage failures are
// swallowed: the queue keeps working in memory.
func (q *Queue) logStorageErr(ctx context.Context, op, key string, err error) {
	q.logger.ErrorContext(ctx, "queue storage "+op+" failed",
		logger.StorageKey(key),
		logger.Error(err))
}

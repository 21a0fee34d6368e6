package syncqueue

import (
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
)

const (
	DefaultQueueName   = "mutation_queue"
	DefaultNamespace   = "anon"
	DefaultMaxAttempts = 3
)

// Option configures a Queue.
type Option func(*Queue)

// WithQueueName sets the prefix of storage keys ("<name>:<namespace>").
func WithQueueName(name string) Option {
	return func(q *Queue) {
		if name = strings.TrimSpace(name); name != "" {
			q.name = name
		}
	}
}

// WithNamespace sets the namespace active right after construction.
func WithNamespace(ns string) Option {
	return func(q *Queue) {
		q.namespace = normalizeNamespace(ns)
	}
}

// WithMaxAttempts sets how many failed executions a mutation gets before
// eviction. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithDeadLetter records evicted mutations in store.
func WithDeadLetter(store deadletter.Store) Option {
	return func(q *Queue) {
		q.deadLetter = store
	}
}

// WithMetrics registers the queue's Prometheus collectors with reg.
// It panics if collectors with the same names are already registered.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(q *Queue) {
		if reg != nil {
			q.metrics = newMetrics(reg)
		}
	}
}

// WithSharedStorage makes every operation re-read the persisted queue before
// changing it, so several processes can work on the same storage key: a
// long-running drainer sees mutations enqueued by others and its writes keep
// them. Reads and writes are not atomic across processes.
func WithSharedStorage() Option {
	return func(q *Queue) {
		q.shared = true
	}
}

// WithClock overrides the time source used for mutation timestamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithOnMutationProcessed installs the hook at construction time.
func WithOnMutationProcessed(fn Hook) Option {
	return func(q *Queue) {
		q.SetOnMutationProcessed(fn)
	}
}

package syncqueue

import (
	"log/slog"
	"strings"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
)

// SetNamespace switches the queue to ns. The previous namespace's in-memory
// queue is dropped without persisting; its stored data is reloaded on the
// next access once it becomes active again. A blank ns means the default
// namespace, and switching to the active namespace does nothing.
func (q *Queue) SetNamespace(ns string) {
	ns = normalizeNamespace(ns)

	q.mu.Lock()
	if ns == q.namespace {
		q.mu.Unlock()
		return
	}
	prev := q.namespace
	q.namespace = ns
	q.items = nil
	q.loaded = false
	q.generation++
	q.mu.Unlock()

	q.logger.Info("namespace switched",
		slog.String("previous", prev),
		logger.Namespace(ns))
}

// Namespace returns the active namespace.
func (q *Queue) Namespace() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.namespace
}

func normalizeNamespace(ns string) string {
	if ns = strings.TrimSpace(ns); ns == "" {
		return DefaultNamespace
	}
	return ns
}

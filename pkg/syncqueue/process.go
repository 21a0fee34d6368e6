package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

// Executor applies one mutation to the remote system. Any returned error
// counts as a failed attempt.
type Executor func(ctx context.Context, m mutation.PendingMutation) error

// Result holds the tallies of one ProcessAll pass. Evicted mutations are
// also counted in Failed.
type Result struct {
	Success int `json:"success" yaml:"success"`
	Failed  int `json:"failed" yaml:"failed"`
	Evicted int `json:"evicted" yaml:"evicted"`
}

// ProcessAll drains a snapshot of the active namespace's queue through exec,
// one mutation at a time in FIFO order. Successes are removed. A failure
// bumps the retry counter, or evicts the mutation once it has used up its
// attempts.
//
// Only one pass runs at a time: a concurrent call returns a zero Result
// without touching the queue. Mutations enqueued during a pass wait for the
// next one. The pass stops early when ctx is done, when exec reports
// ErrNotAttempted, or when the namespace is switched. The outcome of a
// mutation in flight during a switch is not recorded, so it will run again.
func (q *Queue) ProcessAll(ctx context.Context, exec Executor) Result {
	var res Result
	if exec == nil {
		q.logger.ErrorContext(ctx, "process all called without executor")
		return res
	}
	if !q.processing.CompareAndSwap(false, true) {
		q.logger.DebugContext(ctx, "processing already in progress, skipping")
		return res
	}
	defer q.processing.Store(false)

	q.mu.Lock()
	q.ensureLoadedLocked(ctx)
	snapshot := slices.Clone(q.items)
	generation := q.generation
	ns := q.namespace
	q.mu.Unlock()

	if len(snapshot) == 0 {
		return res
	}

	ctx = logger.ContextWithNamespace(ctx, ns)
	start := time.Now()

	for _, m := range snapshot {
		if err := ctx.Err(); err != nil {
			q.logger.InfoContext(ctx, "processing interrupted", logger.Error(err))
			break
		}

		begin := time.Now()
		execErr := q.execute(ctx, exec, m)
		elapsed := time.Since(begin)

		if errors.Is(execErr, ErrNotAttempted) {
			q.logger.InfoContext(ctx, "mutation not attempted, stopping pass",
				logger.MutationID(m.ID),
				logger.Error(execErr))
			break
		}

		q.mu.Lock()
		if q.generation != generation {
			q.mu.Unlock()
			q.logger.WarnContext(ctx, "namespace switched during processing, stopping pass",
				logger.MutationID(m.ID))
			break
		}
		q.ensureLoadedLocked(ctx)

		if execErr == nil {
			q.removeLocked(ctx, m.ID)
			q.mu.Unlock()

			res.Success++
			q.metrics.observe(m.Type, resultSuccess, elapsed)
			q.logger.DebugContext(ctx, "mutation applied",
				logger.MutationID(m.ID),
				logger.MutationType(m.Type),
				logger.Duration(elapsed))
			q.notify(m, true)
			continue
		}

		evict := m.RetryCount >= q.maxAttempts-1
		if evict {
			q.removeLocked(ctx, m.ID)
		} else {
			q.incrementLocked(ctx, m.ID)
		}
		q.mu.Unlock()

		res.Failed++
		if evict {
			res.Evicted++
			q.metrics.observe(m.Type, resultEvicted, elapsed)
			q.evicted(ctx, ns, m, execErr)
		} else {
			q.metrics.observe(m.Type, resultFailure, elapsed)
			q.logger.InfoContext(ctx, "mutation failed, will retry",
				logger.MutationID(m.ID),
				logger.MutationType(m.Type),
				logger.RetryCount(m.RetryCount+1),
				logger.Error(execErr))
		}
		q.notify(m, false)
	}

	q.logger.InfoContext(ctx, "processing pass finished",
		slog.Int("success", res.Success),
		slog.Int("failed", res.Failed),
		slog.Int("evicted", res.Evicted),
		logger.Duration(time.Since(start)))

	return res
}

// Processing reports whether a ProcessAll pass is in flight.
func (q *Queue) Processing() bool {
	return q.processing.Load()
}

func (q *Queue) execute(ctx context.Context, exec Executor, m mutation.PendingMutation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorPanic, r)
			q.logger.ErrorContext(ctx, "executor panicked",
				logger.MutationID(m.ID),
				slog.Any("panic", r))
		}
	}()
	return exec(ctx, m)
}

func (q *Queue) evicted(ctx context.Context, ns string, m mutation.PendingMutation, cause error) {
	q.logger.WarnContext(ctx, "mutation evicted after max attempts",
		logger.MutationID(m.ID),
		logger.MutationType(m.Type),
		slog.Int("attempts", m.Attempt()),
		logger.Error(cause))

	if q.deadLetter == nil {
		return
	}
	if err := q.deadLetter.Record(ctx, deadletter.NewEntry(ns, m, cause)); err != nil {
		q.logger.ErrorContext(ctx, "failed to record dead letter",
			logger.MutationID(m.ID),
			logger.Error(err))
	}
}

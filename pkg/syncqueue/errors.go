package syncqueue

import "errors"

var (
	// ErrQueueNil is returned when a runner is built without a queue.
	ErrQueueNil = errors.New("queue cannot be nil")

	// ErrExecutorNil is returned when a runner is built without an executor.
	ErrExecutorNil = errors.New("executor cannot be nil")

	// ErrRunnerStarted is returned by Start on a running runner.
	ErrRunnerStarted = errors.New("runner already started")

	// ErrRunnerNotStarted is returned by Stop on an idle runner.
	ErrRunnerNotStarted = errors.New("runner not started")

	// ErrEncodeFailed is returned by Enqueue when the mutation cannot be persisted as JSON.
	ErrEncodeFailed = errors.New("mutation cannot be encoded")

	// ErrNotAttempted is wrapped by an executor that returns without trying the
	// mutation, for example while a circuit breaker is open. ProcessAll stops
	// the pass and leaves the mutation and its retry count as they were.
	ErrNotAttempted = errors.New("mutation not attempted")

	// ErrExecutorPanic wraps a value recovered from a panicking executor.
	ErrExecutorPanic = errors.New("executor panicked")
)

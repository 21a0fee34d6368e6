// Package syncqueue implements an offline-first mutation queue: a persisted,
// namespaced FIFO of pending writes that is drained against a remote
// executor with bounded retries.
//
// A Queue writes through a storage.Storage under the key
// "<queue-name>:<namespace>" (by default "mutation_queue:anon"). Only one
// namespace is active at a time; SetNamespace swaps it without merging
// queues, so each identity only ever sees its own mutations.
//
// # Usage
//
//	q := syncqueue.New(store,
//	    syncqueue.WithNamespace(userID),
//	    syncqueue.WithLogger(log),
//	)
//	q.Load(ctx)
//
//	if _, err := q.Enqueue(ctx, mutation.CheckItem{ItemID: "42", Checked: true}); err != nil {
//	    return err // invalid payload
//	}
//
//	res := q.ProcessAll(ctx, executor.Execute)
//
// # Retry policy
//
// ProcessAll walks a snapshot of the queue in order. A successful mutation is
// removed. A failed one has its retry counter incremented, until it has
// failed MaxAttempts times (3 by default); it is then evicted, logged at warn
// level and, when WithDeadLetter is set, recorded in a dead letter store.
// The hook installed with SetOnMutationProcessed sees every decision.
//
// # Error handling
//
// Storage failures never reach the caller. They are logged and the queue
// continues in memory. A corrupted persisted queue is replaced by an empty
// one. Enqueue returns an error only for an invalid or unencodable payload,
// and then leaves the queue untouched.
//
// # Background draining
//
// Runner drains the queue on an interval and on Trigger. Run fits an
// errgroup:
//
//	r, _ := syncqueue.NewRunner(q, executor.Execute, syncqueue.WithInterval(time.Minute))
//	g.Go(r.Run(ctx))
package syncqueue

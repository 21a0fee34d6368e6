package syncqueue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

type hookCall struct {
	id      string
	success bool
}

func recordHook(q *syncqueue.Queue) *[]hookCall {
	calls := &[]hookCall{}
	q.SetOnMutationProcessed(func(m mutation.PendingMutation, success bool) {
		*calls = append(*calls, hookCall{id: m.ID, success: success})
	})
	return calls
}

func TestProcessAll_EvictsAfterThreeFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	q.Load(ctx)
	id := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	calls := recordHook(q)

	for pass, wantRetry := range []int{1, 2} {
		res := q.ProcessAll(ctx, failing)
		assert.Equal(t, syncqueue.Result{Failed: 1}, res, "pass %d", pass+1)

		pending := q.Pending(ctx)
		require.Len(t, pending, 1)
		assert.Equal(t, id, pending[0].ID)
		assert.Equal(t, wantRetry, pending[0].RetryCount)

		// the counter is durable too
		assert.Equal(t, wantRetry, syncqueue.New(mem, quietOpts()...).Pending(ctx)[0].RetryCount)
	}

	res := q.ProcessAll(ctx, failing)
	assert.Equal(t, syncqueue.Result{Failed: 1, Evicted: 1}, res)
	assert.Zero(t, q.Count(ctx))
	assert.Zero(t, syncqueue.New(mem, quietOpts()...).Count(ctx))

	assert.Equal(t, []hookCall{{id, false}, {id, false}, {id, false}}, *calls)
}

func TestProcessAll_SuccessRemovesAndNotifiesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	id := enqueue(t, q, mutation.CheckItem{ItemID: "1", Checked: true})
	calls := recordHook(q)

	// fail once, then succeed on the retry
	q.ProcessAll(ctx, failing)
	res := q.ProcessAll(ctx, succeeding)

	assert.Equal(t, syncqueue.Result{Success: 1}, res)
	assert.Zero(t, q.Count(ctx))
	assert.Equal(t, []hookCall{{id, false}, {id, true}}, *calls)

	res = q.ProcessAll(ctx, succeeding)
	assert.Equal(t, syncqueue.Result{}, res)
	assert.Len(t, *calls, 2)
}

func TestProcessAll_FIFOAndRelativeOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	a := enqueue(t, q, mutation.AddItem{ListID: "l", ItemID: "1", Name: "Eggs"})
	b := enqueue(t, q, mutation.CheckItem{ItemID: "1", Checked: true})
	c := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	var order []string
	res := q.ProcessAll(ctx, func(_ context.Context, m mutation.PendingMutation) error {
		order = append(order, m.ID)
		if m.ID == b {
			return errBackend
		}
		return nil
	})

	assert.Equal(t, []string{a, b, c}, order)
	assert.Equal(t, syncqueue.Result{Success: 2, Failed: 1}, res)

	pending := q.Pending(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].ID)
	assert.Equal(t, 1, pending[0].RetryCount)
}

func TestProcessAll_RejectsConcurrentPass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	enqueue(t, q, mutation.DeleteItem{ItemID: "2"})
	before := q.Pending(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	var wg sync.WaitGroup
	var first syncqueue.Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
			once.Do(func() { close(started) })
			<-release
			return nil
		})
	}()

	<-started
	assert.True(t, q.Processing())

	called := false
	second := q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
		called = true
		return errBackend
	})
	assert.Equal(t, syncqueue.Result{}, second)
	assert.False(t, called)
	assert.Equal(t, ids(before), ids(q.Pending(ctx)))
	for _, m := range q.Pending(ctx) {
		assert.Zero(t, m.RetryCount)
	}

	close(release)
	wg.Wait()

	assert.Equal(t, syncqueue.Result{Success: 2}, first)
	assert.False(t, q.Processing())
	assert.Zero(t, q.Count(ctx))
}

func TestProcessAll_SnapshotExcludesNewMutations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	var added string
	executed := 0
	res := q.ProcessAll(ctx, func(ctx context.Context, m mutation.PendingMutation) error {
		executed++
		id, err := q.Enqueue(ctx, mutation.DeleteItem{ItemID: "2"})
		if err != nil {
			return err
		}
		added = id
		return nil
	})

	assert.Equal(t, 1, executed)
	assert.Equal(t, syncqueue.Result{Success: 1}, res)
	assert.Equal(t, []string{added}, ids(q.Pending(ctx)))
}

func TestProcessAll_RecoversExecutorPanic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	res := q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
		panic("nil map write")
	})

	assert.Equal(t, syncqueue.Result{Failed: 1}, res)
	assert.Equal(t, 1, q.Pending(ctx)[0].RetryCount)
	assert.False(t, q.Processing())
}

func TestProcessAll_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	second := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})

	ctx, cancel := context.WithCancel(context.Background())
	res := q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
		cancel()
		return nil
	})

	assert.Equal(t, syncqueue.Result{Success: 1}, res)
	pending := q.Pending(context.Background())
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)
	assert.Zero(t, pending[0].RetryCount)
}

func TestProcessAll_NamespaceSwitchStopsPass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(syncqueue.WithNamespace("user-a"))...)
	first := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	enqueue(t, q, mutation.DeleteItem{ItemID: "2"})
	calls := recordHook(q)

	executed := 0
	res := q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
		executed++
		q.SetNamespace("user-b")
		return nil
	})

	assert.Equal(t, 1, executed)
	assert.Equal(t, syncqueue.Result{}, res)
	assert.Empty(t, *calls)
	assert.Zero(t, q.Count(ctx))

	q.SetNamespace("user-a")
	pending := q.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Zero(t, pending[0].RetryCount)
}

func TestProcessAll_NotAttemptedKeepsRetryBudget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	first := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	second := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})
	calls := recordHook(q)

	var seen []string
	skip := func(_ context.Context, m mutation.PendingMutation) error {
		seen = append(seen, m.ID)
		return fmt.Errorf("breaker open: %w", syncqueue.ErrNotAttempted)
	}

	for range 5 {
		assert.Equal(t, syncqueue.Result{}, q.ProcessAll(ctx, skip))
	}

	pending := q.Pending(ctx)
	assert.Equal(t, []string{first, second}, ids(pending))
	for _, m := range pending {
		assert.Zero(t, m.RetryCount)
	}
	assert.Equal(t, []string{first, first, first, first, first}, seen)
	assert.Empty(t, *calls)
}

func TestProcessAll_MaxAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(syncqueue.WithMaxAttempts(1))...)
	enqueue(t, q, mutation.BatchDelete{ItemIDs: []string{"1", "2"}})

	res := q.ProcessAll(ctx, failing)
	assert.Equal(t, syncqueue.Result{Failed: 1, Evicted: 1}, res)
	assert.Zero(t, q.Count(ctx))
}

func TestProcessAll_RecordsDeadLetter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	dl := deadletter.NewStore(mem, deadletter.WithLogger(discardLogger()))
	q := syncqueue.New(mem, quietOpts(
		syncqueue.WithNamespace("user-a"),
		syncqueue.WithDeadLetter(dl),
	)...)
	id := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	for range 3 {
		q.ProcessAll(ctx, failing)
	}

	entries, err := dl.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, 3, entries[0].Attempts)
	assert.Equal(t, errBackend.Error(), entries[0].Error)
}

type failingDeadLetter struct {
	deadletter.Store
}

func (failingDeadLetter) Record(context.Context, deadletter.Entry) error {
	return errors.New("dead letter unavailable")
}

func TestProcessAll_DeadLetterFailureIsLogged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(
		syncqueue.WithMaxAttempts(1),
		syncqueue.WithDeadLetter(failingDeadLetter{}),
	)...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	res := q.ProcessAll(ctx, failing)
	assert.Equal(t, syncqueue.Result{Failed: 1, Evicted: 1}, res)
	assert.Zero(t, q.Count(ctx))
}

func TestProcessAll_NilExecutorAndEmptyQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	assert.Equal(t, syncqueue.Result{}, q.ProcessAll(ctx, succeeding))

	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	assert.Equal(t, syncqueue.Result{}, q.ProcessAll(ctx, nil))
	assert.Equal(t, 1, q.Count(ctx))
}

func TestProcessAll_HookCanReadQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	enqueue(t, q, mutation.DeleteItem{ItemID: "2"})

	var counts []int
	q.SetOnMutationProcessed(func(mutation.PendingMutation, bool) {
		counts = append(counts, q.Count(ctx))
	})
	q.ProcessAll(ctx, succeeding)
	assert.Equal(t, []int{1, 0}, counts)

	q.SetOnMutationProcessed(nil)
	enqueue(t, q, mutation.DeleteItem{ItemID: "3"})
	q.ProcessAll(ctx, succeeding)
	assert.Len(t, counts, 2)
}

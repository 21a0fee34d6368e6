package syncqueue_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

func TestQueue_EnqueuePreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	q.Load(ctx)

	payloads := []mutation.Payload{
		mutation.AddItem{ListID: "l1", ItemID: "1", Name: "Milk", Quantity: 1},
		mutation.CheckItem{ItemID: "1", Checked: true},
		mutation.UpdateItem{ItemID: "1", Unit: ptr("l")},
		mutation.ReorderItems{ListID: "l1", Positions: []mutation.Position{{ItemID: "1", Position: 0}}},
		mutation.DeleteItem{ItemID: "1"},
	}
	var want []string
	for _, p := range payloads {
		want = append(want, enqueue(t, q, p))
	}

	pending := q.Pending(ctx)
	assert.Equal(t, want, ids(pending))
	for i, m := range pending {
		assert.Equal(t, payloads[i].Type(), m.Type)
		assert.Equal(t, 0, m.RetryCount)
	}
	assert.Equal(t, len(payloads), q.Count(ctx))

	t.Run("persisted immediately", func(t *testing.T) {
		reopened := syncqueue.New(mem, quietOpts()...)
		reopened.Load(ctx)
		assert.Equal(t, want, ids(reopened.Pending(ctx)))
	})
}

func TestQueue_PendingReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	id := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	pending := q.Pending(ctx)
	pending[0].RetryCount = 99
	pending[0].ID = "tampered"

	got := q.Pending(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, 0, got[0].RetryCount)
}

func TestQueue_EnqueueRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)

	_, err := q.Enqueue(ctx, nil)
	assert.ErrorIs(t, err, mutation.ErrPayloadNil)

	_, err = q.Enqueue(ctx, mutation.CheckItem{Checked: true})
	assert.ErrorIs(t, err, mutation.ErrInvalidPayload)

	_, err = q.Enqueue(ctx, mutation.BatchDelete{})
	assert.ErrorIs(t, err, mutation.ErrInvalidPayload)

	assert.Zero(t, q.Count(ctx))
}

func TestQueue_NonFiniteQuantityNeverBlocksPersistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)

	inf := math.Inf(1)
	_, err := q.Enqueue(ctx, mutation.AddItem{ListID: "l", ItemID: "i", Name: "Milk", Quantity: inf})
	assert.ErrorIs(t, err, mutation.ErrInvalidPayload)
	_, err = q.Enqueue(ctx, mutation.UpdateItem{ItemID: "i", Quantity: &inf})
	assert.ErrorIs(t, err, mutation.ErrInvalidPayload)
	assert.Zero(t, q.Count(ctx))

	id := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	reopened := syncqueue.New(mem, quietOpts()...)
	assert.Equal(t, []string{id}, ids(reopened.Pending(ctx)))
}

func TestQueue_Reload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	q := syncqueue.New(fs, quietOpts()...)
	q.Load(ctx)

	other := syncqueue.New(fs, quietOpts()...)
	a := enqueue(t, other, mutation.DeleteItem{ItemID: "1"})
	b := enqueue(t, other, mutation.DeleteItem{ItemID: "2"})

	// loaded once; other writers stay invisible until reloaded
	assert.Zero(t, q.Count(ctx))

	q.Reload(ctx)
	assert.Equal(t, []string{a, b}, ids(q.Pending(ctx)))
}

func TestQueue_SharedStorageKeepsQueueOnReadError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := new(mockStorage)
	st.On("GetItem", mock.Anything, "mutation_queue:anon").Return("", storage.ErrNotFound).Once()
	st.On("SetItem", mock.Anything, "mutation_queue:anon", mock.Anything).Return(nil)

	q := syncqueue.New(st, quietOpts(syncqueue.WithSharedStorage())...)
	id := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	st.On("GetItem", mock.Anything, "mutation_queue:anon").Return("", errors.New("connection reset"))
	assert.Equal(t, []string{id}, ids(q.Pending(ctx)))
}

func TestQueue_Dequeue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	first := enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	second := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})

	q.Dequeue(ctx, "missing")
	assert.Equal(t, 2, q.Count(ctx))

	q.Dequeue(ctx, first)
	q.Dequeue(ctx, first)
	assert.Equal(t, []string{second}, ids(q.Pending(ctx)))

	reopened := syncqueue.New(mem, quietOpts()...)
	assert.Equal(t, []string{second}, ids(reopened.Pending(ctx)))
}

func TestQueue_IncrementRetry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	id := enqueue(t, q, mutation.CheckItem{ItemID: "1", Checked: true})

	q.IncrementRetry(ctx, id)
	q.IncrementRetry(ctx, id)
	q.IncrementRetry(ctx, "missing")

	assert.Equal(t, 2, q.Pending(ctx)[0].RetryCount)

	reopened := syncqueue.New(mem, quietOpts()...)
	assert.Equal(t, 2, reopened.Pending(ctx)[0].RetryCount)
}

func TestQueue_ClearRemovesPersistedKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	enqueue(t, q, mutation.DeleteItem{ItemID: "2"})

	q.Clear(ctx)
	assert.Zero(t, q.Count(ctx))

	_, err := mem.GetItem(ctx, "mutation_queue:anon")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	fresh := syncqueue.New(mem, quietOpts()...)
	fresh.Load(ctx)
	assert.Zero(t, fresh.Count(ctx))
}

func TestQueue_LoadIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	// a second load must not re-read storage
	require.NoError(t, mem.RemoveItem(ctx, q.Key()))
	q.Load(ctx)
	assert.Equal(t, 1, q.Count(ctx))
}

func TestQueue_EnqueueBeforeLoadKeepsPersistedData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	first := enqueue(t, syncqueue.New(mem, quietOpts()...), mutation.DeleteItem{ItemID: "1"})

	q := syncqueue.New(mem, quietOpts()...)
	second := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})

	assert.Equal(t, []string{first, second}, ids(q.Pending(ctx)))
}

func TestQueue_CorruptedDataFallsBackToEmpty(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]string{
		"not json":      "{oops",
		"wrong shape":   `{"id":"1"}`,
		"unknown type":  `[{"id":"1","type":"SHRED_LIST","payload":{},"timestamp":"2024-01-01T00:00:00Z","retryCount":0}]`,
		"missing id":    `[{"type":"DELETE_ITEM","payload":{"itemId":"1"},"timestamp":"2024-01-01T00:00:00Z","retryCount":0}]`,
		"empty payload": `[{"id":"1","type":"CHECK_ITEM","payload":null,"timestamp":"2024-01-01T00:00:00Z","retryCount":0}]`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			mem := storage.NewMemoryStorage()
			require.NoError(t, mem.SetItem(ctx, "mutation_queue:anon", raw))

			q := syncqueue.New(mem, quietOpts()...)
			q.Load(ctx)
			assert.Zero(t, q.Count(ctx))

			id := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})
			reopened := syncqueue.New(mem, quietOpts()...)
			assert.Equal(t, []string{id}, ids(reopened.Pending(ctx)))
		})
	}
}

func TestQueue_StorageErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("disk full")

	st := &mockStorage{}
	st.On("GetItem", mock.Anything, "mutation_queue:anon").Return("", boom).Once()
	st.On("SetItem", mock.Anything, "mutation_queue:anon", mock.Anything).Return(boom)
	st.On("RemoveItem", mock.Anything, "mutation_queue:anon").Return(boom)

	q := syncqueue.New(st, quietOpts()...)
	q.Load(ctx)

	id, err := q.Enqueue(ctx, mutation.DeleteItem{ItemID: "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids(q.Pending(ctx)))

	res := q.ProcessAll(ctx, succeeding)
	assert.Equal(t, syncqueue.Result{Success: 1}, res)
	assert.Zero(t, q.Count(ctx))

	q.Clear(ctx)
	st.AssertNumberOfCalls(t, "GetItem", 1)
	st.AssertExpectations(t)
}

func TestQueue_TimestampsNeverDecrease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute), base.Add(time.Minute)}
	i := 0
	clock := func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(syncqueue.WithClock(clock))...)
	for range times {
		enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	}

	pending := q.Pending(ctx)
	require.Len(t, pending, 3)
	assert.True(t, pending[0].Timestamp.Equal(base))
	assert.True(t, pending[1].Timestamp.Equal(base))
	assert.True(t, pending[2].Timestamp.Equal(base.Add(time.Minute)))
}

func TestQueue_Key(t *testing.T) {
	t.Parallel()

	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)
	assert.Equal(t, "mutation_queue:anon", q.Key())
	assert.Equal(t, 3, q.MaxAttempts())

	custom := syncqueue.New(storage.NewMemoryStorage(), quietOpts(
		syncqueue.WithQueueName("shopping"),
		syncqueue.WithNamespace("user-1"),
		syncqueue.WithMaxAttempts(5),
	)...)
	assert.Equal(t, "shopping:user-1", custom.Key())
	assert.Equal(t, 5, custom.MaxAttempts())
}

func TestQueue_NilStorage(t *testing.T) {
	t.Parallel()

	q := syncqueue.New(nil, quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	assert.Equal(t, 1, q.Count(context.Background()))
}

func ptr[T any](v T) *T {
	return &v
}

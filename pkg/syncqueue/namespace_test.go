package syncqueue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

func TestNamespace_Isolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts()...)

	q.SetNamespace("user-a")
	q.Load(ctx)
	id := enqueue(t, q, mutation.CheckItem{ItemID: "1", Checked: true})
	assert.Equal(t, 1, q.Count(ctx))

	q.SetNamespace("user-b")
	q.Load(ctx)
	assert.Equal(t, "user-b", q.Namespace())
	assert.Zero(t, q.Count(ctx))
	assert.Empty(t, q.Pending(ctx))

	var executed []string
	res := q.ProcessAll(ctx, func(_ context.Context, m mutation.PendingMutation) error {
		executed = append(executed, m.ID)
		return nil
	})
	assert.Equal(t, syncqueue.Result{}, res)
	assert.Empty(t, executed)

	q.SetNamespace("user-a")
	q.Load(ctx)
	assert.Equal(t, 1, q.Count(ctx))
	assert.Equal(t, []string{id}, ids(q.Pending(ctx)))
}

func TestNamespace_RoundTripPreservesQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(syncqueue.WithNamespace("a"))...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})
	second := enqueue(t, q, mutation.DeleteItem{ItemID: "2"})
	q.IncrementRetry(ctx, second)
	before := q.Pending(ctx)

	q.SetNamespace("b")
	enqueue(t, q, mutation.DeleteItem{ItemID: "3"})
	q.SetNamespace("a")

	after := q.Pending(ctx)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Payload, after[i].Payload)
		assert.Equal(t, before[i].RetryCount, after[i].RetryCount)
		assert.True(t, before[i].Timestamp.Equal(after[i].Timestamp))
	}
}

func TestNamespace_SameNamespaceIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	q := syncqueue.New(mem, quietOpts(syncqueue.WithNamespace("user-a"))...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	// a real switch would reload from storage and see nothing
	require.NoError(t, mem.RemoveItem(ctx, "mutation_queue:user-a"))
	q.SetNamespace("user-a")
	q.SetNamespace("  user-a ")
	assert.Equal(t, 1, q.Count(ctx))
}

func TestNamespace_SwitchDoesNotPersistPrevious(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := &mockStorage{}
	st.On("GetItem", mock.Anything, "mutation_queue:anon").Return("", storage.ErrNotFound).Once()
	st.On("SetItem", mock.Anything, "mutation_queue:anon", mock.Anything).Return(nil).Once()
	st.On("GetItem", mock.Anything, "mutation_queue:user-b").Return("", storage.ErrNotFound).Once()

	q := syncqueue.New(st, quietOpts()...)
	enqueue(t, q, mutation.DeleteItem{ItemID: "1"})

	q.SetNamespace("user-b")
	assert.Zero(t, q.Count(ctx))

	st.AssertExpectations(t)
	st.AssertNumberOfCalls(t, "SetItem", 1)
}

func TestNamespace_BlankMeansDefault(t *testing.T) {
	t.Parallel()

	q := syncqueue.New(storage.NewMemoryStorage(), quietOpts(syncqueue.WithNamespace("user-a"))...)
	q.SetNamespace("   ")
	assert.Equal(t, syncqueue.DefaultNamespace, q.Namespace())
	assert.Equal(t, "mutation_queue:anon", q.Key())
}

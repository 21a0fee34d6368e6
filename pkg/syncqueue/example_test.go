package syncqueue_test

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

func Example() {
	ctx := context.Background()
	q := syncqueue.New(storage.NewMemoryStorage(),
		syncqueue.WithNamespace("user-a"),
		syncqueue.WithLogger(discardLogger()),
	)
	q.Load(ctx)

	_, _ = q.Enqueue(ctx, mutation.AddItem{ListID: "groceries", ItemID: "1", Name: "Milk", Quantity: 2})
	_, _ = q.Enqueue(ctx, mutation.CheckItem{ItemID: "1", Checked: true})

	q.SetOnMutationProcessed(func(m mutation.PendingMutation, success bool) {
		fmt.Println(m.Type, success)
	})

	res := q.ProcessAll(ctx, func(context.Context, mutation.PendingMutation) error {
		return nil
	})
	fmt.Printf("success=%d failed=%d pending=%d\n", res.Success, res.Failed, q.Count(ctx))

	// Output:
	// ADD_ITEM true
	// CHECK_ITEM true
	// success=2 failed=0 pending=0
}

package cli

import (
	"context"
	"errors"

	"github.com/dmitrymomot/syncqueue/pkg/backends"
	"github.com/dmitrymomot/syncqueue/pkg/deadletter"
	"github.com/dmitrymomot/syncqueue/pkg/storage"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

// app bundles the objects a command works with.
type app struct {
	store storage.Storage
	queue *syncqueue.Queue
	dead  *deadletter.KVStore
}

func (o *RootOptions) open(ctx context.Context, extra ...syncqueue.Option) (*app, error) {
	s, err := backends.Open(ctx, o.cfg.StorageDSN)
	if err != nil {
		return nil, errors.Join(ErrOpenStorage, err)
	}
	log := o.Logger()
	dead := deadletter.NewStore(s,
		deadletter.WithQueueName(o.cfg.QueueName),
		deadletter.WithLogger(log),
	)
	// other syncqueue invocations may write the same key while this one runs
	opts := append(o.cfg.Options(log), syncqueue.WithDeadLetter(dead), syncqueue.WithSharedStorage())
	q := syncqueue.New(s, append(opts, extra...)...)
	q.Load(ctx)
	return &app{store: s, queue: q, dead: dead}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

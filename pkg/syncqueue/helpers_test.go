package syncqueue_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
	"github.com/dmitrymomot/syncqueue/pkg/syncqueue"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetItem(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) SetItem(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStorage) RemoveItem(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quietOpts(opts ...syncqueue.Option) []syncqueue.Option {
	return append([]syncqueue.Option{syncqueue.WithLogger(discardLogger())}, opts...)
}

func enqueue(t *testing.T, q *syncqueue.Queue, p mutation.Payload) string {
	t.Helper()
	id, err := q.Enqueue(context.Background(), p)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func ids(items []mutation.PendingMutation) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return out
}

func failing(context.Context, mutation.PendingMutation) error {
	return errBackend
}

func succeeding(context.Context, mutation.PendingMutation) error {
	return nil
}

var errBackend = io.ErrUnexpectedEOF

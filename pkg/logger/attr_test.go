package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/logger"
	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

func TestGroup(t *testing.T) {
	t.Parallel()

	attr := logger.Group("pass", slog.Int("success", 1), slog.Int("failed", 2))
	require.Equal(t, "pass", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "success", g[0].Key)
	assert.Equal(t, "failed", g[1].Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestMutationAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "mutation_id", logger.MutationID("m-1").Key)
	assert.True(t, logger.MutationID("").Equal(slog.Attr{}))

	typ := logger.MutationType(mutation.TypeAddItem)
	assert.Equal(t, "mutation_type", typ.Key)
	assert.Equal(t, "ADD_ITEM", typ.Value.String())

	assert.Equal(t, int64(2), logger.RetryCount(2).Value.Int64())
	assert.Equal(t, "user-a", logger.Namespace("user-a").Value.String())
	assert.Equal(t, "mutation_queue:anon", logger.StorageKey("mutation_queue:anon").Value.String())
	assert.Equal(t, "runner", logger.Component("runner").Value.String())
	assert.Equal(t, "evicted", logger.Event("evicted").Value.String())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
}

package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

// contract exercises behavior every Storage implementation must share.
func contract(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.GetItem(ctx, "mutation_queue:user-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SetItem(ctx, "mutation_queue:user-a", `[{"id":"1"}]`))
	v, err := s.GetItem(ctx, "mutation_queue:user-a")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.SetItem(ctx, "mutation_queue:user-a", `[]`))
	v, err = s.GetItem(ctx, "mutation_queue:user-a")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	// keys are isolated
	_, err = s.GetItem(ctx, "mutation_queue:user-b")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.RemoveItem(ctx, "mutation_queue:user-a"))
	_, err = s.GetItem(ctx, "mutation_queue:user-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// removing a missing key is fine
	require.NoError(t, s.RemoveItem(ctx, "mutation_queue:user-a"))

	assert.ErrorIs(t, s.SetItem(ctx, "", "x"), storage.ErrInvalidKey)
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	s := storage.NewMemoryStorage()
	contract(t, s)

	require.NoError(t, s.Close())
	_, err := s.GetItem(context.Background(), "k")
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestFileStorage(t *testing.T) {
	t.Parallel()

	t.Run("contract", func(t *testing.T) {
		t.Parallel()

		s, err := storage.NewFileStorage(t.TempDir())
		require.NoError(t, err)
		contract(t, s)
	})

	t.Run("keys stay inside the directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := storage.NewFileStorage(dir)
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, s.SetItem(ctx, "../escape:ns/with/slashes", "v"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].IsDir())

		v, err := s.GetItem(ctx, "../escape:ns/with/slashes")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	})

	t.Run("values survive reopen", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ctx := context.Background()

		s1, err := storage.NewFileStorage(dir)
		require.NoError(t, err)
		require.NoError(t, s1.SetItem(ctx, "k", "persisted"))

		s2, err := storage.NewFileStorage(dir)
		require.NoError(t, err)
		v, err := s2.GetItem(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "persisted", v)
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		_, err := storage.NewFileStorage(" ")
		assert.ErrorIs(t, err, storage.ErrInvalidDSN)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("memory schemes", func(t *testing.T) {
		t.Parallel()

		for _, dsn := range []string{"memory://", "mem://", "inmem://"} {
			s, err := storage.Open(ctx, dsn)
			require.NoError(t, err, dsn)
			assert.IsType(t, &storage.MemoryStorage{}, s)
		}
	})

	t.Run("file scheme and bare path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, dsn := range []string{"file://" + dir, filepath.Join(dir, "bare")} {
			s, err := storage.Open(ctx, dsn)
			require.NoError(t, err, dsn)
			fs, ok := s.(*storage.FileStorage)
			require.True(t, ok)
			assert.DirExists(t, fs.Dir())
		}
	})

	t.Run("registered factory wins", func(t *testing.T) {
		t.Parallel()

		want := storage.NewMemoryStorage()
		storage.Register("unit-test", func(_ context.Context, dsn string) (storage.Storage, error) {
			return want, nil
		})

		s, err := storage.Open(ctx, "UNIT-TEST://anything")
		require.NoError(t, err)
		assert.Same(t, want, s)
		assert.Contains(t, storage.Schemes(), "unit-test")
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()

		_, err := storage.Open(ctx, "kafka://broker")
		assert.ErrorIs(t, err, storage.ErrUnsupportedScheme)
	})

	t.Run("empty dsn", func(t *testing.T) {
		t.Parallel()

		_, err := storage.Open(ctx, "  ")
		assert.ErrorIs(t, err, storage.ErrInvalidDSN)
	})
}

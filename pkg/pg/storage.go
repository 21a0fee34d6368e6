package pg

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

const defaultTable = "syncqueue_kv"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Storage keeps one row per key in a key/value table.
type Storage struct {
	pool  *pgxpool.Pool
	owned bool

	createSQL string
	getSQL    string
	setSQL    string
	removeSQL string
}

// NewStorage wraps an existing pool. The table must already exist; see Migrate.
// Close leaves the pool open.
func NewStorage(pool *pgxpool.Pool, table string) (*Storage, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	ident := pgx.Identifier{table}.Sanitize()
	return &Storage{
		pool:      pool,
		createSQL: "CREATE TABLE IF NOT EXISTS " + ident + " (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT now())",
		getSQL:    "SELECT value FROM " + ident + " WHERE key = $1",
		setSQL:    "INSERT INTO " + ident + " (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at",
		removeSQL: "DELETE FROM " + ident + " WHERE key = $1",
	}, nil
}

// Open connects, migrates and returns a storage that owns its pool.
// A non-default cfg.Table is created on demand.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Storage, error) {
	if log == nil {
		log = slog.Default()
	}
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool, cfg, log); err != nil {
		pool.Close()
		return nil, err
	}
	s, err := NewStorage(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.Table != "" && cfg.Table != defaultTable {
		if _, err := pool.Exec(ctx, s.createSQL); err != nil {
			pool.Close()
			return nil, err
		}
	}
	s.owned = true
	return s, nil
}

// OpenDSN builds a storage from a postgres:// or postgresql:// DSN with
// default pool settings and a single connection attempt.
func OpenDSN(ctx context.Context, dsn string) (storage.Storage, error) {
	cfg := DefaultConfig(dsn)
	cfg.RetryAttempts = 1
	return Open(ctx, cfg, nil)
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	var value string
	if err := s.pool.QueryRow(ctx, s.getSQL, key).Scan(&value); err != nil {
		if IsNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.pool.Exec(ctx, s.setSQL, key, value)
	return err
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.pool.Exec(ctx, s.removeSQL, key)
	return err
}

// Pool returns the underlying connection pool.
func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Close() error {
	if s.owned {
		s.pool.Close()
	}
	return nil
}

var _ storage.Storage = (*Storage)(nil)

package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dmitrymomot/syncqueue/pkg/storage"
)

//go:embed schema.sql
var schemaSQL string

// Storage keeps queue values in a single-file SQLite database.
type Storage struct {
	db *sql.DB
}

// Open creates or opens the database at cfg.Path, switches it to WAL mode
// and applies the schema. Calling it repeatedly on one file is safe.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, ErrPathRequired
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Join(ErrFailedToOpen, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	// SQLite has a single writer; one connection avoids SQLITE_BUSY and
	// keeps :memory: databases from splitting across connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	if err := applyPragmas(ctx, db, cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, errors.Join(ErrFailedToOpen, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, errors.Join(ErrFailedToMigrate, err)
	}
	return &Storage{db: db}, nil
}

// OpenDSN builds a storage from sqlite://<path> or sqlite://:memory:.
func OpenDSN(ctx context.Context, dsn string) (storage.Storage, error) {
	if rest, ok := strings.CutPrefix(dsn, "sqlite://"); ok && rest == ":memory:" {
		return Open(ctx, DefaultConfig(":memory:"))
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Join(storage.ErrInvalidDSN, err)
	}
	path, err := storage.DSNPath(u, dsn)
	if err != nil {
		return nil, err
	}
	return Open(ctx, DefaultConfig(path))
}

func applyPragmas(ctx context.Context, db *sql.DB, busy time.Duration) error {
	if busy <= 0 {
		busy = 5 * time.Second
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return nil
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", storage.ErrInvalidKey
	}
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, time.Now().UnixMilli(),
	)
	return err
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// DB returns the underlying handle.
func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Close() error {
	return s.db.Close()
}

var _ storage.Storage = (*Storage)(nil)

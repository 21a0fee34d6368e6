package pg

import (
	"context"
	"embed"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

// Migrate applies the embedded schema migrations through goose.
// goose needs database/sql, so the pool is bridged with stdlib.OpenDBFromPool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log logger) error {
	if pool == nil {
		return ErrNilPool
	}
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration connection", "error", err)
		}
	}()

	table := cfg.MigrationsTable
	if table == "" {
		table = "syncqueue_schema_migrations"
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log: log})
	goose.SetTableName(table)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

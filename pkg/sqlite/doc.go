// Package sqlite stores mutation queues in a SQLite database file through
// mattn/go-sqlite3 (cgo).
//
// The database runs in WAL mode with a single connection. Values live in
// table kv(key, value, updated_at), created on open.
//
//	s, err := sqlite.Open(ctx, sqlite.DefaultConfig(".syncqueue/queue.db"))
//
// DSN forms for storage.Open (after backends.Register):
//
//	sqlite:///var/lib/app/queue.db
//	sqlite://data/queue.db
//	sqlite://:memory:
package sqlite

// Package backends registers every storage adapter with package storage so a
// single DSN selects the backend:
//
//	s, err := backends.Open(ctx, cfg.StorageDSN)
//
// Schemes: redis, rediss, postgres, postgresql, mongodb, mongodb+srv, badger,
// sqlite, sqlite3, s3, plus the built-in memory and file schemes.
package backends

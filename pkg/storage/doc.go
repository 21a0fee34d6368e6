// Package storage defines the key-value persistence contract used by the
// mutation queue and provides in-memory and file-backed implementations.
//
// The contract mirrors a mobile key-value store: GetItem, SetItem and
// RemoveItem on string keys and values. Server-grade backends (Redis,
// PostgreSQL, MongoDB, BadgerDB, SQLite, S3) live in their own packages and
// plug into Open through Register; see package backends.
//
// # Usage
//
//	s, err := storage.Open(ctx, "file://.syncqueue")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.SetItem(ctx, "mutation_queue:anon", "[]"); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// GetItem reports a missing key with ErrNotFound. Callers compare with
// errors.Is because backends may wrap it.
package storage

package storage

import "errors"

var (
	// ErrNotFound is returned by GetItem when the key does not exist
	ErrNotFound = errors.New("storage: key not found")

	// ErrInvalidKey is returned for empty keys
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrInvalidDSN is returned when a DSN cannot be parsed or lacks a required part
	ErrInvalidDSN = errors.New("storage: invalid dsn")

	// ErrUnsupportedScheme is returned when no backend is registered for a DSN scheme
	ErrUnsupportedScheme = errors.New("storage: unsupported scheme")

	// ErrClosed is returned when using a storage after Close
	ErrClosed = errors.New("storage: closed")
)

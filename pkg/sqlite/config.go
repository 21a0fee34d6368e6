package sqlite

import "time"

type Config struct {
	Path        string        `env:"SQLITE_PATH" envDefault:".syncqueue/queue.db"` // ":memory:" for a private in-memory database
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig returns the envDefault values with path substituted.
func DefaultConfig(path string) Config {
	return Config{Path: path, BusyTimeout: 5 * time.Second}
}

package badger

import "time"

// Config controls the embedded database.
type Config struct {
	Path           string        `env:"BADGER_PATH" envDefault:".syncqueue/badger"` // ignored when InMemory is set
	InMemory       bool          `env:"BADGER_IN_MEMORY" envDefault:"false"`
	SyncWrites     bool          `env:"BADGER_SYNC_WRITES" envDefault:"true"`
	GCInterval     time.Duration `env:"BADGER_GC_INTERVAL" envDefault:"5m"` // 0 disables value log GC
	GCDiscardRatio float64       `env:"BADGER_GC_DISCARD_RATIO" envDefault:"0.5"`
}

// DefaultConfig returns durable settings for a database at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings for a throwaway database.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

package mongo

import "time"

// Config represents the configuration for the database.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`                         // ConnectionURL is the URL of the database.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"syncqueue"`      // Database holds the queue collection.
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"syncqueue_kv"` // Collection stores one document per storage key.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the pause between connection attempts, e.g. "5s".
}

// DefaultConfig returns the values envDefault would produce for url.
func DefaultConfig(url string) Config {
	return Config{
		ConnectionURL:   url,
		Database:        "syncqueue",
		Collection:      "syncqueue_kv",
		ConnectTimeout:  10 * time.Second,
		MaxPoolSize:     100,
		MinPoolSize:     1,
		MaxConnIdleTime: 300 * time.Second,
		RetryWrites:     true,
		RetryReads:      true,
		RetryAttempts:   3,
		RetryInterval:   5 * time.Second,
	}
}

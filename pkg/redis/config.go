package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // "redis://:password@localhost:6379/0"
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"syncqueue:"`        // prepended to every storage key
	TTL            time.Duration `env:"REDIS_TTL" envDefault:"0"`                        // 0 keeps queues until removed
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns the values envDefault would produce.
func DefaultConfig() Config {
	return Config{
		ConnectionURL:  "redis://localhost:6379/0",
		KeyPrefix:      "syncqueue:",
		RetryAttempts:  3,
		RetryInterval:  5 * time.Second,
		ConnectTimeout: 30 * time.Second,
	}
}

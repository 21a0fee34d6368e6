package syncqueue

import (
	"log/slog"
	"time"
)

// Config holds the queue settings loadable with config.Load.
type Config struct {
	StorageDSN    string        `env:"SYNCQUEUE_STORAGE_DSN" envDefault:"file://.syncqueue"`
	QueueName     string        `env:"SYNCQUEUE_QUEUE_NAME" envDefault:"mutation_queue"`
	Namespace     string        `env:"SYNCQUEUE_NAMESPACE" envDefault:"anon"`
	MaxAttempts   int           `env:"SYNCQUEUE_MAX_ATTEMPTS" envDefault:"3"`
	DrainInterval time.Duration `env:"SYNCQUEUE_DRAIN_INTERVAL" envDefault:"30s"`
}

// Options converts the config into queue options.
func (c Config) Options(log *slog.Logger) []Option {
	return []Option{
		WithQueueName(c.QueueName),
		WithNamespace(c.Namespace),
		WithMaxAttempts(c.MaxAttempts),
		WithLogger(log),
	}
}

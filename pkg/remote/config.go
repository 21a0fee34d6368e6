package remote

import "time"

// Config configures the HTTP executor.
type Config struct {
	BaseURL          string        `env:"SYNCQUEUE_REMOTE_URL"`
	Secret           string        `env:"SYNCQUEUE_REMOTE_SECRET"`
	Timeout          time.Duration `env:"SYNCQUEUE_REMOTE_TIMEOUT" envDefault:"10s"`
	FailureThreshold int           `env:"SYNCQUEUE_REMOTE_FAILURE_THRESHOLD" envDefault:"5"`
	RecoveryTimeout  time.Duration `env:"SYNCQUEUE_REMOTE_RECOVERY_TIMEOUT" envDefault:"30s"`
}

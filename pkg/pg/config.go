package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                   // ConnectionString is the connection string to the database.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the maximum number of open connections to the database.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`       // MaxIdleConns is the minimum number of connections kept open.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between health checks.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is the maximum amount of time a connection may be idle to be reused.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum amount of time a connection may be reused.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	Table           string `env:"PG_KV_TABLE" envDefault:"syncqueue_kv"`                    // Table holds queue values, one row per storage key.
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"syncqueue_schema_migrations"` // MigrationsTable stores the applied schema version.
}

// DefaultConfig returns the values envDefault would produce for dsn.
func DefaultConfig(dsn string) Config {
	return Config{
		ConnectionString:  dsn,
		MaxOpenConns:      10,
		MaxIdleConns:      2,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     3,
		RetryInterval:     5 * time.Second,
		Table:             "syncqueue_kv",
		MigrationsTable:   "syncqueue_schema_migrations",
	}
}

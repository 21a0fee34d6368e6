// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Load caches each
// configuration type for the lifetime of the process; LoadWithPrefix parses
// uncached, prefixed variants of a shared struct.
//
// # Usage
//
//	type Config struct {
//	    StorageDSN string `env:"SYNCQUEUE_STORAGE_DSN" envDefault:"file://.syncqueue"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Errors wrap ErrParsingConfig, ErrNilPointer or ErrLoadingEnvFile and can be
// compared with errors.Is. Tests use ResetCache or ForceReload after changing
// the environment.
package config

package sqlite

import "errors"

var (
	ErrPathRequired      = errors.New("sqlite: database path is required")
	ErrFailedToOpen      = errors.New("sqlite: failed to open database")
	ErrFailedToMigrate   = errors.New("sqlite: failed to apply schema")
	ErrHealthcheckFailed = errors.New("sqlite: healthcheck failed")
)

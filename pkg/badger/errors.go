package badger

import "errors"

var (
	ErrPathRequired      = errors.New("badger: path is required for a persistent database")
	ErrFailedToOpen      = errors.New("badger: failed to open database")
	ErrHealthcheckFailed = errors.New("badger: healthcheck failed, database is closed")
	ErrNilDB             = errors.New("badger: nil database")
)

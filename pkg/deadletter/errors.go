package deadletter

import "errors"

var (
	ErrStorageNil   = errors.New("dead letter storage cannot be nil")
	ErrMissingID    = errors.New("dead letter entry requires a mutation id")
	ErrCorrupted    = errors.New("dead letter list is corrupted")
	ErrRecordFailed = errors.New("failed to record dead letter entry")
)

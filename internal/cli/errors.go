package cli

import "errors"

var (
	ErrOpenStorage     = errors.New("failed to open storage")
	ErrUnknownKind     = errors.New("unknown mutation kind")
	ErrInvalidPosition = errors.New("invalid position, want <item-id>=<position>")
	ErrRemoteRequired  = errors.New("remote url is required, set --remote-url or SYNCQUEUE_REMOTE_URL")
	ErrPassIncomplete  = errors.New("some mutations failed")
)

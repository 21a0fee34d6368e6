package remote

import "errors"

// Delivery errors are classified so callers and logs can tell a dead
// endpoint from a rejected mutation. The queue retries both the same way.
var (
	ErrInvalidConfiguration = errors.New("invalid remote configuration")
	ErrInvalidURL           = errors.New("invalid remote URL")
	ErrInvalidMutation      = errors.New("invalid mutation")
	ErrPermanentFailure     = errors.New("remote rejected mutation")
	ErrTemporaryFailure     = errors.New("temporary remote failure")
	ErrTimeout              = errors.New("remote request timeout")
	ErrCircuitOpen          = errors.New("remote circuit breaker is open")
	ErrInvalidSignature     = errors.New("invalid request signature")
)

// IsCircuitOpen reports whether err was caused by an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

package remote

import (
	"sync"
	"time"
)

// CircuitState is the position of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = [...]string{"closed", "open", "half-open"}

func (s CircuitState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// CircuitBreaker stops a drain pass from waiting on every timeout of an
// endpoint that is down. After threshold consecutive transport failures it
// opens; after cooldown it lets probes through, and probes successful
// probes close it again. Safe for concurrent use.
type CircuitBreaker struct {
	threshold int
	probes    int
	cooldown  time.Duration

	mu       sync.Mutex
	state    CircuitState
	streak   int
	openedAt time.Time
	now      func() time.Time
	onChange func(from, to CircuitState)
}

// NewCircuitBreaker builds a closed breaker. Non-positive arguments fall
// back to 5 failures, 1 probe and a 30s cooldown.
func NewCircuitBreaker(threshold, probes int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: positiveOr(threshold, 5),
		probes:    positiveOr(probes, 1),
		cooldown:  positiveDurationOr(cooldown, 30*time.Second),
		now:       time.Now,
	}
}

// OnStateChange registers fn to run, under the breaker's lock, on every
// transition. fn must not call back into the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onChange = fn
}

// Allow reports whether a request may be sent now.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tickLocked()
	return cb.state != CircuitOpen
}

// RecordSuccess counts a request the endpoint answered.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tickLocked()

	if cb.state != CircuitHalfOpen {
		cb.streak = 0
		return
	}
	cb.streak++
	if cb.streak >= cb.probes {
		cb.moveLocked(CircuitClosed)
	}
}

// RecordFailure counts a request the endpoint did not answer.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tickLocked()

	switch cb.state {
	case CircuitHalfOpen:
		cb.openLocked()
	case CircuitClosed:
		cb.streak++
		if cb.streak >= cb.threshold {
			cb.openLocked()
		}
	}
}

// State returns the current state, moving an expired open breaker to half-open.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tickLocked()
	return cb.state
}

// Reset closes the breaker.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.moveLocked(CircuitClosed)
	cb.openedAt = time.Time{}
}

func (cb *CircuitBreaker) tickLocked() {
	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.moveLocked(CircuitHalfOpen)
	}
}

func (cb *CircuitBreaker) openLocked() {
	cb.openedAt = cb.now()
	cb.moveLocked(CircuitOpen)
}

func (cb *CircuitBreaker) moveLocked(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.streak = 0
	if from != to && cb.onChange != nil {
		cb.onChange(from, to)
	}
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func positiveDurationOr(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

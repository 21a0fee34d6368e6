package remote_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/syncqueue/pkg/remote"
)

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	t.Run("opens after threshold", func(t *testing.T) {
		t.Parallel()

		cb := remote.NewCircuitBreaker(2, 1, time.Hour)
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.Equal(t, remote.CircuitClosed, cb.State())
		cb.RecordFailure()
		assert.Equal(t, remote.CircuitOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("success resets failures", func(t *testing.T) {
		t.Parallel()

		cb := remote.NewCircuitBreaker(2, 1, time.Hour)
		cb.RecordFailure()
		cb.RecordSuccess()
		cb.RecordFailure()
		assert.Equal(t, remote.CircuitClosed, cb.State())
	})

	t.Run("half-open after recovery", func(t *testing.T) {
		t.Parallel()

		cb := remote.NewCircuitBreaker(1, 1, 20*time.Millisecond)
		cb.RecordFailure()
		assert.False(t, cb.Allow())

		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, remote.CircuitHalfOpen, cb.State())
		assert.True(t, cb.Allow())

		cb.RecordSuccess()
		assert.Equal(t, remote.CircuitClosed, cb.State())
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		t.Parallel()

		cb := remote.NewCircuitBreaker(1, 1, 20*time.Millisecond)
		cb.RecordFailure()
		time.Sleep(30 * time.Millisecond)
		assert.True(t, cb.Allow())
		cb.RecordFailure()
		assert.False(t, cb.Allow())
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()

		cb := remote.NewCircuitBreaker(1, 1, time.Hour)
		cb.RecordFailure()
		cb.Reset()
		assert.True(t, cb.Allow())
		assert.Equal(t, "closed", cb.State().String())
	})

	t.Run("reports transitions", func(t *testing.T) {
		t.Parallel()

		var moves []string
		cb := remote.NewCircuitBreaker(1, 1, 20*time.Millisecond)
		cb.OnStateChange(func(from, to remote.CircuitState) {
			moves = append(moves, from.String()+">"+to.String())
		})
		cb.RecordFailure()
		time.Sleep(30 * time.Millisecond)
		assert.True(t, cb.Allow())
		cb.RecordSuccess()

		assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, moves)
	})
}

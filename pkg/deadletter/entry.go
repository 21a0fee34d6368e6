package deadletter

import (
	"time"

	"github.com/dmitrymomot/syncqueue/pkg/mutation"
)

// Entry describes one evicted mutation.
type Entry struct {
	ID        string                   `json:"id"`
	Namespace string                   `json:"namespace"`
	Mutation  mutation.PendingMutation `json:"mutation"`
	Error     string                   `json:"error,omitempty"`
	Attempts  int                      `json:"attempts"`
	EvictedAt time.Time                `json:"evictedAt"`
}

// NewEntry builds an entry for m evicted from namespace after its last failure.
func NewEntry(namespace string, m mutation.PendingMutation, cause error) Entry {
	e := Entry{
		ID:        m.ID,
		Namespace: namespace,
		Mutation:  m,
		Attempts:  m.Attempt(),
		EvictedAt: time.Now().UTC(),
	}
	if cause != nil {
		e.Error = cause.Error()
	}
	return e
}

package syncqueue

import "github.com/dmitrymomot/syncqueue/pkg/mutation"

// Hook is called after each per-mutation decision in ProcessAll. It runs
// synchronously on the draining goroutine and must not panic.
type Hook func(m mutation.PendingMutation, success bool)

// SetOnMutationProcessed installs fn as the processing hook. Nil removes it.
func (q *Queue) SetOnMutationProcessed(fn Hook) {
	if fn == nil {
		q.hook.Store(nil)
		return
	}
	q.hook.Store(&fn)
}

func (q *Queue) notify(m mutation.PendingMutation, success bool) {
	if fn := q.hook.Load(); fn != nil {
		(*fn)(m, success)
	}
}

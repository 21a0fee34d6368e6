package remote

import (
	"container/list"
	"sync"
)

type claimState int

const (
	claimFresh claimState = iota
	claimInFlight
	claimDone
)

// recentIDs remembers the last N mutation ids the handler has seen, so a
// retried request for an already applied mutation is acknowledged without
// applying it twice. The least recently used id is forgotten first.
type recentIDs struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type recentEntry struct {
	id   string
	done bool
}

func newRecentIDs(capacity int) *recentIDs {
	if capacity <= 0 {
		capacity = 1
	}
	return &recentIDs{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// claim marks id as in flight unless it is already known.
func (r *recentIDs) claim(id string) claimState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.items[id]; ok {
		r.order.MoveToFront(elem)
		if elem.Value.(*recentEntry).done {
			return claimDone
		}
		return claimInFlight
	}

	r.items[id] = r.order.PushFront(&recentEntry{id: id})
	if r.order.Len() > r.capacity {
		oldest := r.order.Back()
		r.order.Remove(oldest)
		delete(r.items, oldest.Value.(*recentEntry).id)
	}
	return claimFresh
}

func (r *recentIDs) complete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elem, ok := r.items[id]; ok {
		elem.Value.(*recentEntry).done = true
	}
}

// release forgets id so a failed apply can be retried.
func (r *recentIDs) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elem, ok := r.items[id]; ok {
		r.order.Remove(elem)
		delete(r.items, id)
	}
}

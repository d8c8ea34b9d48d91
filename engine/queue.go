package engine

import "sync"

// eventQueue buffers events raised by toxcore callbacks until the owning
// loop drains them. toxcore fires callbacks from its transport goroutines,
// sometimes while holding its own locks, so handlers must never run there.
type eventQueue[E any] struct {
	mu      sync.Mutex
	pending []E
}

func (q *eventQueue[E]) push(ev E) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// drain delivers everything queued so far, in order, on the caller's
// goroutine. Events pushed while draining wait for the next call.
func (q *eventQueue[E]) drain(deliver func(E)) {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, ev := range batch {
		deliver(ev)
	}
}

func (q *eventQueue[E]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

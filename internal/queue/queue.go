// Package queue serializes writes per entity ID. Saves triggered by
// independent interactions (rapid field edits, each producing a debounced
// autosave) must not race and overwrite each other's fields; the queue
// guarantees strict submission order per ID while writes to different IDs
// proceed fully concurrently.
package queue

import "sync"

// Keyed chains operations per key. For a given key the Nth operation does
// not begin until the (N-1)th has completed, success or failure. A failed
// operation reports to its own waiter only; the next queued operation still
// proceeds. Completed chains free their map slot so the queue does not grow
// unbounded.
type Keyed struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewKeyed creates an empty queue.
func NewKeyed() *Keyed {
	return &Keyed{tails: make(map[string]chan struct{})}
}

// Enqueue schedules op behind any pending operations for key and returns a
// channel that delivers op's result exactly once.
func (q *Keyed) Enqueue(key string, op func() error) <-chan error {
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tails[key]
	q.tails[key] = done
	q.mu.Unlock()

	result := make(chan error, 1)
	go func() {
		if prev != nil {
			<-prev
		}
		err := op()

		q.mu.Lock()
		// Only the last link in the chain clears the slot.
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()

		close(done)
		result <- err
	}()
	return result
}

// Pending reports how many keys currently have an unfinished chain.
func (q *Keyed) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tails)
}

// Drain blocks until every chain present at the time of the call has
// completed. Operations enqueued afterwards are not waited for.
func (q *Keyed) Drain() {
	q.mu.Lock()
	tails := make([]chan struct{}, 0, len(q.tails))
	for _, t := range q.tails {
		tails = append(tails, t)
	}
	q.mu.Unlock()

	for _, t := range tails {
		<-t
	}
}

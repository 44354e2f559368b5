package notify

import "sync"

// queue is an unbounded FIFO used as a per-subscriber outbox.
// It doubles its ring when full so a slow browser never blocks Notify.
type queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	count  int
	closed bool

	grown int
}

func newQueue[T any](capacity int) *queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &queue[T]{ring: make([]T, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends an item. Returns false once the queue is closed.
func (q *queue[T]) push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.count == len(q.ring) {
		q.grow()
	}

	q.ring[(q.head+q.count)%len(q.ring)] = item
	q.count++
	q.cond.Signal()
	return true
}

// pop blocks until an item is available or the queue is closed and drained.
func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}

	var zero T
	if q.count == 0 {
		return zero, false
	}

	item := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	return item, true
}

// close wakes all waiters; remaining items are still delivered.
func (q *queue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// grow doubles the ring. Must be called with lock held.
func (q *queue[T]) grow() {
	next := make([]T, len(q.ring)*2)
	n := copy(next, q.ring[q.head:])
	copy(next[n:], q.ring[:q.head])
	q.ring = next
	q.head = 0
	q.grown++
}

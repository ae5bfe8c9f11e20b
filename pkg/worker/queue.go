package worker

import "sync"

// Queue is a pop-once sequence of image paths shared by all pool workers.
// It is filled once at construction and only ever shrinks.
type Queue struct {
	mu    sync.Mutex
	items []string
}

// NewQueue returns a queue holding a copy of paths.
func NewQueue(paths []string) *Queue {
	items := make([]string, len(paths))
	copy(items, paths)
	return &Queue{items: items}
}

// Pop removes and returns the last entry. ok is false when the queue is empty.
func (q *Queue) Pop() (path string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n == 0 {
		return "", false
	}
	path = q.items[n-1]
	q.items[n-1] = ""
	q.items = q.items[:n-1]
	return path, true
}

// Len returns the number of unclaimed entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of queued jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithSizeObserver is called with the queue depth after every change.
func WithSizeObserver(fn func(int)) Option {
	return func(q *InMemoryQueue) {
		if fn != nil {
			q.onSize = fn
		}
	}
}

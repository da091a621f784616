package jobs

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process Queue backed by a buffered channel. It is not durable:
// the runner reports interrupted tasks as exhausted instead of re-enqueueing them.
type MemoryQueue struct {
	tasks     chan Task
	closed    chan struct{}
	closeOnce sync.Once
}

// NewMemoryQueue returns a MemoryQueue holding up to size tasks.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{
		tasks:  make(chan Task, size),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}
	select {
	case q.tasks <- task:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-q.closed:
		return Task{}, ErrQueueClosed
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Close stops accepting tasks and wakes blocked consumers. Queued tasks are dropped.
func (q *MemoryQueue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
}

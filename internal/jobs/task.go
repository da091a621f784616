// Package jobs runs broadcast delivery asynchronously: a queue of tasks, a per-broadcast
// lock so one broadcast is never processed by two workers, and a runner that retries
// failed runs with exponential backoff up to an attempt ceiling.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"conreach/internal/domain"
)

// KindDeliverBroadcast is the only task kind today.
const KindDeliverBroadcast = "deliver_broadcast"

// ErrQueueClosed is returned by Dequeue after the queue is closed.
var ErrQueueClosed = errors.New("queue closed")

// Task is one queued unit of work.
type Task struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	BroadcastID string    `json:"broadcast_id"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// Queue transports tasks from producers to workers.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks until a task is available, the context ends, or the queue is closed.
	Dequeue(ctx context.Context) (Task, error)
}

// Handler executes one attempt of a task.
type Handler func(ctx context.Context, task Task) error

type deliveryQueue struct {
	queue Queue
	now   func() time.Time
}

// NewDeliveryQueue adapts q to domain.DeliveryQueue.
func NewDeliveryQueue(q Queue) domain.DeliveryQueue {
	return &deliveryQueue{queue: q, now: time.Now}
}

func (d *deliveryQueue) EnqueueDelivery(ctx context.Context, broadcastID string) error {
	if broadcastID == "" {
		return errors.New("broadcast id is required")
	}
	task := Task{
		ID:          uuid.NewString(),
		Kind:        KindDeliverBroadcast,
		BroadcastID: broadcastID,
		EnqueuedAt:  d.now().UTC(),
	}
	if err := d.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue delivery: %w", err)
	}
	return nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

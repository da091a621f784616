package services

import (
	"context"
	"errors"
	"fmt"

	"conreach/internal/domain"
	"conreach/internal/jobs"
)

// NewDeliveryHandler adapts a DeliveryWorker to the job runner.
// An unknown broadcast is not retried.
func NewDeliveryHandler(worker domain.DeliveryWorker) jobs.Handler {
	return func(ctx context.Context, task jobs.Task) error {
		if task.Kind != jobs.KindDeliverBroadcast {
			return jobs.Permanent(fmt.Errorf("unknown task kind %q", task.Kind))
		}
		_, err := worker.Deliver(ctx, task.BroadcastID)
		if errors.Is(err, domain.ErrNotFound) {
			return jobs.Permanent(err)
		}
		return err
	}
}

// NewExhaustedHook reports exhausted delivery tasks back to the worker.
func NewExhaustedHook(worker domain.DeliveryWorker) jobs.ExhaustedFunc {
	return func(ctx context.Context, task jobs.Task, cause error) {
		worker.DeliveryExhausted(context.WithoutCancel(ctx), task.BroadcastID, cause)
	}
}

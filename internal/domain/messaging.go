package domain

import "context"

// SendResult is the uniform outcome of one provider send. A rejected recipient is
// reported here with Success=false, never as an error.
type SendResult struct {
	Success           bool
	ProviderMessageID string
	Error             string
}

// MessagingProvider is the boundary to an external gateway. Destinations are already
// normalized. Send returns an error only for transport faults, wrapping ErrProviderTransport.
type MessagingProvider interface {
	Send(ctx context.Context, destination, body string) (SendResult, error)
}

// DeliveryQueue hands a broadcast off to asynchronous delivery.
type DeliveryQueue interface {
	EnqueueDelivery(ctx context.Context, broadcastID string) error
}

// DeliverySummary reports what one delivery run did.
type DeliverySummary struct {
	BroadcastID string
	Delivered   int
	Failed      int
	Skipped     int
}

// DeliveryWorker drains pending receipts of one broadcast.
type DeliveryWorker interface {
	Deliver(ctx context.Context, broadcastID string) (*DeliverySummary, error)
	// DeliveryExhausted is called when the job layer gives up retrying a broadcast.
	DeliveryExhausted(ctx context.Context, broadcastID string, cause error)
}

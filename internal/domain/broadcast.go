package domain

import (
	"context"
	"time"
)

// Broadcast is a vendor-initiated message. RecipientCount is fixed when the broadcast is
// dispatched and is never recomputed.
// swagger:model Broadcast
type Broadcast struct {
	ID                  string     `json:"id"`
	VendorEventID       string     `json:"vendor_event_id"`
	EventID             string     `json:"event_id"`
	Message             string     `json:"message"`
	Channel             Channel    `json:"channel"`
	Scope               Scope      `json:"scope"`
	SentAt              *time.Time `json:"sent_at"`
	RecipientCount      int        `json:"recipient_count"`
	DeliveryExhaustedAt *time.Time `json:"delivery_exhausted_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// BroadcastReceipt tracks delivery of one broadcast to one opt-in.
// swagger:model BroadcastReceipt
type BroadcastReceipt struct {
	ID                string        `json:"id"`
	BroadcastID       string        `json:"broadcast_id"`
	OptInID           string        `json:"opt_in_id"`
	Status            ReceiptStatus `json:"status"`
	DeliveredAt       *time.Time    `json:"delivered_at,omitempty"`
	ProviderMessageID string        `json:"provider_message_id,omitempty"`
	FailureReason     string        `json:"failure_reason,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// PendingDelivery is a pending receipt joined with the contact data needed to send it.
type PendingDelivery struct {
	ReceiptID string
	OptInID   string
	Name      string
	Phone     string
	Email     string
}

// ReceiptCounts aggregates receipt states for one broadcast.
type ReceiptCounts struct {
	Pending   int `json:"pending"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// BroadcastWithCounts bundles a broadcast with its receipt aggregate.
type BroadcastWithCounts struct {
	Broadcast *Broadcast    `json:"broadcast"`
	Receipts  ReceiptCounts `json:"receipts"`
}

// FeedItem is one entry of the public event feed.
// swagger:model FeedItem
type FeedItem struct {
	BroadcastID        string    `json:"broadcast_id"`
	VendorEventID      string    `json:"vendor_event_id"`
	VendorEventDisplay string    `json:"vendor_event_display"`
	Message            string    `json:"message"`
	Channel            Channel   `json:"channel"`
	SentAt             time.Time `json:"sent_at"`
}

// BroadcastRepository defines storage operations for broadcasts and their receipts.
type BroadcastRepository interface {
	// CreateWithReceipts inserts the broadcast and one pending receipt per opt-in ID in a
	// single transaction. b.RecipientCount must equal len(optInIDs).
	CreateWithReceipts(ctx context.Context, b *Broadcast, optInIDs []string) error
	GetByID(ctx context.Context, id string) (*Broadcast, error)
	ListPendingDeliveries(ctx context.Context, broadcastID string) ([]*PendingDelivery, error)
	// MarkDelivered and MarkFailed only move receipts out of pending; they return false
	// when the receipt was already settled.
	MarkDelivered(ctx context.Context, receiptID, providerMessageID string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, receiptID, reason string) (bool, error)
	CountReceipts(ctx context.Context, broadcastID string) (ReceiptCounts, error)
	ListReceipts(ctx context.Context, broadcastID string, params PaginationParams) ([]*BroadcastReceipt, int, error)
	SetDeliveryExhausted(ctx context.Context, broadcastID string, at *time.Time) error
	// ListStalled returns broadcasts whose delivery was exhausted or that were sent before
	// pendingBefore and still have pending receipts.
	ListStalled(ctx context.Context, pendingBefore time.Time, params PaginationParams) ([]*BroadcastWithCounts, int, error)
	ListFeed(ctx context.Context, eventID string, params PaginationParams) ([]*FeedItem, int, error)
}

// DispatchInput is the broadcast intake payload.
type DispatchInput struct {
	VendorEventID string
	Message       string
	Channel       Channel
	Scope         Scope
}

// BroadcastService dispatches broadcasts and exposes their delivery state.
type BroadcastService interface {
	Dispatch(ctx context.Context, in DispatchInput) (*Broadcast, error)
	Get(ctx context.Context, id string) (*BroadcastWithCounts, error)
	ListReceipts(ctx context.Context, id string, params PaginationParams) ([]*BroadcastReceipt, int, error)
	// Redeliver re-enqueues delivery for the broadcast's remaining pending receipts.
	Redeliver(ctx context.Context, id string) error
	// ListStalled lists broadcasts that need an operator: delivery gave up, or receipts have
	// stayed pending for longer than the stall threshold.
	ListStalled(ctx context.Context, params PaginationParams) ([]*BroadcastWithCounts, int, error)
}

// FeedService serves the public event feed.
type FeedService interface {
	ListFeed(ctx context.Context, eventID string, params PaginationParams) ([]*FeedItem, int, error)
}

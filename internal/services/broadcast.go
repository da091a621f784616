package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"conreach/internal/domain"
	"conreach/internal/metrics"
)

const (
	// DefaultMaxMessageLength is one SMS segment.
	DefaultMaxMessageLength = 160
	// DefaultStallAfter is how long receipts may stay pending before a broadcast counts as stalled.
	DefaultStallAfter = 15 * time.Minute
)

type broadcastService struct {
	vendorEvents  domain.VendorEventRepository
	optIns        domain.OptInRepository
	broadcasts    domain.BroadcastRepository
	queue         domain.DeliveryQueue
	maxMessageLen int
	stallAfter    time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewBroadcastService returns the broadcast dispatcher and its inspection operations.
// maxMessageLen <= 0 selects DefaultMaxMessageLength and stallAfter <= 0 DefaultStallAfter.
func NewBroadcastService(
	vendorEvents domain.VendorEventRepository,
	optIns domain.OptInRepository,
	broadcasts domain.BroadcastRepository,
	queue domain.DeliveryQueue,
	maxMessageLen int,
	stallAfter time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.BroadcastService {
	if maxMessageLen <= 0 {
		maxMessageLen = DefaultMaxMessageLength
	}
	if stallAfter <= 0 {
		stallAfter = DefaultStallAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &broadcastService{
		vendorEvents:  vendorEvents,
		optIns:        optIns,
		broadcasts:    broadcasts,
		queue:         queue,
		maxMessageLen: maxMessageLen,
		stallAfter:    stallAfter,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// Dispatch records the broadcast with one pending receipt per recipient, then enqueues
// delivery. The recipient set is read once; later opt-ins are not added.
func (s *broadcastService) Dispatch(ctx context.Context, in domain.DispatchInput) (*domain.Broadcast, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, domain.NewValidationError("message", "must not be blank")
	}
	if n := utf8.RuneCountInString(in.Message); n > s.maxMessageLen {
		return nil, domain.NewValidationError("message",
			fmt.Sprintf("must be at most %d characters (got %d)", s.maxMessageLen, n))
	}
	channel, err := domain.ParseChannel(string(in.Channel))
	if err != nil {
		return nil, err
	}
	scope, err := domain.ParseScope(string(in.Scope))
	if err != nil {
		return nil, err
	}

	ve, err := s.vendorEvents.GetByID(ctx, in.VendorEventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get vendor event: %w", err)
	}
	if !ve.Active {
		return nil, domain.NewValidationError("vendor_event_id", "vendor event is inactive")
	}

	var recipients []string
	switch scope {
	case domain.ScopeEntireCon:
		recipients, err = s.optIns.ListIDsByEvent(ctx, ve.EventID)
	case domain.ScopeBoothVisitors:
		recipients, err = s.optIns.ListIDsByVendorEvent(ctx, ve.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	now := s.now().UTC()
	b := &domain.Broadcast{
		VendorEventID:  ve.ID,
		EventID:        ve.EventID,
		Message:        in.Message,
		Channel:        channel,
		Scope:          scope,
		SentAt:         &now,
		RecipientCount: len(recipients),
		CreatedAt:      now,
	}
	if err := s.broadcasts.CreateWithReceipts(ctx, b, recipients); err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}
	s.metrics.IncBroadcast(string(channel), string(scope), b.RecipientCount)

	if b.RecipientCount == 0 {
		s.logger.InfoContext(ctx, "broadcast has no recipients", "broadcast_id", b.ID, "scope", scope)
		return b, nil
	}
	if err := s.queue.EnqueueDelivery(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("broadcast %s recorded but not enqueued: %w", b.ID, err)
	}
	s.logger.InfoContext(ctx, "broadcast dispatched",
		"broadcast_id", b.ID,
		"vendor_event_id", ve.ID,
		"channel", channel,
		"scope", scope,
		"recipients", b.RecipientCount,
	)
	return b, nil
}

func (s *broadcastService) Get(ctx context.Context, id string) (*domain.BroadcastWithCounts, error) {
	b, err := s.getBroadcast(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.broadcasts.CountReceipts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count receipts: %w", err)
	}
	return &domain.BroadcastWithCounts{Broadcast: b, Receipts: counts}, nil
}

func (s *broadcastService) ListReceipts(ctx context.Context, id string, params domain.PaginationParams) ([]*domain.BroadcastReceipt, int, error) {
	if _, err := s.getBroadcast(ctx, id); err != nil {
		return nil, 0, err
	}
	receipts, total, err := s.broadcasts.ListReceipts(ctx, id, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, total, nil
}

// Redeliver clears the exhausted marker and enqueues another run when receipts are still pending.
func (s *broadcastService) Redeliver(ctx context.Context, id string) error {
	b, err := s.getBroadcast(ctx, id)
	if err != nil {
		return err
	}
	counts, err := s.broadcasts.CountReceipts(ctx, id)
	if err != nil {
		return fmt.Errorf("count receipts: %w", err)
	}
	if b.DeliveryExhaustedAt != nil {
		if err := s.broadcasts.SetDeliveryExhausted(ctx, id, nil); err != nil {
			return fmt.Errorf("clear exhausted marker: %w", err)
		}
	}
	if counts.Pending == 0 {
		return nil
	}
	if err := s.queue.EnqueueDelivery(ctx, id); err != nil {
		return fmt.Errorf("enqueue delivery: %w", err)
	}
	s.logger.InfoContext(ctx, "broadcast redelivery enqueued", "broadcast_id", id, "pending", counts.Pending)
	return nil
}

func (s *broadcastService) ListStalled(ctx context.Context, params domain.PaginationParams) ([]*domain.BroadcastWithCounts, int, error) {
	items, total, err := s.broadcasts.ListStalled(ctx, s.now().Add(-s.stallAfter), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list stalled broadcasts: %w", err)
	}
	return items, total, nil
}

func (s *broadcastService) getBroadcast(ctx context.Context, id string) (*domain.Broadcast, error) {
	b, err := s.broadcasts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get broadcast: %w", err)
	}
	return b, nil
}

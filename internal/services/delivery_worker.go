package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"conreach/internal/domain"
	"conreach/internal/metrics"
)

// Failure reasons recorded on receipts that fail without a provider verdict.
const (
	ReasonNoDestination = "no_destination"
	ReasonTimeout       = "timeout"
	ReasonRejected      = "rejected"
)

const (
	DefaultMinSendInterval = 50 * time.Millisecond
	DefaultSendTimeout     = 10 * time.Second
)

// DeliveryConfig tunes provider pacing.
type DeliveryConfig struct {
	// MinInterval is the minimum delay between consecutive sends to one provider.
	MinInterval time.Duration
	// SendTimeout bounds a single provider call. A call that times out fails its receipt only.
	SendTimeout time.Duration
}

type deliveryWorker struct {
	broadcasts domain.BroadcastRepository
	providers  map[domain.Channel]domain.MessagingProvider
	limiters   map[domain.Channel]*rate.Limiter
	cfg        DeliveryConfig
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewDeliveryWorker returns a DeliveryWorker sending through providers keyed by channel.
// The feed channel needs no provider. Each provider gets one limiter shared by all runs.
func NewDeliveryWorker(
	broadcasts domain.BroadcastRepository,
	providers map[domain.Channel]domain.MessagingProvider,
	cfg DeliveryConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) domain.DeliveryWorker {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinSendInterval
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	limiters := make(map[domain.Channel]*rate.Limiter, len(providers))
	for ch := range providers {
		limiters[ch] = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return &deliveryWorker{
		broadcasts: broadcasts,
		providers:  providers,
		limiters:   limiters,
		cfg:        cfg,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Deliver walks the broadcast's pending receipts in order and settles each one.
// It returns an error only when the run must be retried; by then every receipt it
// settled is already persisted, so the retry resumes from what is still pending.
func (w *deliveryWorker) Deliver(ctx context.Context, broadcastID string) (*domain.DeliverySummary, error) {
	start := w.now()
	summary := &domain.DeliverySummary{BroadcastID: broadcastID}

	b, err := w.broadcasts.GetByID(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return summary, domain.ErrNotFound
		}
		return summary, fmt.Errorf("get broadcast: %w", err)
	}
	logger := w.logger.With("broadcast_id", b.ID, "channel", b.Channel)

	err = w.deliver(ctx, b, summary, logger)
	result := "ok"
	if err != nil {
		result = "error"
	}
	w.metrics.ObserveRun(string(b.Channel), result, w.now().Sub(start))
	logger.InfoContext(ctx, "delivery run finished",
		"delivered", summary.Delivered,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"result", result,
	)
	return summary, err
}

func (w *deliveryWorker) deliver(ctx context.Context, b *domain.Broadcast, summary *domain.DeliverySummary, logger *slog.Logger) error {
	pending, err := w.broadcasts.ListPendingDeliveries(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("list pending receipts: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	var provider domain.MessagingProvider
	var limiter *rate.Limiter
	switch b.Channel {
	case domain.ChannelFeed:
	case domain.ChannelSMS, domain.ChannelEmail:
		provider = w.providers[b.Channel]
		limiter = w.limiters[b.Channel]
		if provider == nil {
			return fmt.Errorf("no messaging provider configured for channel %q", b.Channel)
		}
	default:
		return fmt.Errorf("unknown channel %q", b.Channel)
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if provider == nil {
			// Feed broadcasts are already visible on the event feed.
			if err := w.markDelivered(ctx, b, p, "", summary); err != nil {
				return err
			}
			continue
		}

		dest := destination(b.Channel, p)
		if dest == "" {
			if err := w.markFailed(ctx, b, p, ReasonNoDestination, summary); err != nil {
				return err
			}
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for send slot: %w", err)
		}
		res, err := w.send(ctx, provider, dest, b.Message)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				logger.WarnContext(ctx, "provider call timed out", "receipt_id", p.ReceiptID)
				if err := w.markFailed(ctx, b, p, ReasonTimeout, summary); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("send receipt %s: %w", p.ReceiptID, err)
		}
		if res.Success {
			if err := w.markDelivered(ctx, b, p, res.ProviderMessageID, summary); err != nil {
				return err
			}
			continue
		}
		reason := res.Error
		if reason == "" {
			reason = ReasonRejected
		}
		logger.InfoContext(ctx, "provider rejected recipient", "receipt_id", p.ReceiptID, "reason", reason)
		if err := w.markFailed(ctx, b, p, reason, summary); err != nil {
			return err
		}
	}
	return nil
}

func (w *deliveryWorker) send(ctx context.Context, provider domain.MessagingProvider, dest, body string) (domain.SendResult, error) {
	sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
	defer cancel()
	return provider.Send(sendCtx, dest, body)
}

func (w *deliveryWorker) markDelivered(ctx context.Context, b *domain.Broadcast, p *domain.PendingDelivery, providerID string, summary *domain.DeliverySummary) error {
	changed, err := w.broadcasts.MarkDelivered(ctx, p.ReceiptID, providerID, w.now().UTC())
	if err != nil {
		return fmt.Errorf("mark receipt %s delivered: %w", p.ReceiptID, err)
	}
	if !changed {
		summary.Skipped++
		return nil
	}
	summary.Delivered++
	w.metrics.IncReceipt(string(b.Channel), string(domain.ReceiptDelivered))
	return nil
}

func (w *deliveryWorker) markFailed(ctx context.Context, b *domain.Broadcast, p *domain.PendingDelivery, reason string, summary *domain.DeliverySummary) error {
	changed, err := w.broadcasts.MarkFailed(ctx, p.ReceiptID, reason)
	if err != nil {
		return fmt.Errorf("mark receipt %s failed: %w", p.ReceiptID, err)
	}
	if !changed {
		summary.Skipped++
		return nil
	}
	summary.Failed++
	w.metrics.IncReceipt(string(b.Channel), string(domain.ReceiptFailed))
	return nil
}

// DeliveryExhausted stamps the broadcast so operators can find it. Pending receipts stay pending.
func (w *deliveryWorker) DeliveryExhausted(ctx context.Context, broadcastID string, cause error) {
	at := w.now().UTC()
	w.metrics.IncExhausted()
	if err := w.broadcasts.SetDeliveryExhausted(ctx, broadcastID, &at); err != nil {
		w.logger.ErrorContext(ctx, "mark delivery exhausted", "broadcast_id", broadcastID, "error", err)
	}
	counts, err := w.broadcasts.CountReceipts(ctx, broadcastID)
	if err != nil {
		w.logger.ErrorContext(ctx, "delivery exhausted", "broadcast_id", broadcastID, "cause", cause, "count_error", err)
		return
	}
	w.logger.ErrorContext(ctx, "delivery exhausted, receipts left pending",
		"broadcast_id", broadcastID,
		"pending", counts.Pending,
		"delivered", counts.Delivered,
		"failed", counts.Failed,
		"cause", cause,
	)
}

func destination(ch domain.Channel, p *domain.PendingDelivery) string {
	switch ch {
	case domain.ChannelSMS:
		return p.Phone
	case domain.ChannelEmail:
		return p.Email
	}
	return ""
}

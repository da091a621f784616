package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conreach/internal/domain"
	"conreach/internal/metrics"
)

type scanService struct {
	vendorEvents domain.VendorEventService
	resolver     domain.OptInResolver
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewScanService returns the scan intake: QR token to active booth, then opt-in resolution.
func NewScanService(vendorEvents domain.VendorEventService, resolver domain.OptInResolver, m *metrics.Metrics, logger *slog.Logger) domain.ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanService{vendorEvents: vendorEvents, resolver: resolver, metrics: m, logger: logger}
}

func (s *scanService) Scan(ctx context.Context, in domain.ScanInput) (*domain.ScanResult, error) {
	token := strings.TrimSpace(in.QRToken)
	ve, err := s.vendorEvents.GetActiveByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	res, err := s.resolver.Resolve(ctx, domain.ResolveInput{
		EventID:     ve.EventID,
		VendorEvent: ve,
		Contact:     in.Contact,
		UserID:      in.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve scan: %w", err)
	}

	s.metrics.IncScan(string(res.Outcome))
	s.logger.InfoContext(ctx, "scan resolved",
		"vendor_event_id", ve.ID,
		"event_id", ve.EventID,
		"opt_in_id", res.OptIn.ID,
		"outcome", res.Outcome,
	)
	return &domain.ScanResult{
		Outcome:            res.Outcome,
		OptInID:            res.OptIn.ID,
		VendorEventDisplay: ve.Display(),
	}, nil
}

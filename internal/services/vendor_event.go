package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conreach/internal/domain"
)

const maxTokenAttempts = 5

type vendorEventService struct {
	repo   domain.VendorEventRepository
	events domain.EventRepository
	tokens domain.TokenIssuer
	now    func() time.Time
}

// NewVendorEventService creates a VendorEventService with the given repositories and token issuer.
func NewVendorEventService(repo domain.VendorEventRepository, events domain.EventRepository, tokens domain.TokenIssuer) domain.VendorEventService {
	return &vendorEventService{repo: repo, events: events, tokens: tokens, now: time.Now}
}

func (s *vendorEventService) Register(ctx context.Context, in domain.RegisterVendorEventInput) (*domain.VendorEvent, bool, error) {
	vendorID := strings.TrimSpace(in.VendorID)
	eventID := strings.TrimSpace(in.EventID)
	if vendorID == "" {
		return nil, false, domain.NewValidationError("vendor_id", "is required")
	}
	if eventID == "" {
		return nil, false, domain.NewValidationError("event_id", "is required")
	}

	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	// Registration is idempotent per (vendor, event).
	if existing, err := s.repo.GetByVendorAndEvent(ctx, vendorID, eventID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get vendor event: %w", err)
	}

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		token, err := s.tokens.Issue(ctx, domain.TokenVendorEventQR)
		if err != nil {
			return nil, false, fmt.Errorf("issue qr token: %w", err)
		}
		now := s.now().UTC()
		ve := &domain.VendorEvent{
			VendorID:     vendorID,
			EventID:      eventID,
			QRToken:      token,
			Active:       true,
			DisplayOrder: in.DisplayOrder,
			Metadata:     in.Metadata,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.repo.Create(ctx, ve)
		switch {
		case err == nil:
			created, err := s.repo.GetByID(ctx, ve.ID)
			if err != nil {
				return nil, false, fmt.Errorf("reload vendor event: %w", err)
			}
			return created, true, nil
		case errors.Is(err, domain.ErrTokenTaken):
			continue
		case errors.Is(err, domain.ErrAlreadyExists):
			existing, err := s.repo.GetByVendorAndEvent(ctx, vendorID, eventID)
			if err != nil {
				return nil, false, fmt.Errorf("get vendor event: %w", err)
			}
			return existing, false, nil
		default:
			return nil, false, fmt.Errorf("create vendor event: %w", err)
		}
	}
	return nil, false, fmt.Errorf("create vendor event: qr token collided %d times", maxTokenAttempts)
}

func (s *vendorEventService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deactivate vendor event: %w", err)
	}
	return nil
}

func (s *vendorEventService) GetActiveByToken(ctx context.Context, token string) (*domain.VendorEvent, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	ve, err := s.repo.GetByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get vendor event by token: %w", err)
	}
	if !ve.Active {
		return nil, domain.ErrNotFound
	}
	return ve, nil
}

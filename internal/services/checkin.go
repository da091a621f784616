package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conreach/internal/domain"
)

type checkInService struct {
	optIns domain.OptInRepository
	now    func() time.Time
}

// NewCheckInService returns a CheckInService. Redeeming a token twice is not an error.
func NewCheckInService(optIns domain.OptInRepository) domain.CheckInService {
	return &checkInService{optIns: optIns, now: time.Now}
}

func (s *checkInService) CheckIn(ctx context.Context, token string) (*domain.CheckInResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNotFound
	}
	o, err := s.optIns.GetByCheckInToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get opt-in by check-in token: %w", err)
	}
	if o.CheckedInAt != nil {
		return &domain.CheckInResult{OptIn: o, AlreadyCheckedIn: true}, nil
	}

	at := s.now().UTC()
	changed, err := s.optIns.MarkCheckedIn(ctx, o.ID, at)
	if err != nil {
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	if !changed {
		// A concurrent redemption won; report the stored timestamp.
		current, err := s.optIns.GetByCheckInToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("reload opt-in: %w", err)
		}
		return &domain.CheckInResult{OptIn: current, AlreadyCheckedIn: true}, nil
	}
	o.CheckedInAt = &at
	return &domain.CheckInResult{OptIn: o}, nil
}

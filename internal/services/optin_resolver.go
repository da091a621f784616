package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conreach/internal/contact"
	"conreach/internal/domain"
)

// maxResolveAttempts bounds create-then-recheck rounds. Each lost race is followed by a
// lookup that finds the winner, so more than two rounds means the store is misbehaving.
const maxResolveAttempts = 5

type optInResolver struct {
	optIns       domain.OptInRepository
	vendorOptIns domain.VendorOptInRepository
	tokens       domain.TokenIssuer
	users        domain.UserMatcher
	normalizer   *contact.Normalizer
	logger       *slog.Logger
	now          func() time.Time
}

// NewOptInResolver returns the resolver that maps scans onto one opt-in per person per event.
// Deduplication rests on the store's unique (event, phone) and (event, email) constraints:
// a Create that loses a race reports ErrAlreadyExists and the winner is looked up again.
func NewOptInResolver(
	optIns domain.OptInRepository,
	vendorOptIns domain.VendorOptInRepository,
	tokens domain.TokenIssuer,
	users domain.UserMatcher,
	normalizer *contact.Normalizer,
	logger *slog.Logger,
) domain.OptInResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &optInResolver{
		optIns:       optIns,
		vendorOptIns: vendorOptIns,
		tokens:       tokens,
		users:        users,
		normalizer:   normalizer,
		logger:       logger,
		now:          time.Now,
	}
}

type normalizedContact struct {
	name  string
	phone contact.Phone
	email string
}

func (s *optInResolver) Resolve(ctx context.Context, in domain.ResolveInput) (*domain.Resolution, error) {
	if in.VendorEvent == nil {
		return nil, errors.New("resolve opt-in: vendor event is required")
	}
	eventID := in.EventID
	if eventID == "" {
		eventID = in.VendorEvent.EventID
	}
	if eventID != in.VendorEvent.EventID {
		return nil, domain.NewValidationError("event_id", "vendor event belongs to a different event")
	}

	c := normalizedContact{
		name:  strings.TrimSpace(in.Contact.Name),
		phone: s.normalizer.Phone(in.Contact.Phone),
		email: s.normalizer.Email(in.Contact.Email),
	}
	if c.name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if c.phone.Empty() && c.email == "" {
		return nil, domain.NewValidationError("contact", "a phone number or email address is required")
	}
	if !c.phone.Empty() && !c.phone.Confident {
		s.logger.WarnContext(ctx, "phone could not be normalized confidently",
			"event_id", eventID, "phone", contact.Mask(c.phone.Value))
	}

	userID := s.confirmUser(ctx, eventID, in.UserID)
	optIn, created, err := s.findOrCreate(ctx, eventID, in.VendorEvent.ID, c, userID)
	if err != nil {
		return nil, err
	}

	if !created && optIn.UserID == nil && userID != nil {
		attached, err := s.optIns.AttachUser(ctx, optIn.ID, *userID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "attach user failed", "opt_in_id", optIn.ID, "error", err)
		case attached:
			optIn.UserID = userID
		}
	}

	link, linkCreated, err := s.vendorOptIns.FindOrCreate(ctx, in.VendorEvent.ID, optIn.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("link vendor opt-in: %w", err)
	}

	outcome := domain.OutcomeLinkedExistingBooth
	switch {
	case created:
		outcome = domain.OutcomeCreated
	case linkCreated:
		outcome = domain.OutcomeLinkedNewBooth
	}
	return &domain.Resolution{Outcome: outcome, OptIn: optIn, Link: link}, nil
}

func (s *optInResolver) findOrCreate(ctx context.Context, eventID, vendorEventID string, c normalizedContact, userID *string) (*domain.OptIn, bool, error) {
	var resolvedUser *string
	userLooked := false
	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		existing, err := s.lookup(ctx, eventID, c)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}

		if !userLooked {
			resolvedUser = s.resolveUser(ctx, eventID, c, userID)
			userLooked = true
		}
		token, err := s.tokens.Issue(ctx, domain.TokenCheckIn)
		if err != nil {
			return nil, false, fmt.Errorf("issue check-in token: %w", err)
		}
		o := &domain.OptIn{
			EventID:       eventID,
			VendorEventID: vendorEventID,
			UserID:        resolvedUser,
			Name:          c.name,
			Phone:         c.phone.Value,
			Email:         c.email,
			CheckInToken:  token,
			OptedInAt:     s.now().UTC(),
		}
		err = s.optIns.Create(ctx, o)
		switch {
		case err == nil:
			return o, true, nil
		case errors.Is(err, domain.ErrAlreadyExists):
			s.logger.DebugContext(ctx, "opt-in create lost race, rechecking", "event_id", eventID, "attempt", attempt)
		case errors.Is(err, domain.ErrTokenTaken):
			s.logger.DebugContext(ctx, "check-in token collided, reissuing", "event_id", eventID, "attempt", attempt)
		default:
			return nil, false, fmt.Errorf("create opt-in: %w", err)
		}
	}
	return nil, false, fmt.Errorf("resolve opt-in: gave up after %d attempts", maxResolveAttempts)
}

// lookup finds the event's opt-in by phone, then by email when the phone is absent or unmatched.
func (s *optInResolver) lookup(ctx context.Context, eventID string, c normalizedContact) (*domain.OptIn, error) {
	if !c.phone.Empty() {
		o, err := s.optIns.GetByEventAndPhone(ctx, eventID, c.phone.Value)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get opt-in by phone: %w", err)
		}
	}
	if c.email != "" {
		o, err := s.optIns.GetByEventAndEmail(ctx, eventID, c.email)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get opt-in by email: %w", err)
		}
	}
	return nil, domain.ErrNotFound
}

// confirmUser keeps a caller-supplied account only when it exists. Anything else falls back
// to contact matching; a bad link never fails the scan.
func (s *optInResolver) confirmUser(ctx context.Context, eventID string, userID *string) *string {
	if userID == nil || *userID == "" || s.users == nil {
		return nil
	}
	ok, err := s.users.Exists(ctx, *userID)
	if err != nil {
		s.logger.WarnContext(ctx, "user check failed", "event_id", eventID, "error", err)
		return nil
	}
	if !ok {
		s.logger.WarnContext(ctx, "supplied user unknown, ignoring", "event_id", eventID)
		return nil
	}
	uid := *userID
	return &uid
}

// resolveUser never fails the scan: account matching is enrichment only.
func (s *optInResolver) resolveUser(ctx context.Context, eventID string, c normalizedContact, userID *string) *string {
	if userID != nil && *userID != "" {
		uid := *userID
		return &uid
	}
	if s.users == nil {
		return nil
	}
	id, err := s.users.Match(ctx, eventID, c.phone.Value, c.email)
	if err != nil {
		s.logger.WarnContext(ctx, "user match failed", "event_id", eventID, "error", err)
		return nil
	}
	if id == "" {
		return nil
	}
	return &id
}

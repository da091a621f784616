package services

import (
	"context"
	"errors"
	"fmt"

	"conreach/internal/domain"
)

type userMatcher struct {
	users domain.UserRepository
}

// NewUserMatcher returns a UserMatcher that looks up accounts by phone, then email.
// Lookups go through the LookupCache in the context when one is present.
func NewUserMatcher(users domain.UserRepository) domain.UserMatcher {
	return &userMatcher{users: users}
}

func (m *userMatcher) Match(ctx context.Context, eventID, phone, email string) (string, error) {
	cache := LookupCacheFrom(ctx)
	if phone != "" {
		id, err := cache.GetOrLoad("phone:"+phone, eventID, func() (string, error) {
			return notFoundAsEmpty(m.users.FindIDByPhone(ctx, phone))
		})
		if err != nil {
			return "", fmt.Errorf("match user by phone: %w", err)
		}
		if id != "" {
			return id, nil
		}
	}
	if email != "" {
		id, err := cache.GetOrLoad("email:"+email, eventID, func() (string, error) {
			return notFoundAsEmpty(m.users.FindIDByEmail(ctx, email))
		})
		if err != nil {
			return "", fmt.Errorf("match user by email: %w", err)
		}
		return id, nil
	}
	return "", nil
}

func (m *userMatcher) Exists(ctx context.Context, userID string) (bool, error) {
	ok, err := m.users.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return ok, nil
}

func notFoundAsEmpty(id string, err error) (string, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return id, err
}

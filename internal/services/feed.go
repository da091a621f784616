package services

import (
	"context"
	"errors"
	"fmt"

	"conreach/internal/domain"
)

type feedService struct {
	events     domain.EventRepository
	broadcasts domain.BroadcastRepository
}

// NewFeedService returns the public feed: sent broadcasts for an event, newest first.
func NewFeedService(events domain.EventRepository, broadcasts domain.BroadcastRepository) domain.FeedService {
	return &feedService{events: events, broadcasts: broadcasts}
}

func (s *feedService) ListFeed(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.FeedItem, int, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	items, total, err := s.broadcasts.ListFeed(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list feed: %w", err)
	}
	return items, total, nil
}

package domain

import (
	"context"
	"time"
)

// Event represents a con. Events are managed elsewhere; this service only reads them.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventRepository defines read access to events.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}

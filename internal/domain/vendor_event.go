package domain

import (
	"context"
	"fmt"
	"time"
)

// VendorEventMetadata is free-form booth placement info.
type VendorEventMetadata struct {
	BoothNumber string `json:"booth_number,omitempty"`
	Hall        string `json:"hall,omitempty"`
}

// VendorEvent is a vendor's participation in one event, reachable through its QR token.
// swagger:model VendorEvent
type VendorEvent struct {
	ID           string              `json:"id"`
	VendorID     string              `json:"vendor_id"`
	EventID      string              `json:"event_id"`
	VendorName   string              `json:"vendor_name,omitempty"`
	QRToken      string              `json:"qr_token"`
	Active       bool                `json:"active"`
	DisplayOrder int                 `json:"display_order"`
	Metadata     VendorEventMetadata `json:"metadata"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Display returns the human label shown after a scan, e.g. "Acme (Booth 12, Hall B)".
func (v *VendorEvent) Display() string {
	switch {
	case v.Metadata.BoothNumber != "" && v.Metadata.Hall != "":
		return fmt.Sprintf("%s (Booth %s, %s)", v.VendorName, v.Metadata.BoothNumber, v.Metadata.Hall)
	case v.Metadata.BoothNumber != "":
		return fmt.Sprintf("%s (Booth %s)", v.VendorName, v.Metadata.BoothNumber)
	case v.Metadata.Hall != "":
		return fmt.Sprintf("%s (%s)", v.VendorName, v.Metadata.Hall)
	}
	return v.VendorName
}

// VendorEventRepository defines storage operations for vendor events.
type VendorEventRepository interface {
	// Create inserts the row. Returns ErrAlreadyExists when (vendor, event) is taken
	// and ErrTokenTaken when the QR token lost a uniqueness race.
	Create(ctx context.Context, ve *VendorEvent) error
	GetByID(ctx context.Context, id string) (*VendorEvent, error)
	GetByVendorAndEvent(ctx context.Context, vendorID, eventID string) (*VendorEvent, error)
	// GetByQRToken is a single equality lookup; inactive rows are returned too.
	GetByQRToken(ctx context.Context, token string) (*VendorEvent, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
}

// RegisterVendorEventInput is the input for VendorEventService.Register.
type RegisterVendorEventInput struct {
	VendorID     string
	EventID      string
	DisplayOrder int
	Metadata     VendorEventMetadata
}

// VendorEventService issues and manages booth QR codes.
type VendorEventService interface {
	// Register returns (ve, created, err); created is false when the vendor already participates.
	Register(ctx context.Context, in RegisterVendorEventInput) (*VendorEvent, bool, error)
	Deactivate(ctx context.Context, id string) error
	// GetActiveByToken returns ErrNotFound for unknown or inactive tokens.
	GetActiveByToken(ctx context.Context, token string) (*VendorEvent, error)
}

package domain

import (
	"context"
	"time"
)

// OptIn is one visitor identity at an event. Phone and email are stored normalized;
// at least one is set. Identity fields never change after creation; only UserID may be
// filled in later.
// swagger:model OptIn
type OptIn struct {
	ID            string     `json:"id"`
	EventID       string     `json:"event_id"`
	VendorEventID string     `json:"vendor_event_id"`
	UserID        *string    `json:"user_id,omitempty"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
	CheckInToken  string     `json:"-"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	OptedInAt     time.Time  `json:"opted_in_at"`
}

// VendorOptIn records that a booth has scanned an opt-in. Unique per (VendorEventID, OptInID).
type VendorOptIn struct {
	ID            string    `json:"id"`
	VendorEventID string    `json:"vendor_event_id"`
	OptInID       string    `json:"opt_in_id"`
	ScannedAt     time.Time `json:"scanned_at"`
}

// OptInRepository defines storage operations for opt-ins.
// Implementations enforce unique (event, phone) and (event, email).
type OptInRepository interface {
	// Create returns ErrAlreadyExists when the phone or email is already opted in at the
	// event, and ErrTokenTaken when the check-in token collided.
	Create(ctx context.Context, o *OptIn) error
	GetByEventAndPhone(ctx context.Context, eventID, phone string) (*OptIn, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*OptIn, error)
	GetByCheckInToken(ctx context.Context, token string) (*OptIn, error)
	// AttachUser sets user_id only when it is still empty. Returns true if the row changed.
	AttachUser(ctx context.Context, optInID, userID string) (bool, error)
	// MarkCheckedIn sets checked_in_at only when it is still empty. Returns true if the row changed.
	MarkCheckedIn(ctx context.Context, optInID string, at time.Time) (bool, error)
	ListIDsByEvent(ctx context.Context, eventID string) ([]string, error)
	ListIDsByVendorEvent(ctx context.Context, vendorEventID string) ([]string, error)
}

// VendorOptInRepository defines storage operations for booth scan links.
type VendorOptInRepository interface {
	// FindOrCreate returns the link for the pair, creating it if absent.
	// created reports whether this call inserted the row.
	FindOrCreate(ctx context.Context, vendorEventID, optInID string, scannedAt time.Time) (link *VendorOptIn, created bool, err error)
}

// ContactInput is the raw contact data captured at a booth.
type ContactInput struct {
	Name  string
	Phone string
	Email string
}

// ResolveInput is the input to OptInResolver.Resolve.
type ResolveInput struct {
	EventID     string
	VendorEvent *VendorEvent
	Contact     ContactInput
	// UserID is a pre-resolved account link, if the caller already knows it.
	UserID *string
}

// Resolution is the result of resolving a scan.
type Resolution struct {
	Outcome ResolutionOutcome `json:"outcome"`
	OptIn   *OptIn            `json:"opt_in"`
	Link    *VendorOptIn      `json:"link"`
}

// OptInResolver maps a scan onto exactly one opt-in per person per event.
type OptInResolver interface {
	Resolve(ctx context.Context, in ResolveInput) (*Resolution, error)
}

// ScanInput is the scan intake payload.
type ScanInput struct {
	QRToken string
	Contact ContactInput
	UserID  *string
}

// ScanResult is returned to the web layer after a scan.
type ScanResult struct {
	Outcome            ResolutionOutcome `json:"outcome"`
	OptInID            string            `json:"opt_in_id"`
	VendorEventDisplay string            `json:"vendor_event_display"`
}

// ScanService resolves a QR token and runs the opt-in resolver.
type ScanService interface {
	Scan(ctx context.Context, in ScanInput) (*ScanResult, error)
}

// CheckInResult is returned after a check-in token is redeemed.
type CheckInResult struct {
	OptIn            *OptIn `json:"opt_in"`
	AlreadyCheckedIn bool   `json:"already_checked_in"`
}

// CheckInService redeems per-attendee check-in tokens.
type CheckInService interface {
	CheckIn(ctx context.Context, token string) (*CheckInResult, error)
}

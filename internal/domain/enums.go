package domain

import "fmt"

// Channel is the medium a broadcast is delivered over.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelFeed  Channel = "feed"
)

// ParseChannel returns the Channel for s or a validation error.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelSMS, ChannelEmail, ChannelFeed:
		return c, nil
	}
	return "", NewValidationError("channel", fmt.Sprintf("unknown channel %q", s))
}

// Scope selects which opt-ins a broadcast reaches.
type Scope string

const (
	ScopeBoothVisitors Scope = "booth_visitors"
	ScopeEntireCon     Scope = "entire_con"
)

// ParseScope returns the Scope for s or a validation error.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case ScopeBoothVisitors, ScopeEntireCon:
		return sc, nil
	}
	return "", NewValidationError("scope", fmt.Sprintf("unknown scope %q", s))
}

// ReceiptStatus is the delivery state of one BroadcastReceipt.
// pending moves to delivered or failed exactly once.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptDelivered ReceiptStatus = "delivered"
	ReceiptFailed    ReceiptStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ReceiptStatus) Valid() bool {
	switch s {
	case ReceiptPending, ReceiptDelivered, ReceiptFailed:
		return true
	}
	return false
}

// Settled reports whether the status is terminal.
func (s ReceiptStatus) Settled() bool {
	return s == ReceiptDelivered || s == ReceiptFailed
}

// ResolutionOutcome classifies the result of resolving a scan to an opt-in.
type ResolutionOutcome string

const (
	OutcomeCreated             ResolutionOutcome = "created"
	OutcomeLinkedExistingBooth ResolutionOutcome = "linked_existing_booth"
	OutcomeLinkedNewBooth      ResolutionOutcome = "linked_new_booth"
)

// TokenKind names the uniqueness scope an opaque token is issued into.
type TokenKind string

const (
	TokenVendorEventQR TokenKind = "vendor_event_qr"
	TokenCheckIn       TokenKind = "check_in"
)

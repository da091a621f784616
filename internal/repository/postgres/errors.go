package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Unique constraint and index names from internal/db/migrations.
const (
	constraintVendorEventPair    = "vendor_events_vendor_event_key"
	constraintVendorEventQRToken = "vendor_events_qr_token_key"
	constraintOptInCheckInToken  = "opt_ins_check_in_token_key"
	constraintOptInEventPhone    = "opt_ins_event_phone_key"
	constraintOptInEventEmail    = "opt_ins_event_email_key"
)

const pqUniqueViolation = "23505"

// uniqueViolation returns the *pq.Error when err is a unique violation.
func uniqueViolation(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr, true
	}
	return nil, false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

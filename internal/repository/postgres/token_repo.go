package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"conreach/internal/domain"
)

type tokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository returns a domain.TokenStore that checks the token columns directly.
func NewTokenRepository(db *sql.DB) domain.TokenStore {
	return &tokenRepository{DB: db}
}

func (r *tokenRepository) TokenExists(ctx context.Context, kind domain.TokenKind, token string) (bool, error) {
	var query string
	switch kind {
	case domain.TokenVendorEventQR:
		query = `SELECT EXISTS (SELECT 1 FROM vendor_events WHERE qr_token = $1)`
	case domain.TokenCheckIn:
		query = `SELECT EXISTS (SELECT 1 FROM opt_ins WHERE check_in_token = $1)`
	default:
		return false, fmt.Errorf("unknown token kind %q", kind)
	}
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conreach/internal/domain"
)

type vendorEventRepository struct {
	DB *sql.DB
}

func NewVendorEventRepository(db *sql.DB) domain.VendorEventRepository {
	return &vendorEventRepository{
		DB: db,
	}
}

const vendorEventColumns = `
	ve.id, ve.vendor_id, ve.event_id, v.name, ve.qr_token, ve.is_active,
	ve.display_order, ve.metadata, ve.created_at, ve.updated_at
`

func (r *vendorEventRepository) Create(ctx context.Context, ve *domain.VendorEvent) error {
	meta, err := json.Marshal(ve.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	query := `
		INSERT INTO vendor_events (vendor_id, event_id, qr_token, is_active, display_order, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		ve.VendorID, ve.EventID, ve.QRToken, ve.Active, ve.DisplayOrder, meta, ve.CreatedAt, ve.UpdatedAt,
	).Scan(&ve.ID)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			switch pqErr.Constraint {
			case constraintVendorEventQRToken:
				return domain.ErrTokenTaken
			case constraintVendorEventPair:
				return domain.ErrAlreadyExists
			}
			return err
		}
		return err
	}
	return nil
}

func (r *vendorEventRepository) GetByID(ctx context.Context, id string) (*domain.VendorEvent, error) {
	query := `SELECT ` + vendorEventColumns + `
		FROM vendor_events ve
		JOIN vendors v ON v.id = ve.vendor_id
		WHERE ve.id = $1
	`
	return scanVendorEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *vendorEventRepository) GetByVendorAndEvent(ctx context.Context, vendorID, eventID string) (*domain.VendorEvent, error) {
	query := `SELECT ` + vendorEventColumns + `
		FROM vendor_events ve
		JOIN vendors v ON v.id = ve.vendor_id
		WHERE ve.vendor_id = $1 AND ve.event_id = $2
	`
	return scanVendorEvent(r.DB.QueryRowContext(ctx, query, vendorID, eventID))
}

func (r *vendorEventRepository) GetByQRToken(ctx context.Context, token string) (*domain.VendorEvent, error) {
	query := `SELECT ` + vendorEventColumns + `
		FROM vendor_events ve
		JOIN vendors v ON v.id = ve.vendor_id
		WHERE ve.qr_token = $1
	`
	return scanVendorEvent(r.DB.QueryRowContext(ctx, query, token))
}

func (r *vendorEventRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE vendor_events SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanVendorEvent(row rowScanner) (*domain.VendorEvent, error) {
	ve := &domain.VendorEvent{}
	var meta []byte
	err := row.Scan(
		&ve.ID, &ve.VendorID, &ve.EventID, &ve.VendorName, &ve.QRToken, &ve.Active,
		&ve.DisplayOrder, &meta, &ve.CreatedAt, &ve.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &ve.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return ve, nil
}

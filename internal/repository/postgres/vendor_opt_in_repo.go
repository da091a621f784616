package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"conreach/internal/domain"
)

type vendorOptInRepository struct {
	DB *sql.DB
}

// NewVendorOptInRepository returns a domain.VendorOptInRepository implemented with Postgres.
func NewVendorOptInRepository(db *sql.DB) domain.VendorOptInRepository {
	return &vendorOptInRepository{DB: db}
}

// FindOrCreate inserts with ON CONFLICT DO NOTHING so concurrent scans of the same pair
// converge on one row; when nothing was inserted the existing row is read back.
func (r *vendorOptInRepository) FindOrCreate(ctx context.Context, vendorEventID, optInID string, scannedAt time.Time) (*domain.VendorOptIn, bool, error) {
	link := &domain.VendorOptIn{VendorEventID: vendorEventID, OptInID: optInID}
	insert := `
		INSERT INTO vendor_opt_ins (vendor_event_id, opt_in_id, scanned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (vendor_event_id, opt_in_id) DO NOTHING
		RETURNING id, scanned_at
	`
	err := r.DB.QueryRowContext(ctx, insert, vendorEventID, optInID, scannedAt).Scan(&link.ID, &link.ScannedAt)
	if err == nil {
		return link, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	sel := `
		SELECT id, scanned_at
		FROM vendor_opt_ins
		WHERE vendor_event_id = $1 AND opt_in_id = $2
	`
	if err := r.DB.QueryRowContext(ctx, sel, vendorEventID, optInID).Scan(&link.ID, &link.ScannedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, err
	}
	return link, false, nil
}

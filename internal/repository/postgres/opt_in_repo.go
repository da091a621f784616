package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"conreach/internal/domain"
)

type optInRepository struct {
	DB *sql.DB
}

// NewOptInRepository returns a domain.OptInRepository implemented with Postgres.
// Dedup relies on the opt_ins_event_phone_key and opt_ins_event_email_key unique indexes.
func NewOptInRepository(db *sql.DB) domain.OptInRepository {
	return &optInRepository{DB: db}
}

const optInColumns = `
	id, event_id, vendor_event_id, user_id, name, phone, email, check_in_token, checked_in_at, opted_in_at
`

func (r *optInRepository) Create(ctx context.Context, o *domain.OptIn) error {
	query := `
		INSERT INTO opt_ins (event_id, vendor_event_id, user_id, name, phone, email, check_in_token, opted_in_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		o.EventID, o.VendorEventID, nullStringPtr(o.UserID), o.Name,
		nullString(o.Phone), nullString(o.Email), o.CheckInToken, o.OptedInAt,
	).Scan(&o.ID)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			switch pqErr.Constraint {
			case constraintOptInCheckInToken:
				return domain.ErrTokenTaken
			case constraintOptInEventPhone, constraintOptInEventEmail:
				return domain.ErrAlreadyExists
			}
			return err
		}
		return err
	}
	return nil
}

func (r *optInRepository) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.OptIn, error) {
	query := `SELECT ` + optInColumns + ` FROM opt_ins WHERE event_id = $1 AND phone = $2`
	return scanOptIn(r.DB.QueryRowContext(ctx, query, eventID, phone))
}

func (r *optInRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.OptIn, error) {
	query := `SELECT ` + optInColumns + ` FROM opt_ins WHERE event_id = $1 AND email = $2`
	return scanOptIn(r.DB.QueryRowContext(ctx, query, eventID, email))
}

func (r *optInRepository) GetByCheckInToken(ctx context.Context, token string) (*domain.OptIn, error) {
	query := `SELECT ` + optInColumns + ` FROM opt_ins WHERE check_in_token = $1`
	return scanOptIn(r.DB.QueryRowContext(ctx, query, token))
}

func (r *optInRepository) AttachUser(ctx context.Context, optInID, userID string) (bool, error) {
	query := `UPDATE opt_ins SET user_id = $2 WHERE id = $1 AND user_id IS NULL`
	result, err := r.DB.ExecContext(ctx, query, optInID, userID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *optInRepository) MarkCheckedIn(ctx context.Context, optInID string, at time.Time) (bool, error) {
	query := `UPDATE opt_ins SET checked_in_at = $2 WHERE id = $1 AND checked_in_at IS NULL`
	result, err := r.DB.ExecContext(ctx, query, optInID, at)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *optInRepository) ListIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	query := `
		SELECT id
		FROM opt_ins
		WHERE event_id = $1
		ORDER BY opted_in_at, id
	`
	return r.listIDs(ctx, query, eventID)
}

func (r *optInRepository) ListIDsByVendorEvent(ctx context.Context, vendorEventID string) ([]string, error) {
	query := `
		SELECT vo.opt_in_id
		FROM vendor_opt_ins vo
		WHERE vo.vendor_event_id = $1
		ORDER BY vo.scanned_at, vo.opt_in_id
	`
	return r.listIDs(ctx, query, vendorEventID)
}

func (r *optInRepository) listIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOptIn(row rowScanner) (*domain.OptIn, error) {
	o := &domain.OptIn{}
	var userID, phone, email sql.NullString
	var checkedIn sql.NullTime
	err := row.Scan(
		&o.ID, &o.EventID, &o.VendorEventID, &userID, &o.Name, &phone, &email,
		&o.CheckInToken, &checkedIn, &o.OptedInAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if userID.Valid {
		o.UserID = &userID.String
	}
	o.Phone = phone.String
	o.Email = email.String
	if checkedIn.Valid {
		o.CheckedInAt = &checkedIn.Time
	}
	return o, nil
}

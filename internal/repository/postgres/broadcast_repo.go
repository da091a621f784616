package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"conreach/internal/domain"
)

type broadcastRepository struct {
	DB *sql.DB
}

// NewBroadcastRepository returns a domain.BroadcastRepository implemented with Postgres.
func NewBroadcastRepository(db *sql.DB) domain.BroadcastRepository {
	return &broadcastRepository{DB: db}
}

func (r *broadcastRepository) CreateWithReceipts(ctx context.Context, b *domain.Broadcast, optInIDs []string) (err error) {
	if b.RecipientCount != len(optInIDs) {
		return fmt.Errorf("recipient count %d does not match %d recipients", b.RecipientCount, len(optInIDs))
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insertBroadcast := `
		INSERT INTO broadcasts (vendor_event_id, message, channel, scope, sent_at, recipient_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, insertBroadcast,
		b.VendorEventID, b.Message, string(b.Channel), string(b.Scope), b.SentAt, b.RecipientCount, b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("insert broadcast: %w", err)
	}

	if len(optInIDs) > 0 {
		insertReceipts := `
			INSERT INTO broadcast_receipts (broadcast_id, opt_in_id, status, created_at, updated_at)
			SELECT $1, unnest($2::uuid[]), 'pending', $3, $3
		`
		var result sql.Result
		result, err = tx.ExecContext(ctx, insertReceipts, b.ID, pq.Array(optInIDs), b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert receipts: %w", err)
		}
		rows, _ := result.RowsAffected()
		if int(rows) != len(optInIDs) {
			err = fmt.Errorf("inserted %d receipts, want %d", rows, len(optInIDs))
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit broadcast: %w", err)
	}
	return nil
}

const broadcastColumns = `
	b.id, b.vendor_event_id, ve.event_id, b.message, b.channel, b.scope,
	b.sent_at, b.recipient_count, b.delivery_exhausted_at, b.created_at
`

func (r *broadcastRepository) GetByID(ctx context.Context, id string) (*domain.Broadcast, error) {
	query := `SELECT ` + broadcastColumns + `
		FROM broadcasts b
		JOIN vendor_events ve ON ve.id = b.vendor_event_id
		WHERE b.id = $1
	`
	return scanBroadcast(r.DB.QueryRowContext(ctx, query, id))
}

func (r *broadcastRepository) ListPendingDeliveries(ctx context.Context, broadcastID string) ([]*domain.PendingDelivery, error) {
	query := `
		SELECT r.id, o.id, o.name, o.phone, o.email
		FROM broadcast_receipts r
		JOIN opt_ins o ON o.id = r.opt_in_id
		WHERE r.broadcast_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at, r.id
	`
	rows, err := r.DB.QueryContext(ctx, query, broadcastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pending := make([]*domain.PendingDelivery, 0)
	for rows.Next() {
		p := &domain.PendingDelivery{}
		var phone, email sql.NullString
		if err := rows.Scan(&p.ReceiptID, &p.OptInID, &p.Name, &phone, &email); err != nil {
			return nil, err
		}
		p.Phone = phone.String
		p.Email = email.String
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *broadcastRepository) MarkDelivered(ctx context.Context, receiptID, providerMessageID string, at time.Time) (bool, error) {
	query := `
		UPDATE broadcast_receipts
		SET status = 'delivered', delivered_at = $2, provider_message_id = $3, updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, receiptID, at, nullString(providerMessageID))
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *broadcastRepository) MarkFailed(ctx context.Context, receiptID, reason string) (bool, error) {
	query := `
		UPDATE broadcast_receipts
		SET status = 'failed', failure_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, receiptID, nullString(reason))
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *broadcastRepository) CountReceipts(ctx context.Context, broadcastID string) (domain.ReceiptCounts, error) {
	query := `
		SELECT status, COUNT(*)
		FROM broadcast_receipts
		WHERE broadcast_id = $1
		GROUP BY status
	`
	var counts domain.ReceiptCounts
	rows, err := r.DB.QueryContext(ctx, query, broadcastID)
	if err != nil {
		return counts, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		switch domain.ReceiptStatus(status) {
		case domain.ReceiptPending:
			counts.Pending = n
		case domain.ReceiptDelivered:
			counts.Delivered = n
		case domain.ReceiptFailed:
			counts.Failed = n
		default:
			return counts, fmt.Errorf("unknown receipt status %q", status)
		}
	}
	return counts, rows.Err()
}

func (r *broadcastRepository) ListReceipts(ctx context.Context, broadcastID string, params domain.PaginationParams) ([]*domain.BroadcastReceipt, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM broadcast_receipts WHERE broadcast_id = $1`, broadcastID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, broadcast_id, opt_in_id, status, delivered_at, provider_message_id, failure_reason, created_at
		FROM broadcast_receipts
		WHERE broadcast_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, broadcastID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	receipts := make([]*domain.BroadcastReceipt, 0)
	for rows.Next() {
		rc := &domain.BroadcastReceipt{}
		var status string
		var deliveredAt sql.NullTime
		var providerID, reason sql.NullString
		if err := rows.Scan(&rc.ID, &rc.BroadcastID, &rc.OptInID, &status, &deliveredAt, &providerID, &reason, &rc.CreatedAt); err != nil {
			return nil, 0, err
		}
		rc.Status = domain.ReceiptStatus(status)
		if deliveredAt.Valid {
			rc.DeliveredAt = &deliveredAt.Time
		}
		rc.ProviderMessageID = providerID.String
		rc.FailureReason = reason.String
		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

func (r *broadcastRepository) SetDeliveryExhausted(ctx context.Context, broadcastID string, at *time.Time) error {
	query := `UPDATE broadcasts SET delivery_exhausted_at = $2 WHERE id = $1`
	var value sql.NullTime
	if at != nil {
		value = sql.NullTime{Time: *at, Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query, broadcastID, value)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// stalledCondition matches broadcasts whose delivery gave up, and broadcasts sent before $1
// that still have pending receipts, which covers a task lost before it could finish.
const stalledCondition = `
	b.delivery_exhausted_at IS NOT NULL
	OR (b.sent_at < $1 AND EXISTS (
		SELECT 1 FROM broadcast_receipts p
		WHERE p.broadcast_id = b.id AND p.status = 'pending'
	))
`

func (r *broadcastRepository) ListStalled(ctx context.Context, pendingBefore time.Time, params domain.PaginationParams) ([]*domain.BroadcastWithCounts, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM broadcasts b WHERE `+stalledCondition,
		pendingBefore,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + broadcastColumns + `,
			COUNT(r.id) FILTER (WHERE r.status = 'pending'),
			COUNT(r.id) FILTER (WHERE r.status = 'delivered'),
			COUNT(r.id) FILTER (WHERE r.status = 'failed')
		FROM broadcasts b
		JOIN vendor_events ve ON ve.id = b.vendor_event_id
		LEFT JOIN broadcast_receipts r ON r.broadcast_id = b.id
		WHERE ` + stalledCondition + `
		GROUP BY b.id, ve.event_id
		ORDER BY COALESCE(b.delivery_exhausted_at, b.sent_at) DESC, b.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, pendingBefore, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]*domain.BroadcastWithCounts, 0)
	for rows.Next() {
		item := &domain.BroadcastWithCounts{}
		b, err := scanBroadcastWith(rows, &item.Receipts.Pending, &item.Receipts.Delivered, &item.Receipts.Failed)
		if err != nil {
			return nil, 0, err
		}
		item.Broadcast = b
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *broadcastRepository) ListFeed(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.FeedItem, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM broadcasts b
		JOIN vendor_events ve ON ve.id = b.vendor_event_id
		WHERE ve.event_id = $1 AND b.sent_at IS NOT NULL
	`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT b.id, b.vendor_event_id, v.name, ve.metadata, b.message, b.channel, b.sent_at
		FROM broadcasts b
		JOIN vendor_events ve ON ve.id = b.vendor_event_id
		JOIN vendors v ON v.id = ve.vendor_id
		WHERE ve.event_id = $1 AND b.sent_at IS NOT NULL
		ORDER BY b.sent_at DESC, b.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]*domain.FeedItem, 0)
	for rows.Next() {
		item := &domain.FeedItem{}
		ve := &domain.VendorEvent{}
		var meta []byte
		var channel string
		if err := rows.Scan(&item.BroadcastID, &item.VendorEventID, &ve.VendorName, &meta, &item.Message, &channel, &item.SentAt); err != nil {
			return nil, 0, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ve.Metadata); err != nil {
				return nil, 0, fmt.Errorf("decode metadata: %w", err)
			}
		}
		item.Channel = domain.Channel(channel)
		item.VendorEventDisplay = ve.Display()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func scanBroadcast(row rowScanner) (*domain.Broadcast, error) {
	b, err := scanBroadcastWith(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanBroadcastWith(row rowScanner, extra ...any) (*domain.Broadcast, error) {
	b := &domain.Broadcast{}
	var channel, scope string
	var sentAt, exhaustedAt sql.NullTime
	dest := []any{
		&b.ID, &b.VendorEventID, &b.EventID, &b.Message, &channel, &scope,
		&sentAt, &b.RecipientCount, &exhaustedAt, &b.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Channel = domain.Channel(channel)
	b.Scope = domain.Scope(scope)
	if sentAt.Valid {
		b.SentAt = &sentAt.Time
	}
	if exhaustedAt.Valid {
		b.DeliveryExhaustedAt = &exhaustedAt.Time
	}
	return b, nil
}

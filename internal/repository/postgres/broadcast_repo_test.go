package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"conreach/internal/domain"
)

var broadcastRowColumns = []string{
	"id", "vendor_event_id", "event_id", "message", "channel", "scope",
	"sent_at", "recipient_count", "delivery_exhausted_at", "created_at",
}

func newTestBroadcast(now time.Time, count int) *domain.Broadcast {
	return &domain.Broadcast{
		VendorEventID:  "ve-1",
		Message:        "20% off at booth 12",
		Channel:        domain.ChannelSMS,
		Scope:          domain.ScopeBoothVisitors,
		SentAt:         &now,
		RecipientCount: count,
		CreatedAt:      now,
	}
}

func TestBroadcastRepository_CreateWithReceipts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ids     []string
		count   int
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name:  "commits broadcast and receipts",
			ids:   []string{"oi-1", "oi-2"},
			count: 2,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO broadcasts`).
					WithArgs("ve-1", "20% off at booth 12", "sms", "booth_visitors", sqlmock.AnyArg(), 2, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))
				mock.ExpectExec(`INSERT INTO broadcast_receipts .* unnest\(\$2::uuid\[\]\)`).
					WithArgs("b-1", sqlmock.AnyArg(), now).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
		},
		{
			name:  "no recipients skips receipt insert",
			ids:   nil,
			count: 0,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO broadcasts`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))
				mock.ExpectCommit()
			},
		},
		{
			name:  "receipt insert failure rolls back",
			ids:   []string{"oi-1"},
			count: 1,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO broadcasts`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))
				mock.ExpectExec(`INSERT INTO broadcast_receipts`).
					WillReturnError(errors.New("boom"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name:  "short receipt insert rolls back",
			ids:   []string{"oi-1", "oi-2"},
			count: 2,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO broadcasts`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("b-1"))
				mock.ExpectExec(`INSERT INTO broadcast_receipts`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
		{
			name:    "count mismatch never opens a transaction",
			ids:     []string{"oi-1"},
			count:   3,
			mock:    func(mock sqlmock.Sqlmock) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			b := newTestBroadcast(now, tt.count)
			err = NewBroadcastRepository(db).CreateWithReceipts(ctx, b, tt.ids)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, "b-1", b.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBroadcastRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM broadcasts b JOIN vendor_events ve ON ve.id = b.vendor_event_id WHERE b.id = \$1`).
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows(broadcastRowColumns).
			AddRow("b-1", "ve-1", "ev-1", "hello", "email", "entire_con", now, 4, nil, now))
	mock.ExpectQuery(`FROM broadcasts b`).
		WithArgs("b-missing").
		WillReturnRows(sqlmock.NewRows(broadcastRowColumns))

	repo := NewBroadcastRepository(db)
	b, err := repo.GetByID(ctx, "b-1")
	require.NoError(t, err)
	require.Equal(t, domain.ChannelEmail, b.Channel)
	require.Equal(t, domain.ScopeEntireCon, b.Scope)
	require.Equal(t, 4, b.RecipientCount)
	require.NotNil(t, b.SentAt)
	require.Nil(t, b.DeliveryExhaustedAt)

	_, err = repo.GetByID(ctx, "b-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepository_MarkDeliveredOnlyFromPending(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE broadcast_receipts SET status = 'delivered'.* WHERE id = \$1 AND status = 'pending'`).
		WithArgs("r-1", at, "SM123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE broadcast_receipts SET status = 'delivered'`).
		WithArgs("r-1", at, "SM123").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE broadcast_receipts SET status = 'failed'.* AND status = 'pending'`).
		WithArgs("r-2", "invalid number").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewBroadcastRepository(db)
	ok, err := repo.MarkDelivered(context.Background(), "r-1", "SM123", at)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkDelivered(context.Background(), "r-1", "SM123", at)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.MarkFailed(context.Background(), "r-2", "invalid number")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepository_ListPendingDeliveries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM broadcast_receipts r JOIN opt_ins o .* r.status = 'pending'`).
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "name", "phone", "email"}).
			AddRow("r-1", "oi-1", "Bob", "+15035550100", nil).
			AddRow("r-2", "oi-2", "Ann", nil, "ann@example.com"))

	pending, err := NewBroadcastRepository(db).ListPendingDeliveries(context.Background(), "b-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "+15035550100", pending[0].Phone)
	require.Empty(t, pending[0].Email)
	require.Equal(t, "ann@example.com", pending[1].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepository_CountReceipts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM broadcast_receipts`).
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 1).
			AddRow("delivered", 5).
			AddRow("failed", 2))

	counts, err := NewBroadcastRepository(db).CountReceipts(context.Background(), "b-1")
	require.NoError(t, err)
	require.Equal(t, domain.ReceiptCounts{Pending: 1, Delivered: 5, Failed: 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepository_ListFeed(t *testing.T) {
	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM broadcasts b`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY b.sent_at DESC, b.id LIMIT \$2 OFFSET \$3`).
		WithArgs("ev-1", 20, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_event_id", "name", "metadata", "message", "channel", "sent_at"}).
			AddRow("b-1", "ve-1", "Acme", []byte(`{"booth_number":"7","hall":"A"}`), "hi", "feed", sent))

	items, total, err := NewBroadcastRepository(db).ListFeed(context.Background(), "ev-1", domain.PaginationParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, "Acme (Booth 7, A)", items[0].VendorEventDisplay)
	require.Equal(t, domain.ChannelFeed, items[0].Channel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindIDByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM users WHERE phone = \$1`).
		WithArgs("+15035550100").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))
	mock.ExpectQuery(`SELECT id FROM users WHERE lower\(email\) = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserRepository(db)
	id, err := repo.FindIDByPhone(context.Background(), "+15035550100")
	require.NoError(t, err)
	require.Equal(t, "u-1", id)

	_, err = repo.FindIDByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	known := "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
		WithArgs(known).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewUserRepository(db)
	ok, err := repo.Exists(context.Background(), known)
	require.NoError(t, err)
	require.True(t, ok)

	// Not a UUID: answered without a query, so the column type never rejects it.
	ok, err = repo.Exists(context.Background(), "vendor-123")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastRepository_ListStalled(t *testing.T) {
	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cutoff := sent.Add(time.Hour)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM broadcasts b WHERE\s+b.delivery_exhausted_at IS NOT NULL\s+OR \(b.sent_at < \$1 AND EXISTS`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	cols := append(append([]string{}, broadcastRowColumns...), "pending", "delivered", "failed")
	exhausted := sent.Add(10 * time.Minute)
	mock.ExpectQuery(`ORDER BY COALESCE\(b.delivery_exhausted_at, b.sent_at\) DESC, b.id\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(cutoff, 10, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b-1", "ve-1", "ev-1", "hi", "sms", "entire_con", sent, 3, exhausted, sent, 2, 1, 0).
			AddRow("b-2", "ve-1", "ev-1", "bye", "sms", "entire_con", sent, 4, nil, sent, 4, 0, 0))

	items, total, err := NewBroadcastRepository(db).ListStalled(context.Background(), cutoff, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Broadcast.DeliveryExhaustedAt)
	require.Equal(t, 2, items[0].Receipts.Pending)
	require.Nil(t, items[1].Broadcast.DeliveryExhaustedAt, "lost tasks show up without an exhausted marker")
	require.Equal(t, 4, items[1].Receipts.Pending)
	require.NoError(t, mock.ExpectationsWereMet())
}

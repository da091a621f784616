package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeVendorEventService struct {
	registerResult  *domain.VendorEvent
	registerCreated bool
	registerErr     error
	lastRegister    domain.RegisterVendorEventInput
	deactivateErr   error
	lastDeactivate  string
	byToken         map[string]*domain.VendorEvent
	byTokenErr      error
}

func (f *fakeVendorEventService) Register(ctx context.Context, in domain.RegisterVendorEventInput) (*domain.VendorEvent, bool, error) {
	f.lastRegister = in
	return f.registerResult, f.registerCreated, f.registerErr
}

func (f *fakeVendorEventService) Deactivate(ctx context.Context, id string) error {
	f.lastDeactivate = id
	return f.deactivateErr
}

func (f *fakeVendorEventService) GetActiveByToken(ctx context.Context, token string) (*domain.VendorEvent, error) {
	if f.byTokenErr != nil {
		return nil, f.byTokenErr
	}
	ve, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ve, nil
}

type fakeScanService struct {
	result *domain.ScanResult
	err    error
	last   domain.ScanInput
	calls  int
}

func (f *fakeScanService) Scan(ctx context.Context, in domain.ScanInput) (*domain.ScanResult, error) {
	f.calls++
	f.last = in
	return f.result, f.err
}

type fakeCheckInService struct {
	result    *domain.CheckInResult
	err       error
	lastToken string
}

func (f *fakeCheckInService) CheckIn(ctx context.Context, token string) (*domain.CheckInResult, error) {
	f.lastToken = token
	return f.result, f.err
}

type fakeFeedService struct {
	items      []*domain.FeedItem
	total      int
	err        error
	lastEvent  string
	lastParams domain.PaginationParams
}

func (f *fakeFeedService) ListFeed(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.FeedItem, int, error) {
	f.lastEvent = eventID
	f.lastParams = params
	return f.items, f.total, f.err
}

type fakeBroadcastService struct {
	dispatchResult *domain.Broadcast
	dispatchErr    error
	lastDispatch   domain.DispatchInput
	dispatchCalls  int
	getResult      *domain.BroadcastWithCounts
	getErr         error
	receipts       []*domain.BroadcastReceipt
	receiptsTotal  int
	receiptsErr    error
	lastParams     domain.PaginationParams
	redeliverErr   error
	lastRedeliver  string
	stalled        []*domain.BroadcastWithCounts
	stalledTotal   int
	stalledErr     error
}

func (f *fakeBroadcastService) Dispatch(ctx context.Context, in domain.DispatchInput) (*domain.Broadcast, error) {
	f.dispatchCalls++
	f.lastDispatch = in
	return f.dispatchResult, f.dispatchErr
}

func (f *fakeBroadcastService) Get(ctx context.Context, id string) (*domain.BroadcastWithCounts, error) {
	return f.getResult, f.getErr
}

func (f *fakeBroadcastService) ListReceipts(ctx context.Context, id string, params domain.PaginationParams) ([]*domain.BroadcastReceipt, int, error) {
	f.lastParams = params
	return f.receipts, f.receiptsTotal, f.receiptsErr
}

func (f *fakeBroadcastService) Redeliver(ctx context.Context, id string) error {
	f.lastRedeliver = id
	return f.redeliverErr
}

func (f *fakeBroadcastService) ListStalled(ctx context.Context, params domain.PaginationParams) ([]*domain.BroadcastWithCounts, int, error) {
	f.lastParams = params
	return f.stalled, f.stalledTotal, f.stalledErr
}

// decodeEnvelope decodes the response envelope and, when data is non-nil, re-decodes
// envelope.Data into it.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if data != nil && envelope.Data != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return envelope
}

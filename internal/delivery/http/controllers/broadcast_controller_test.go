package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastController_Create(t *testing.T) {
	created := &domain.Broadcast{ID: "b-1", VendorEventID: "ve-1", Message: "Demo at 3pm", Channel: domain.ChannelSMS, Scope: domain.ScopeBoothVisitors, RecipientCount: 2}
	tests := []struct {
		name         string
		body         string
		fake         *fakeBroadcastService
		wantStatus   int
		wantCode     string
		wantMessage  string
		wantDispatch bool
	}{
		{
			name:         "dispatched",
			body:         `{"vendor_event_id":"ve-1","message":"Demo at 3pm","channel":"sms","scope":"booth_visitors"}`,
			fake:         &fakeBroadcastService{dispatchResult: created},
			wantStatus:   http.StatusCreated,
			wantDispatch: true,
		},
		{
			name:        "unknown channel",
			body:        `{"vendor_event_id":"ve-1","message":"hi","channel":"fax","scope":"entire_con"}`,
			fake:        &fakeBroadcastService{},
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "channel must be one of: sms email feed",
		},
		{
			name:        "missing message",
			body:        `{"vendor_event_id":"ve-1","channel":"sms","scope":"entire_con"}`,
			fake:        &fakeBroadcastService{},
			wantStatus:  http.StatusBadRequest,
			wantCode:    helpers.ErrCodeBadRequest,
			wantMessage: "message is required",
		},
		{
			name:         "message too long",
			body:         `{"vendor_event_id":"ve-1","message":"` + strings.Repeat("x", 200) + `","channel":"sms","scope":"entire_con"}`,
			fake:         &fakeBroadcastService{dispatchErr: domain.NewValidationError("message", "must be at most 160 characters")},
			wantStatus:   http.StatusBadRequest,
			wantCode:     helpers.ErrCodeBadRequest,
			wantMessage:  "message: must be at most 160 characters",
			wantDispatch: true,
		},
		{
			name:         "unknown vendor event",
			body:         `{"vendor_event_id":"ve-x","message":"hi","channel":"feed","scope":"entire_con"}`,
			fake:         &fakeBroadcastService{dispatchErr: domain.ErrNotFound},
			wantStatus:   http.StatusNotFound,
			wantCode:     helpers.ErrCodeNotFound,
			wantMessage:  "vendor event not found",
			wantDispatch: true,
		},
		{
			name:         "enqueue failure",
			body:         `{"vendor_event_id":"ve-1","message":"hi","channel":"sms","scope":"entire_con"}`,
			fake:         &fakeBroadcastService{dispatchErr: errors.New("enqueue delivery: redis down")},
			wantStatus:   http.StatusInternalServerError,
			wantCode:     helpers.ErrCodeInternalError,
			wantMessage:  "internal error",
			wantDispatch: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewBroadcastController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodPost, "/broadcasts", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantDispatch, tt.fake.dispatchCalls == 1)
			var data domain.Broadcast
			envelope := decodeEnvelope(t, rr, &data)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
				assert.Equal(t, tt.wantMessage, envelope.Error.Message)
				return
			}
			assert.Equal(t, 2, data.RecipientCount)
			assert.Equal(t, domain.DispatchInput{
				VendorEventID: "ve-1",
				Message:       "Demo at 3pm",
				Channel:       domain.ChannelSMS,
				Scope:         domain.ScopeBoothVisitors,
			}, tt.fake.lastDispatch)
		})
	}
}

func TestBroadcastController_Get(t *testing.T) {
	fake := &fakeBroadcastService{getResult: &domain.BroadcastWithCounts{
		Broadcast: &domain.Broadcast{ID: "b-1", RecipientCount: 3},
		Receipts:  domain.ReceiptCounts{Pending: 1, Delivered: 1, Failed: 1},
	}}
	ctrl := NewBroadcastController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/broadcasts/b-1", nil)
	req.SetPathValue("id", "b-1")
	rr := httptest.NewRecorder()
	ctrl.Get(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data domain.BroadcastWithCounts
	decodeEnvelope(t, rr, &data)
	assert.Equal(t, domain.ReceiptCounts{Pending: 1, Delivered: 1, Failed: 1}, data.Receipts)
	assert.Equal(t, 3, data.Broadcast.RecipientCount)

	missing := NewBroadcastController(testLogger, &fakeBroadcastService{getErr: domain.ErrNotFound})
	rr = httptest.NewRecorder()
	missing.Get(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBroadcastController_ListReceipts(t *testing.T) {
	fake := &fakeBroadcastService{
		receipts: []*domain.BroadcastReceipt{
			{ID: "r-1", Status: domain.ReceiptDelivered, ProviderMessageID: "SM1"},
			{ID: "r-2", Status: domain.ReceiptFailed, FailureReason: "no_destination"},
		},
		receiptsTotal: 42,
	}
	ctrl := NewBroadcastController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/broadcasts/b-1/receipts?page=2&page_size=2", nil)
	req.SetPathValue("id", "b-1")
	rr := httptest.NewRecorder()
	ctrl.ListReceipts(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data ListReceiptsResponse
	decodeEnvelope(t, rr, &data)
	require.Len(t, data.Items, 2)
	assert.Equal(t, "no_destination", data.Items[1].FailureReason)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 2}, fake.lastParams)
	assert.Equal(t, 21, data.Pagination.TotalPages)
}

func TestBroadcastController_Redeliver(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"queued", nil, http.StatusAccepted},
		{"unknown broadcast", domain.ErrNotFound, http.StatusNotFound},
		{"queue down", errors.New("enqueue delivery: dial tcp"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBroadcastService{redeliverErr: tt.err}
			ctrl := NewBroadcastController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/broadcasts/b-1/redeliver", nil)
			req.SetPathValue("id", "b-1")
			rr := httptest.NewRecorder()
			ctrl.Redeliver(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "b-1", fake.lastRedeliver)
			if tt.err == nil {
				var data RedeliverResponse
				decodeEnvelope(t, rr, &data)
				assert.Equal(t, "queued", data.Status)
			}
		})
	}
}

func TestBroadcastController_ListStalled(t *testing.T) {
	fake := &fakeBroadcastService{
		stalled: []*domain.BroadcastWithCounts{{
			Broadcast: &domain.Broadcast{ID: "b-9"},
			Receipts:  domain.ReceiptCounts{Pending: 5},
		}},
		stalledTotal: 1,
	}
	ctrl := NewBroadcastController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/operator/broadcasts/stalled", nil)
	rr := httptest.NewRecorder()
	ctrl.ListStalled(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var data ListStalledResponse
	decodeEnvelope(t, rr, &data)
	require.Len(t, data.Items, 1)
	assert.Equal(t, 5, data.Items[0].Receipts.Pending)
	assert.Equal(t, 1, data.Pagination.Total)
}

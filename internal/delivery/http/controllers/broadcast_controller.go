package controllers

import (
	"log/slog"
	"net/http"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"
)

// CreateBroadcastRequest is the request body for POST /broadcasts. The message length limit
// is enforced by the service since it is configurable.
type CreateBroadcastRequest struct {
	VendorEventID string `json:"vendor_event_id" validate:"required"`
	Message       string `json:"message" validate:"required"`
	Channel       string `json:"channel" validate:"required,oneof=sms email feed"`
	Scope         string `json:"scope" validate:"required,oneof=booth_visitors entire_con"`
}

// BroadcastSuccessResponse is the success response envelope for POST /broadcasts (201).
type BroadcastSuccessResponse struct {
	Data  *domain.Broadcast `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BroadcastWithCountsSuccessResponse is the success response envelope for GET /broadcasts/{id} (200).
type BroadcastWithCountsSuccessResponse struct {
	Data  *domain.BroadcastWithCounts `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListReceiptsResponse is the data payload for GET /broadcasts/{id}/receipts (200).
type ListReceiptsResponse struct {
	Items      []*domain.BroadcastReceipt `json:"items"`
	Pagination helpers.PaginationMeta     `json:"pagination"`
}

// ListReceiptsSuccessResponse is the success response envelope for GET /broadcasts/{id}/receipts (200).
type ListReceiptsSuccessResponse struct {
	Data  ListReceiptsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RedeliverResponse is the data payload for POST /broadcasts/{id}/redeliver (202).
type RedeliverResponse struct {
	Status string `json:"status"`
}

// ListStalledResponse is the data payload for GET /operator/broadcasts/stalled (200).
type ListStalledResponse struct {
	Items      []*domain.BroadcastWithCounts `json:"items"`
	Pagination helpers.PaginationMeta        `json:"pagination"`
}

// ListStalledSuccessResponse is the success response envelope for GET /operator/broadcasts/stalled (200).
type ListStalledSuccessResponse struct {
	Data  ListStalledResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type BroadcastController struct {
	Logger  *slog.Logger
	Service domain.BroadcastService
}

func NewBroadcastController(logger *slog.Logger, svc domain.BroadcastService) *BroadcastController {
	return &BroadcastController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Send a broadcast
// @Description Snapshots the recipients for the chosen scope, creates one pending receipt each and queues delivery. Returns as soon as the broadcast is stored; delivery state is visible per receipt.
// @Tags broadcasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param broadcast body CreateBroadcastRequest true "Broadcast"
// @Success 201 {object} controllers.BroadcastSuccessResponse "data contains the broadcast with recipient_count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /broadcasts [post]
func (c *BroadcastController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBroadcastRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	b, err := c.Service.Dispatch(r.Context(), domain.DispatchInput{
		VendorEventID: req.VendorEventID,
		Message:       req.Message,
		Channel:       domain.Channel(req.Channel),
		Scope:         domain.Scope(req.Scope),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "vendor event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, b)
}

// Get godoc
// @Summary Get a broadcast
// @Description Returns the broadcast and its receipt counts by status.
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Broadcast ID"
// @Success 200 {object} controllers.BroadcastWithCountsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /broadcasts/{id} [get]
func (c *BroadcastController) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	res, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "broadcast not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// ListReceipts godoc
// @Summary List broadcast receipts
// @Description Returns per-recipient delivery state. Use page and page_size query params.
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Broadcast ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListReceiptsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /broadcasts/{id}/receipts [get]
func (c *BroadcastController) ListReceipts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListReceipts(r.Context(), id, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "broadcast not found")
		return
	}
	if items == nil {
		items = []*domain.BroadcastReceipt{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListReceiptsResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Redeliver godoc
// @Summary Retry delivery of a broadcast
// @Description Queues another delivery run. Only receipts still pending are sent; delivered and failed receipts are never touched again.
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Broadcast ID"
// @Success 202 {object} helpers.APIResponse "data.status: queued"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /broadcasts/{id}/redeliver [post]
func (c *BroadcastController) Redeliver(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	if err := c.Service.Redeliver(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "broadcast not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, RedeliverResponse{Status: "queued"})
}

// ListStalled godoc
// @Summary List broadcasts whose delivery gave up
// @Description Broadcasts whose delivery task gave up, or whose receipts stayed pending past DELIVERY_STALL_AFTER, with remaining receipt counts. Operator role required.
// @Tags operator
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListStalledSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /operator/broadcasts/stalled [get]
func (c *BroadcastController) ListStalled(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListStalled(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "not found")
		return
	}
	if items == nil {
		items = []*domain.BroadcastWithCounts{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListStalledResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

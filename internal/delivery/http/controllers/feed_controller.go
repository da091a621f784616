package controllers

import (
	"log/slog"
	"net/http"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"
)

// ListFeedResponse is the data payload for GET /events/{eventID}/feed (200).
type ListFeedResponse struct {
	Items      []*domain.FeedItem     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListFeedSuccessResponse is the success response envelope for GET /events/{eventID}/feed (200).
type ListFeedSuccessResponse struct {
	Data  ListFeedResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type FeedController struct {
	Logger  *slog.Logger
	Service domain.FeedService
}

func NewFeedController(logger *slog.Logger, svc domain.FeedService) *FeedController {
	return &FeedController{Logger: logger, Service: svc}
}

// ListFeed godoc
// @Summary Public broadcast feed for an event
// @Description Returns sent broadcasts for the event, newest first. Use page and page_size query params.
// @Tags feed
// @Produce json
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListFeedSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feed [get]
func (c *FeedController) ListFeed(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListFeed(r.Context(), eventID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	if items == nil {
		items = []*domain.FeedItem{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListFeedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

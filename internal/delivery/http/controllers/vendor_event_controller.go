package controllers

import (
	"log/slog"
	"net/http"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/domain"
)

// RegisterVendorEventRequest is the request body for POST /vendor-events.
type RegisterVendorEventRequest struct {
	VendorID     string `json:"vendor_id" validate:"required"`
	EventID      string `json:"event_id" validate:"required"`
	BoothNumber  string `json:"booth_number" validate:"max=20"`
	Hall         string `json:"hall" validate:"max=60"`
	DisplayOrder int    `json:"display_order" validate:"min=0"`
}

// VendorEventSuccessResponse is the success response envelope for vendor event endpoints.
type VendorEventSuccessResponse struct {
	Data  *domain.VendorEvent `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeactivateVendorEventResponse is the data payload for POST /vendor-events/{id}/deactivate.
type DeactivateVendorEventResponse struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

type VendorEventController struct {
	Logger  *slog.Logger
	Service domain.VendorEventService
}

func NewVendorEventController(logger *slog.Logger, svc domain.VendorEventService) *VendorEventController {
	return &VendorEventController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register a vendor at an event
// @Description Issues the booth QR token. Registering the same vendor at the same event again returns the existing row with 200.
// @Tags vendor-events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param vendorEvent body RegisterVendorEventRequest true "Vendor, event and booth placement"
// @Success 200 {object} controllers.VendorEventSuccessResponse "already registered"
// @Success 201 {object} controllers.VendorEventSuccessResponse "created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /vendor-events [post]
func (c *VendorEventController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterVendorEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ve, created, err := c.Service.Register(r.Context(), domain.RegisterVendorEventInput{
		VendorID:     req.VendorID,
		EventID:      req.EventID,
		DisplayOrder: req.DisplayOrder,
		Metadata:     domain.VendorEventMetadata{BoothNumber: req.BoothNumber, Hall: req.Hall},
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "event not found")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, ve)
}

// Deactivate godoc
// @Summary Deactivate a booth QR code
// @Description Stops accepting scans and broadcasts for the booth. The token is never reissued.
// @Tags vendor-events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vendor event ID"
// @Success 200 {object} helpers.APIResponse "data contains id and active=false"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /vendor-events/{id}/deactivate [post]
func (c *VendorEventController) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing id")
		return
	}
	if err := c.Service.Deactivate(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "vendor event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeactivateVendorEventResponse{ID: id, Active: false})
}

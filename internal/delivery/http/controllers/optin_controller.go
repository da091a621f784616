package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conreach/internal/delivery/http/helpers"
	"conreach/internal/delivery/http/middleware"
	"conreach/internal/domain"
)

// OptInLandingResponse is the data payload for GET /optin/{token}.
type OptInLandingResponse struct {
	VendorEventID string `json:"vendor_event_id"`
	EventID       string `json:"event_id"`
	Display       string `json:"display"`
}

// OptInLandingSuccessResponse is the success response envelope for GET /optin/{token} (200).
type OptInLandingSuccessResponse struct {
	Data  OptInLandingResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ScanRequest is the request body for POST /optin/{token}. At least one of phone or email is required.
type ScanRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone" validate:"max=40"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

// ScanSuccessResponse is the success response envelope for POST /optin/{token}.
type ScanSuccessResponse struct {
	Data  domain.ScanResult `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CheckInSuccessResponse is the success response envelope for POST /checkin/{token} (200).
type CheckInSuccessResponse struct {
	Data  domain.CheckInResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// OptInController serves the public, unauthenticated visitor endpoints.
type OptInController struct {
	Logger       *slog.Logger
	VendorEvents domain.VendorEventService
	Scans        domain.ScanService
	CheckIns     domain.CheckInService
}

func NewOptInController(logger *slog.Logger, vendorEvents domain.VendorEventService, scans domain.ScanService, checkIns domain.CheckInService) *OptInController {
	return &OptInController{
		Logger:       logger,
		VendorEvents: vendorEvents,
		Scans:        scans,
		CheckIns:     checkIns,
	}
}

// Landing godoc
// @Summary Resolve a booth QR code
// @Description Returns the booth behind a QR token so the opt-in form can show who the visitor is opting in with.
// @Tags optin
// @Produce json
// @Param token path string true "Booth QR token"
// @Success 200 {object} controllers.OptInLandingSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /optin/{token} [get]
func (c *OptInController) Landing(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invalid QR code")
		return
	}
	ve, err := c.VendorEvents.GetActiveByToken(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "invalid QR code")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, OptInLandingResponse{
		VendorEventID: ve.ID,
		EventID:       ve.EventID,
		Display:       ve.Display(),
	})
}

// Scan godoc
// @Summary Opt in at a booth
// @Description Records a visitor scan. The same phone or email at the same event always maps to one opt-in; a new booth only adds a link. Returns 201 when a new opt-in was created and 200 otherwise. A signed-in visitor may send a visitor bearer token; its subject is linked as the opt-in's user. Vendor and operator tokens never link an account.
// @Tags optin
// @Accept json
// @Produce json
// @Param token path string true "Booth QR token"
// @Param contact body ScanRequest true "Visitor contact data"
// @Success 200 {object} controllers.ScanSuccessResponse "outcome: linked_existing_booth or linked_new_booth"
// @Success 201 {object} controllers.ScanSuccessResponse "outcome: created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /optin/{token} [post]
func (c *OptInController) Scan(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "invalid QR code")
		return
	}
	var req ScanRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in := domain.ScanInput{
		QRToken: token,
		Contact: domain.ContactInput{Name: req.Name, Phone: req.Phone, Email: req.Email},
	}
	if userID, ok := middleware.VisitorFromContext(r.Context()); ok {
		in.UserID = &userID
	}
	res, err := c.Scans.Scan(r.Context(), in)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "invalid QR code")
		return
	}
	status := http.StatusOK
	if res.Outcome == domain.OutcomeCreated {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, res)
}

// CheckIn godoc
// @Summary Redeem a check-in token
// @Description Marks the visitor as checked in. Redeeming the same token again is not an error; already_checked_in is set instead.
// @Tags optin
// @Produce json
// @Param token path string true "Check-in token"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin/{token} [post]
func (c *OptInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := c.CheckIns.CheckIn(r.Context(), strings.TrimSpace(r.PathValue("token")))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, "invalid check-in code")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

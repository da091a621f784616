package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"conreach/internal/domain"
)

// WriteServiceError maps a service error onto the JSON envelope. Validation errors and
// not-found are reported to the caller as-is; anything unexpected is logged and hidden.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFoundMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrAlreadyExists):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "already exists")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ubertool-booking/internal/domain"
	"ubertool-booking/internal/logger"
	"ubertool-booking/internal/service"
)

type ErrorResponse struct {
	Error       string                          `json:"error"`
	Field       string                          `json:"field,omitempty"`
	Conflicts   []domain.BookingRef             `json:"conflicts,omitempty"`
	Eligibility *domain.CancellationEligibility `json:"eligibility,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthorizationError
		conflictErr   *domain.ConflictError
		ineligibleErr *domain.IneligibleError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: authErr.Message})
	case errors.As(err, &ineligibleErr):
		e := ineligibleErr.Eligibility
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ineligibleErr.Error(), Eligibility: &e})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: conflictErr.Message, Conflicts: conflictErr.Conflicts})
	case errors.Is(err, domain.ErrConcurrentUpdate):
		writeMessage(w, http.StatusConflict, domain.ErrConcurrentUpdate.Error())
	case errors.Is(err, service.ErrRefundFailed):
		logger.ErrorContext(r.Context(), "Refund failed after cancellation", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusBadGateway, service.ErrRefundFailed.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

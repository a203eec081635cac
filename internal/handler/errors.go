package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/provider"
)

// errorResponse is the uniform error body: {"error":{"code":..,"message":..}}.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status, code, and message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service-layer error to its HTTP response.
// The mapping mirrors the error taxonomy: caller-recoverable errors get 4xx
// with a stable code, provider failures are 502 (the fault is external), and
// the persistence-after-provider-success inconsistency gets its own code so
// operators can alert on it specifically.
func writeServiceError(w http.ResponseWriter, err error) {
	var recErr *domain.ReconciliationError
	if errors.As(err, &recErr) {
		writeError(w, http.StatusInternalServerError, "booking_reconciliation_required",
			"the provider confirmed the booking but it could not be recorded; contact support with reference "+recErr.ProviderReference)
		return
	}

	var bookErr *provider.BookingError
	if errors.As(err, &bookErr) {
		writeError(w, http.StatusBadGateway, "provider_booking_failed", bookErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "you do not have access to this resource")
	case errors.Is(err, domain.ErrInvalidOption):
		writeError(w, http.StatusUnprocessableEntity, "invalid_option", "option is not part of this journey")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", "only confirmed bookings can be cancelled")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "a booking for this option already exists")
	case errors.Is(err, domain.ErrAggregation):
		writeError(w, http.StatusBadGateway, "aggregation_failed", "no travel providers are available right now")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.JourneyService.Create: validation error: origin is required" → "origin is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, "validation error: "); i >= 0 {
		return msg[i+len("validation error: "):]
	}
	return msg
}

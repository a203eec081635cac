package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
)

// createBookingRequest is the wire format for POST /bookings.
// OptionID is optional: when omitted, the journey's selected option is booked.
type createBookingRequest struct {
	JourneyID  uuid.UUID          `json:"journey_id"`
	OptionID   *uuid.UUID         `json:"option_id,omitempty"`
	Passengers []domain.Passenger `json:"passengers"`
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request body")
		return
	}
	if req.JourneyID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "journey_id is required")
		return
	}

	booking, err := s.bookings.Create(r.Context(), req.JourneyID, req.OptionID, req.Passengers, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings handles GET /bookings.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}

	bookings, err := s.bookings.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": bookings, "count": len(bookings)})
}

// GetBooking handles GET /bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid booking id")
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// GetBookingByReference handles GET /bookings/reference/{reference}.
func (s *Server) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "reference is required")
		return
	}

	booking, err := s.bookings.GetByReference(r.Context(), reference, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// CancelBooking handles POST /bookings/{id}/cancel.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid booking id")
		return
	}

	booking, err := s.bookings.Cancel(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

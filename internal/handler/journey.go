package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/farecast/travel-backend/internal/domain"
)

// createJourneyRequest is the wire format for POST /journeys.
// TravelDate is a date-only field ("2026-03-14"); openapi_types.Date handles
// the format during JSON (un)marshalling.
type createJourneyRequest struct {
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	TravelDate  openapi_types.Date `json:"travel_date"`
	Passengers  int                `json:"passengers"`
}

// selectOptionRequest is the wire format for PUT /journeys/{id}/select.
type selectOptionRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// CreateJourney handles POST /journeys. It runs the aggregation and returns
// the journey with its ranked option set.
func (s *Server) CreateJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}

	var req createJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request body")
		return
	}

	journey, err := s.journeys.Create(r.Context(), domain.Journey{
		UserID:      userID,
		Origin:      req.Origin,
		Destination: req.Destination,
		TravelDate:  req.TravelDate.Time,
		Passengers:  req.Passengers,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, journey)
}

// ListJourneys handles GET /journeys.
func (s *Server) ListJourneys(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}

	journeys, err := s.journeys.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": journeys, "count": len(journeys)})
}

// GetJourney handles GET /journeys/{id}.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid journey id")
		return
	}

	journey, err := s.journeys.GetByID(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journey)
}

// SelectJourneyOption handles PUT /journeys/{id}/select.
func (s *Server) SelectJourneyOption(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid journey id")
		return
	}

	var req selectOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == uuid.Nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "option_id is required")
		return
	}

	journey, err := s.journeys.SelectOption(r.Context(), id, req.OptionID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, journey)
}

// DeleteJourney handles DELETE /journeys/{id}.
func (s *Server) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing requester identity")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid journey id")
		return
	}

	if err := s.journeys.Delete(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

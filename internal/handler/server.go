// Package handler implements the HTTP handlers for the travel backend API.
// Handlers are methods on Server, split into resource-specific files
// (journey.go, booking.go, health.go) that all share the same struct.
// Handlers decode and validate the wire format, delegate to the services,
// and map domain errors to HTTP responses — no business logic lives here.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/middleware"
	"github.com/farecast/travel-backend/spec"
)

// JourneyServicer defines the business operations the journey handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or engine.
type JourneyServicer interface {
	Create(ctx context.Context, journey domain.Journey) (domain.Journey, error)
	GetByID(ctx context.Context, id, requesterID uuid.UUID) (domain.Journey, error)
	ListByUser(ctx context.Context, requesterID uuid.UUID) ([]domain.Journey, error)
	SelectOption(ctx context.Context, journeyID, optionID, requesterID uuid.UUID) (domain.Journey, error)
	Delete(ctx context.Context, id, requesterID uuid.UUID) error
}

// BookingServicer defines the business operations the booking handlers depend on.
type BookingServicer interface {
	Create(ctx context.Context, journeyID uuid.UUID, optionID *uuid.UUID, passengers []domain.Passenger, requesterID uuid.UUID) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID, requesterID uuid.UUID) (domain.Booking, error)
	GetByID(ctx context.Context, bookingID, requesterID uuid.UUID) (domain.Booking, error)
	ListByUser(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error)
	GetByReference(ctx context.Context, reference string, requesterID uuid.UUID) (domain.Booking, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	journeys JourneyServicer
	bookings BookingServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(journeys JourneyServicer, bookings BookingServicer) *Server {
	return &Server{journeys: journeys, bookings: bookings}
}

// Routes returns the API router. Everything under /journeys and /bookings
// requires a requester identity; /healthz and /openapi.yaml do not.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequesterID())

		r.Route("/journeys", func(r chi.Router) {
			r.Post("/", s.CreateJourney)
			r.Get("/", s.ListJourneys)
			r.Get("/{id}", s.GetJourney)
			r.Delete("/{id}", s.DeleteJourney)
			r.Put("/{id}/select", s.SelectJourneyOption)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.CreateBooking)
			r.Get("/", s.ListBookings)
			r.Get("/{id}", s.GetBooking)
			r.Get("/reference/{reference}", s.GetBookingByReference)
			r.Post("/{id}/cancel", s.CancelBooking)
		})
	})

	return r
}

// requester returns the authenticated user ID the middleware stored on the
// context. The boolean is false only when a route was wired without the
// requester middleware — a programming error, handled as 401 by callers.
func requester(r *http.Request) (uuid.UUID, bool) {
	return middleware.RequesterID(r.Context())
}

// Package service contains the business logic for the travel backend.
// Services validate inputs, enforce ownership, and orchestrate engine,
// provider, and repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/repo"
)

// Aggregator is the slice of the engine the journey service depends on.
// Defined here so tests can swap in a stub without a provider registry.
type Aggregator interface {
	Aggregate(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error)
}

// JourneyService implements business logic for journey operations.
type JourneyService struct {
	journeys repo.JourneyRepo
	engine   Aggregator
}

// NewJourneyService constructs a JourneyService.
func NewJourneyService(journeys repo.JourneyRepo, engine Aggregator) *JourneyService {
	return &JourneyService{journeys: journeys, engine: engine}
}

// Create runs the aggregation for the given search, assigns each resulting
// option an ID, and persists the journey with its ranked option set.
// An empty option set is persisted as-is: no suitable options is a valid
// search result, not an error.
func (s *JourneyService) Create(ctx context.Context, journey domain.Journey) (domain.Journey, error) {
	if err := validateJourney(journey); err != nil {
		return domain.Journey{}, err
	}
	if journey.Passengers < 1 {
		journey.Passengers = 1
	}

	options, err := s.engine.Aggregate(ctx, domain.SearchParams{
		Origin:      journey.Origin,
		Destination: journey.Destination,
		TravelDate:  journey.TravelDate,
		Passengers:  journey.Passengers,
	})
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.Create: %w", err)
	}

	// Options become addressable once they join a journey.
	for i := range options {
		options[i].ID = uuid.New()
	}
	journey.Options = options

	result, err := s.journeys.Create(ctx, journey)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single journey, enforcing ownership.
// Returns domain.ErrNotFound if it does not exist, domain.ErrForbidden if
// the requester does not own it.
func (s *JourneyService) GetByID(ctx context.Context, id, requesterID uuid.UUID) (domain.Journey, error) {
	journey, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.GetByID: %w", err)
	}
	if journey.UserID != requesterID {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.GetByID: %w", domain.ErrForbidden)
	}
	return journey, nil
}

// ListByUser returns all of the requester's journeys, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *JourneyService) ListByUser(ctx context.Context, requesterID uuid.UUID) ([]domain.Journey, error) {
	journeys, err := s.journeys.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.JourneyService.ListByUser: %w", err)
	}
	if journeys == nil {
		return []domain.Journey{}, nil
	}
	return journeys, nil
}

// SelectOption records the requester's chosen option on the journey.
// Returns domain.ErrInvalidOption when the option is not part of the
// journey's option set — the selected-option invariant is enforced here,
// before anything touches storage.
func (s *JourneyService) SelectOption(ctx context.Context, journeyID, optionID, requesterID uuid.UUID) (domain.Journey, error) {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.SelectOption: %w", err)
	}
	if journey.UserID != requesterID {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.SelectOption: %w", domain.ErrForbidden)
	}
	if _, ok := journey.Option(optionID); !ok {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.SelectOption: %w", domain.ErrInvalidOption)
	}

	result, err := s.journeys.SetSelectedOption(ctx, journeyID, optionID)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.SelectOption: %w", err)
	}
	return result, nil
}

// Delete removes a journey, enforcing ownership.
func (s *JourneyService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	journey, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.JourneyService.Delete: %w", err)
	}
	if journey.UserID != requesterID {
		return fmt.Errorf("service.JourneyService.Delete: %w", domain.ErrForbidden)
	}
	if err := s.journeys.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.JourneyService.Delete: %w", err)
	}
	return nil
}

// validateJourney enforces the required search inputs.
func validateJourney(journey domain.Journey) error {
	if strings.TrimSpace(journey.Origin) == "" {
		return fmt.Errorf("%w: origin is required", domain.ErrValidation)
	}
	if strings.TrimSpace(journey.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if journey.TravelDate.IsZero() {
		return fmt.Errorf("%w: travel date is required", domain.ErrValidation)
	}
	return nil
}

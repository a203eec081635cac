package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/provider"
	"github.com/farecast/travel-backend/internal/repo"
)

// referencePrefix tags every locally generated booking reference.
const referencePrefix = "SB"

// BookingService orchestrates the selection-then-booking handoff: it calls
// the owning provider's booking endpoint first and persists a local record
// only after the provider has confirmed. The two steps cannot be made
// atomic, so the failure modes are asymmetric and handled explicitly:
//
//   - provider fails → no local record is ever written
//   - provider succeeds, persistence fails → *domain.ReconciliationError,
//     logged at ERROR and surfaced to the caller for manual reconciliation
type BookingService struct {
	journeys  repo.JourneyRepo
	bookings  repo.BookingRepo
	providers *provider.Registry
	log       *slog.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(journeys repo.JourneyRepo, bookings repo.BookingRepo, providers *provider.Registry, log *slog.Logger) *BookingService {
	return &BookingService{journeys: journeys, bookings: bookings, providers: providers, log: log}
}

// Create books the given option with its provider and persists the booking.
//
// optionID may be nil, in which case the journey's selected option is used.
// Preconditions are checked in order, each with its own error: the journey
// must exist (ErrNotFound), the requester must own it (ErrForbidden), the
// option must resolve to one in the journey's set (ErrInvalidOption), and
// passengers must be non-empty (ErrValidation).
func (s *BookingService) Create(ctx context.Context, journeyID uuid.UUID, optionID *uuid.UUID, passengers []domain.Passenger, requesterID uuid.UUID) (domain.Booking, error) {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	if journey.UserID != requesterID {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", domain.ErrForbidden)
	}

	resolved := optionID
	if resolved == nil {
		resolved = journey.SelectedOption
	}
	if resolved == nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: no option selected: %w", domain.ErrInvalidOption)
	}
	option, ok := journey.Option(*resolved)
	if !ok {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", domain.ErrInvalidOption)
	}

	if len(passengers) == 0 {
		return domain.Booking{}, fmt.Errorf("%w: at least one passenger is required", domain.ErrValidation)
	}

	booker, err := s.bookerFor(option.Provider)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	providerBooking, err := booker.Book(ctx, option, passengers, requesterID)
	if err != nil {
		// Provider said no — nothing was reserved, nothing is persisted.
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	reference := providerBooking.Reference
	if reference == "" {
		reference = newBookingReference()
	}

	booking := domain.Booking{
		JourneyID:        journeyID,
		UserID:           requesterID,
		OptionID:         option.ID,
		Passengers:       passengers,
		TotalPrice:       option.Price * float64(len(passengers)),
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentPaid, // payment capture happens upstream
		BookingReference: reference,
		ProviderData:     providerBooking.Data,
	}

	persisted, err := s.bookings.Create(ctx, booking)
	if err != nil {
		// The provider holds a confirmed reservation this system failed to
		// record. Surface it loudly and distinctly; retrying here could
		// double-book with the provider.
		recErr := &domain.ReconciliationError{
			Provider:          option.Provider,
			ProviderReference: reference,
			Err:               err,
		}
		s.log.Error("booking persisted with provider but local save failed",
			"provider", option.Provider,
			"reference", reference,
			"journey_id", journeyID,
			"option_id", option.ID,
			"error", err,
		)
		return domain.Booking{}, recErr
	}
	return persisted, nil
}

// Cancel transitions a confirmed booking to cancelled.
// Only confirmed bookings may be cancelled; any other status returns
// domain.ErrInvalidState, which also makes re-cancellation fail cleanly.
func (s *BookingService) Cancel(ctx context.Context, bookingID, requesterID uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	if booking.UserID != requesterID {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", domain.ErrForbidden)
	}
	if booking.Status != domain.BookingConfirmed {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: status is %q: %w", booking.Status, domain.ErrInvalidState)
	}

	// Known gap: the provider is not told about the cancellation, so the
	// reservation may still exist on their side. Logged on every cancel so
	// the gap is visible in operations rather than silently absorbed.
	s.log.Warn("cancelling booking locally only; provider-side cancellation is not implemented",
		"booking_id", bookingID,
		"reference", booking.BookingReference,
	)

	result, err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingCancelled)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	return result, nil
}

// GetByID returns a single booking, enforcing ownership.
func (s *BookingService) GetByID(ctx context.Context, bookingID, requesterID uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	if booking.UserID != requesterID {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", domain.ErrForbidden)
	}
	return booking, nil
}

// ListByUser returns all of the requester's bookings, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) ListByUser(ctx context.Context, requesterID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByUser: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// GetByReference returns a booking by its reference, enforcing ownership.
func (s *BookingService) GetByReference(ctx context.Context, reference string, requesterID uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByReference: %w", err)
	}
	if booking.UserID != requesterID {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByReference: %w", domain.ErrForbidden)
	}
	return booking, nil
}

// bookerFor resolves the adapter that owns the option's provider. A missing
// or non-booking adapter is reported as a provider booking failure: from the
// caller's perspective the booking could not be completed with that provider.
func (s *BookingService) bookerFor(name string) (provider.Booker, error) {
	adapter, ok := s.providers.ByName(name)
	if !ok {
		return nil, &provider.BookingError{Provider: name, Err: fmt.Errorf("no adapter registered")}
	}
	booker, ok := adapter.(provider.Booker)
	if !ok {
		return nil, &provider.BookingError{Provider: name, Err: fmt.Errorf("provider does not support booking")}
	}
	return booker, nil
}

// newBookingReference generates a local booking reference: the fixed tag
// followed by 80 bits of randomness, base32-encoded. Uniqueness is enforced
// at the storage layer; a collision surfaces as a conflict instead of a
// silent duplicate.
func newBookingReference() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		// rand.Read only fails when the OS entropy source is broken.
		panic(fmt.Sprintf("service.newBookingReference: %v", err))
	}
	return referencePrefix + base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b)
}

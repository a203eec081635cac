package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the requester does not own the resource.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty passenger list, missing required field).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidOption is returned when a booking or selection names an option
// that is not part of the journey's option set.
var ErrInvalidOption = errors.New("invalid option")

// ErrInvalidState is returned when a booking transition is not allowed from
// its current status (e.g. cancelling a pending or already-cancelled booking).
var ErrInvalidState = errors.New("invalid state")

// ErrAggregation is returned when an aggregation run cannot produce a result
// at all: no adapters are registered, or every adapter failed structurally.
// An empty option set with no error is a legitimate outcome and is NOT an
// aggregation error.
var ErrAggregation = errors.New("aggregation failed")

// ErrConflict is returned when persistence rejects a write due to a
// uniqueness constraint — in practice a duplicate non-cancelled booking for
// the same journey, option, and user.
var ErrConflict = errors.New("conflict")

// ReconciliationError reports the one failure mode that must never be
// swallowed: the provider confirmed a booking but persisting the local
// record failed afterwards. The provider now holds a reservation this
// system has no record of, so an operator must reconcile manually using
// the provider reference. It is never retried automatically, since a retry
// could double-book with the provider.
type ReconciliationError struct {
	Provider          string
	ProviderReference string
	Err               error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("booking confirmed with %s as %q but local save failed: %v",
		e.Provider, e.ProviderReference, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

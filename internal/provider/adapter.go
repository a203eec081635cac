// Package provider contains the adapters that turn vendor-specific transport
// APIs into the canonical domain.TravelOption shape. Each adapter is a black
// box to the rest of the system: one query function, optionally one booking
// function.
//
// Query is fail-open: a network, parse, or auth failure inside one provider
// degrades that provider's contribution to an empty slice (logged), never to
// an error that could sink the whole aggregation. The only errors Query may
// return are structural — the adapter cannot run at all because required
// configuration is missing.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
)

// ErrMisconfigured is the structural error adapters return from Query when
// required credentials or configuration are absent. The aggregator counts
// these: if every registered adapter is misconfigured the whole aggregation
// fails, otherwise the adapter just contributes nothing.
var ErrMisconfigured = errors.New("provider misconfigured")

// Adapter queries one external transport provider.
type Adapter interface {
	// Name is the stable provider identifier recorded on every option
	// (e.g. "IRCTC", "Uber"). It is also the dispatch key for booking.
	Name() string

	// Query returns the provider's travel options for the given search.
	// Provider-side failures yield an empty slice, not an error; only
	// structural misconfiguration is returned as an error (wrapped
	// ErrMisconfigured).
	Query(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error)
}

// Booker is implemented by adapters whose provider supports booking through
// this backend. Book returns a *BookingError when the provider rejects or
// fails the reservation.
type Booker interface {
	Book(ctx context.Context, option domain.TravelOption, passengers []domain.Passenger, requesterID uuid.UUID) (domain.ProviderBooking, error)
}

// BookingError carries the provider's raw error payload when an external
// booking cannot be completed. Unlike query failures it is always surfaced
// to the caller — a failed booking must never look like a successful one.
type BookingError struct {
	Provider string
	Payload  map[string]any
	Err      error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s booking failed: %v", e.Provider, e.Err)
}

func (e *BookingError) Unwrap() error { return e.Err }

// Registry holds the adapters active in this process, in registration order.
// Registration order is significant: it is the final ranking tie-breaker,
// so it must be deterministic across restarts (main registers adapters in a
// fixed order).
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry builds a Registry from the given adapters, preserving order.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters = append(r.adapters, a)
		r.byName[a.Name()] = a
	}
	return r
}

// Adapters returns all registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// ByName returns the adapter with the given provider name.
func (r *Registry) ByName(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

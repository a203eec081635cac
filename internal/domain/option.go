// Package domain contains the core data types for the travel backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (provider, engine, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Mode identifies the transport mode of a travel option.
type Mode string

const (
	ModeTrain      Mode = "train"
	ModeBus        Mode = "bus"
	ModeTaxi       Mode = "taxi"
	ModeFlight     Mode = "flight"
	ModeMultiModal Mode = "multi-modal"
)

// Transfer is one leg of a multi-modal option. Direct options carry none.
type Transfer struct {
	Mode            Mode   `json:"mode"`
	Details         string `json:"details"`
	DurationMinutes int    `json:"duration_minutes"`
}

// TravelOption is one way to get from origin to destination, produced by a
// provider adapter and annotated by the scoring engine.
//
// Options are ephemeral: they have no identity until a journey persists them,
// at which point the journey service assigns the ID. ValueScore is nil until
// the scorer has run.
type TravelOption struct {
	ID              uuid.UUID      `json:"id"`
	Mode            Mode           `json:"mode"`
	Provider        string         `json:"provider"`
	DepartureTime   time.Time      `json:"departure_time"`
	ArrivalTime     *time.Time     `json:"arrival_time,omitempty"` // nil for modes without a fixed arrival (e.g. taxi)
	DurationMinutes int            `json:"duration_minutes"`
	Price           float64        `json:"price"`
	ComfortScore    int            `json:"comfort_score"` // 0-10, adapter-assigned
	Transfers       []Transfer     `json:"transfers,omitempty"`
	ProviderDetails map[string]any `json:"provider_details,omitempty"` // opaque vendor payload, passed through verbatim
	ValueScore      *int           `json:"value_score,omitempty"`      // 0-100, set by the scorer

	// AdapterOrder is the registration index of the adapter that produced
	// this option. It is the final ranking tie-breaker and is not persisted.
	AdapterOrder int `json:"-"`
}

// SearchParams are the inputs to an aggregation run.
type SearchParams struct {
	Origin      string
	Destination string
	TravelDate  time.Time
	Passengers  int
}

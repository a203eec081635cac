package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
)

type skyscannerFlight struct {
	flightNumber string
	airline      string
	departure    string
	arrival      string
	duration     string
	fare         float64
	cabin        string
}

var skyscannerFlights = []skyscannerFlight{
	{flightNumber: "6E204", airline: "IndiGo", departure: "08:15", arrival: "10:20", duration: "2h 5m", fare: 3200, cabin: "economy"},
	{flightNumber: "AI441", airline: "Air India", departure: "18:40", arrival: "20:55", duration: "2h 15m", fare: 3850, cabin: "economy"},
}

// Skyscanner is the flight adapter. Comfort is a flat 8: flights beat
// surface transport on amenities regardless of carrier.
type Skyscanner struct {
	apiKey string
	log    *slog.Logger
}

// NewSkyscanner constructs the Skyscanner adapter.
func NewSkyscanner(apiKey string, log *slog.Logger) *Skyscanner {
	return &Skyscanner{apiKey: apiKey, log: log}
}

func (a *Skyscanner) Name() string { return "Skyscanner" }

// Query returns the flights operating on the travel date.
func (a *Skyscanner) Query(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("skyscanner: %w", ErrMisconfigured)
	}

	options := make([]domain.TravelOption, 0, len(skyscannerFlights))
	for _, f := range skyscannerFlights {
		dep := atTime(params.TravelDate, f.departure)
		arr := atTime(params.TravelDate, f.arrival)
		options = append(options, domain.TravelOption{
			Mode:            domain.ModeFlight,
			Provider:        a.Name(),
			DepartureTime:   dep,
			ArrivalTime:     &arr,
			DurationMinutes: parseDurationMinutes(f.duration),
			Price:           f.fare * float64(params.Passengers),
			ComfortScore:    8,
			ProviderDetails: map[string]any{
				"flight_number": f.flightNumber,
				"airline":       f.airline,
				"cabin":         f.cabin,
			},
		})
	}
	return options, nil
}

// Book holds seats on the flight and returns the airline record locator.
func (a *Skyscanner) Book(ctx context.Context, option domain.TravelOption, passengers []domain.Passenger, requesterID uuid.UUID) (domain.ProviderBooking, error) {
	if a.apiKey == "" {
		return domain.ProviderBooking{}, &BookingError{
			Provider: a.Name(),
			Err:      ErrMisconfigured,
		}
	}

	locator := randomToken(3)
	return domain.ProviderBooking{
		Reference: locator,
		Status:    "confirmed",
		Data: map[string]any{
			"record_locator": locator,
			"flight_number":  option.ProviderDetails["flight_number"],
			"airline":        option.ProviderDetails["airline"],
			"passengers":     len(passengers),
		},
	}, nil
}

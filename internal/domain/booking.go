package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// PaymentStatus tracks the payment state of a booking. Payment capture is
// handled upstream; this backend only records the outcome.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Passenger is an immutable snapshot of one traveller on a booking.
type Passenger struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Baggage int    `json:"baggage"` // number of checked bags
}

// Booking records a confirmed reservation with a provider. It weakly
// references its journey and option — it owns neither. A booking is only
// ever created after the provider's booking call has succeeded.
type Booking struct {
	ID               uuid.UUID      `json:"id"`
	JourneyID        uuid.UUID      `json:"journey_id"`
	UserID           uuid.UUID      `json:"user_id"`
	OptionID         uuid.UUID      `json:"option_id"`
	Passengers       []Passenger    `json:"passengers"`
	TotalPrice       float64        `json:"total_price"` // option price × passenger count
	Status           BookingStatus  `json:"status"`
	PaymentStatus    PaymentStatus  `json:"payment_status"`
	BookingReference string         `json:"booking_reference"`
	ProviderData     map[string]any `json:"provider_data,omitempty"` // raw confirmation payload from the provider
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ProviderBooking is the confirmation an adapter returns from a successful
// provider booking call. Reference may be empty when the provider does not
// issue one; the booking service then generates a local reference.
type ProviderBooking struct {
	Reference string
	Status    string
	Data      map[string]any
}

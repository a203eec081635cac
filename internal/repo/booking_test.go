package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/repo"
	"github.com/farecast/travel-backend/testutil"
)

// newTestBookingRepo mirrors newTestJourneyRepo: one rolled-back transaction
// per test.
func newTestBookingRepo(t *testing.T) repo.BookingRepo {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return repo.NewBookingRepo(tx)
}

// bookingFixture returns a domain.Booking with sensible defaults.
// Each call generates a fresh reference so the UNIQUE constraint on
// booking_reference never trips accidentally.
func bookingFixture(userID uuid.UUID) domain.Booking {
	return domain.Booking{
		JourneyID:        uuid.New(),
		UserID:           userID,
		OptionID:         uuid.New(),
		Passengers:       []domain.Passenger{{Name: "Asha", Age: 34, Baggage: 1}},
		TotalPrice:       520,
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentPaid,
		BookingReference: "SB" + uuid.NewString()[:13],
		ProviderData:     map[string]any{"pnr": "PNRTEST1"},
	}
}

func TestBookingRepo_Create(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	input := bookingFixture(uuid.New())
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, input.JourneyID, got.JourneyID)
	assert.Equal(t, input.OptionID, got.OptionID)
	assert.Equal(t, 520.0, got.TotalPrice)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, input.BookingReference, got.BookingReference)
	assert.Equal(t, "PNRTEST1", got.ProviderData["pnr"])
	require.Len(t, got.Passengers, 1)
	assert.Equal(t, "Asha", got.Passengers[0].Name)
	assert.Equal(t, 1, got.Passengers[0].Baggage)
	assert.False(t, got.CreatedAt.IsZero())
}

// The partial unique index allows exactly one live booking per journey,
// option, and user.
func TestBookingRepo_Create_DuplicateLiveBooking(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	first := bookingFixture(uuid.New())
	_, err := r.Create(ctx, first)
	require.NoError(t, err)

	duplicate := first
	duplicate.BookingReference = "SB" + uuid.NewString()[:13]
	_, err = r.Create(ctx, duplicate)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

// A cancelled booking does not block rebooking the same option.
func TestBookingRepo_Create_RebookAfterCancel(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	first := bookingFixture(uuid.New())
	created, err := r.Create(ctx, first)
	require.NoError(t, err)

	_, err = r.UpdateStatus(ctx, created.ID, domain.BookingCancelled)
	require.NoError(t, err)

	rebook := first
	rebook.BookingReference = "SB" + uuid.NewString()[:13]
	_, err = r.Create(ctx, rebook)

	assert.NoError(t, err)
}

func TestBookingRepo_Create_ReferenceCollision(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	first := bookingFixture(uuid.New())
	_, err := r.Create(ctx, first)
	require.NoError(t, err)

	other := bookingFixture(uuid.New())
	other.BookingReference = first.BookingReference
	_, err = r.Create(ctx, other)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingRepo_GetByID(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, bookingFixture(uuid.New()))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.BookingReference, got.BookingReference)
}

func TestBookingRepo_GetByID_NotFound(t *testing.T) {
	r := newTestBookingRepo(t)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_GetByReference(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, bookingFixture(uuid.New()))
	require.NoError(t, err)

	got, err := r.GetByReference(ctx, created.BookingReference)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = r.GetByReference(ctx, "SBDOESNOTEXIST")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_ListByUser(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := r.Create(ctx, bookingFixture(userID))
	require.NoError(t, err)
	_, err = r.Create(ctx, bookingFixture(userID))
	require.NoError(t, err)
	_, err = r.Create(ctx, bookingFixture(uuid.New())) // different user
	require.NoError(t, err)

	got, err := r.ListByUser(ctx, userID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, b := range got {
		assert.Equal(t, userID, b.UserID)
	}
}

func TestBookingRepo_UpdateStatus(t *testing.T) {
	r := newTestBookingRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, bookingFixture(uuid.New()))
	require.NoError(t, err)

	got, err := r.UpdateStatus(ctx, created.ID, domain.BookingCancelled)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, created.ID, got.ID)
}

func TestBookingRepo_UpdateStatus_NotFound(t *testing.T) {
	r := newTestBookingRepo(t)

	_, err := r.UpdateStatus(context.Background(), uuid.New(), domain.BookingCancelled)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

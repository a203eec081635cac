package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/repo"
	"github.com/farecast/travel-backend/testutil"
)

// newTestJourneyRepo opens a transaction against the test database and
// returns a JourneyRepo backed by that transaction. The transaction is
// automatically rolled back when the test finishes, giving free per-test
// isolation.
//
// Requires TEST_DATABASE_URL to be set; migrations are applied by TestMain.
func newTestJourneyRepo(t *testing.T) repo.JourneyRepo {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test — no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})

	return repo.NewJourneyRepo(tx)
}

// journeyFixture returns a domain.Journey with sensible defaults for tests.
// Callers can override individual fields after calling this function.
func journeyFixture(userID uuid.UUID) domain.Journey {
	score := 78
	arrival := time.Date(2026, 9, 15, 20, 30, 0, 0, time.UTC)
	return domain.Journey{
		UserID:      userID,
		Origin:      "Delhi",
		Destination: "Mumbai",
		TravelDate:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Passengers:  2,
		Options: []domain.TravelOption{{
			ID:              uuid.New(),
			Mode:            domain.ModeTrain,
			Provider:        "IRCTC",
			DepartureTime:   time.Date(2026, 9, 15, 16, 0, 0, 0, time.UTC),
			ArrivalTime:     &arrival,
			DurationMinutes: 270,
			Price:           520,
			ComfortScore:    7,
			ValueScore:      &score,
			ProviderDetails: map[string]any{"train_number": "12301"},
		}},
	}
}

func TestJourneyRepo_Create(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()

	input := journeyFixture(uuid.New())
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, input.UserID, got.UserID)
	assert.Equal(t, input.Origin, got.Origin)
	assert.Equal(t, input.Destination, got.Destination)
	assert.Equal(t, input.Passengers, got.Passengers)
	assert.Nil(t, got.SelectedOption)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")

	// The option set survives the jsonb round trip intact.
	require.Len(t, got.Options, 1)
	opt := got.Options[0]
	assert.Equal(t, input.Options[0].ID, opt.ID)
	assert.Equal(t, domain.ModeTrain, opt.Mode)
	assert.Equal(t, 520.0, opt.Price)
	require.NotNil(t, opt.ValueScore)
	assert.Equal(t, 78, *opt.ValueScore)
	assert.Equal(t, "12301", opt.ProviderDetails["train_number"])
}

func TestJourneyRepo_Create_EmptyOptions(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()

	input := journeyFixture(uuid.New())
	input.Options = nil

	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.Empty(t, got.Options)
}

func TestJourneyRepo_GetByID(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, journeyFixture(uuid.New()))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Origin, got.Origin)
	require.Len(t, got.Options, 1)
}

func TestJourneyRepo_GetByID_NotFound(t *testing.T) {
	r := newTestJourneyRepo(t)

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_ListByUser(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	first := journeyFixture(userID)
	first.Destination = "Jaipur"
	second := journeyFixture(userID)
	second.Destination = "Pune"
	other := journeyFixture(uuid.New()) // different user, must not appear

	_, err := r.Create(ctx, first)
	require.NoError(t, err)
	_, err = r.Create(ctx, second)
	require.NoError(t, err)
	_, err = r.Create(ctx, other)
	require.NoError(t, err)

	got, err := r.ListByUser(ctx, userID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, j := range got {
		assert.Equal(t, userID, j.UserID)
	}
}

func TestJourneyRepo_SetSelectedOption(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, journeyFixture(uuid.New()))
	require.NoError(t, err)
	optionID := created.Options[0].ID

	got, err := r.SetSelectedOption(ctx, created.ID, optionID)

	require.NoError(t, err)
	require.NotNil(t, got.SelectedOption)
	assert.Equal(t, optionID, *got.SelectedOption)

	// The selection persists across reads.
	fetched, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.SelectedOption)
	assert.Equal(t, optionID, *fetched.SelectedOption)
}

func TestJourneyRepo_SetSelectedOption_NotFound(t *testing.T) {
	r := newTestJourneyRepo(t)

	_, err := r.SetSelectedOption(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_Delete(t *testing.T) {
	r := newTestJourneyRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, journeyFixture(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, created.ID))

	_, err = r.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJourneyRepo_Delete_NotFound(t *testing.T) {
	r := newTestJourneyRepo(t)

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farecast/travel-backend/internal/domain"
	"github.com/farecast/travel-backend/internal/handler"
)

// mockJourneyServicer is a test double for handler.JourneyServicer.
// Set only the method fields your test needs.
type mockJourneyServicer struct {
	create       func(ctx context.Context, journey domain.Journey) (domain.Journey, error)
	getByID      func(ctx context.Context, id, requesterID uuid.UUID) (domain.Journey, error)
	listByUser   func(ctx context.Context, requesterID uuid.UUID) ([]domain.Journey, error)
	selectOption func(ctx context.Context, journeyID, optionID, requesterID uuid.UUID) (domain.Journey, error)
	delete       func(ctx context.Context, id, requesterID uuid.UUID) error
}

func (m *mockJourneyServicer) Create(ctx context.Context, journey domain.Journey) (domain.Journey, error) {
	return m.create(ctx, journey)
}
func (m *mockJourneyServicer) GetByID(ctx context.Context, id, requesterID uuid.UUID) (domain.Journey, error) {
	return m.getByID(ctx, id, requesterID)
}
func (m *mockJourneyServicer) ListByUser(ctx context.Context, requesterID uuid.UUID) ([]domain.Journey, error) {
	return m.listByUser(ctx, requesterID)
}
func (m *mockJourneyServicer) SelectOption(ctx context.Context, journeyID, optionID, requesterID uuid.UUID) (domain.Journey, error) {
	return m.selectOption(ctx, journeyID, optionID, requesterID)
}
func (m *mockJourneyServicer) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	return m.delete(ctx, id, requesterID)
}

// compile-time check: mockJourneyServicer must satisfy handler.JourneyServicer.
var _ handler.JourneyServicer = (*mockJourneyServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the router, the
// same way main.go does in production.
func newHTTPHandler(journeys handler.JourneyServicer, bookings handler.BookingServicer) http.Handler {
	return handler.NewServer(journeys, bookings).Routes()
}

func journeyFixture(userID uuid.UUID) domain.Journey {
	score := 78
	return domain.Journey{
		ID:          uuid.New(),
		UserID:      userID,
		Origin:      "Delhi",
		Destination: "Mumbai",
		TravelDate:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Passengers:  1,
		Options: []domain.TravelOption{{
			ID:              uuid.New(),
			Mode:            domain.ModeTrain,
			Provider:        "IRCTC",
			Price:           520,
			DurationMinutes: 270,
			ComfortScore:    7,
			ValueScore:      &score,
		}},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// doRequest executes a request with the requester identity header set.
func doRequest(h http.Handler, method, target string, body *bytes.Buffer, userID uuid.UUID) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- POST /journeys --------------------------------------------------------

func TestCreateJourney_201(t *testing.T) {
	userID := uuid.New()
	fixture := journeyFixture(userID)
	svc := &mockJourneyServicer{
		create: func(_ context.Context, journey domain.Journey) (domain.Journey, error) {
			assert.Equal(t, userID, journey.UserID)
			assert.Equal(t, "Delhi", journey.Origin)
			assert.Equal(t, 2, journey.Passengers)
			return fixture, nil
		},
	}
	h := newHTTPHandler(svc, nil)

	body := jsonBody(t, map[string]any{
		"origin":      "Delhi",
		"destination": "Mumbai",
		"travel_date": "2026-09-15",
		"passengers":  2,
	})
	rec := doRequest(h, http.MethodPost, "/journeys", body, userID)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.Journey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, fixture.ID, got.ID)
	require.Len(t, got.Options, 1)
	require.NotNil(t, got.Options[0].ValueScore)
	assert.Equal(t, 78, *got.Options[0].ValueScore)
}

func TestCreateJourney_422_BadBody(t *testing.T) {
	h := newHTTPHandler(&mockJourneyServicer{}, nil)

	rec := doRequest(h, http.MethodPost, "/journeys", bytes.NewBufferString("{not json"), uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestCreateJourney_422_ValidationError(t *testing.T) {
	svc := &mockJourneyServicer{
		create: func(_ context.Context, _ domain.Journey) (domain.Journey, error) {
			return domain.Journey{}, fmt.Errorf("%w: origin is required", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodPost, "/journeys", jsonBody(t, map[string]any{"travel_date": "2026-09-15"}), uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "origin is required")
}

func TestCreateJourney_502_AggregationFailed(t *testing.T) {
	svc := &mockJourneyServicer{
		create: func(_ context.Context, _ domain.Journey) (domain.Journey, error) {
			return domain.Journey{}, fmt.Errorf("all adapters failed: %w", domain.ErrAggregation)
		},
	}
	h := newHTTPHandler(svc, nil)

	body := jsonBody(t, map[string]any{"origin": "A", "destination": "B", "travel_date": "2026-09-15"})
	rec := doRequest(h, http.MethodPost, "/journeys", body, uuid.New())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "aggregation_failed")
}

func TestCreateJourney_401_NoIdentity(t *testing.T) {
	h := newHTTPHandler(&mockJourneyServicer{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/journeys", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /journeys ---------------------------------------------------------

func TestListJourneys_200(t *testing.T) {
	userID := uuid.New()
	svc := &mockJourneyServicer{
		listByUser: func(_ context.Context, requesterID uuid.UUID) ([]domain.Journey, error) {
			assert.Equal(t, userID, requesterID)
			return []domain.Journey{journeyFixture(userID)}, nil
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodGet, "/journeys", nil, userID)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data  []domain.Journey `json:"data"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Count)
	require.Len(t, got.Data, 1)
}

// ---- GET /journeys/{id} ----------------------------------------------------

func TestGetJourney_200(t *testing.T) {
	userID := uuid.New()
	fixture := journeyFixture(userID)
	svc := &mockJourneyServicer{
		getByID: func(_ context.Context, id, requesterID uuid.UUID) (domain.Journey, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodGet, "/journeys/"+fixture.ID.String(), nil, userID)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetJourney_404(t *testing.T) {
	svc := &mockJourneyServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Journey, error) {
			return domain.Journey{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodGet, "/journeys/"+uuid.NewString(), nil, uuid.New())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestGetJourney_403(t *testing.T) {
	svc := &mockJourneyServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Journey, error) {
			return domain.Journey{}, domain.ErrForbidden
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodGet, "/journeys/"+uuid.NewString(), nil, uuid.New())

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetJourney_422_BadID(t *testing.T) {
	h := newHTTPHandler(&mockJourneyServicer{}, nil)

	rec := doRequest(h, http.MethodGet, "/journeys/not-a-uuid", nil, uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- PUT /journeys/{id}/select ---------------------------------------------

func TestSelectJourneyOption_200(t *testing.T) {
	userID := uuid.New()
	fixture := journeyFixture(userID)
	optionID := fixture.Options[0].ID
	svc := &mockJourneyServicer{
		selectOption: func(_ context.Context, journeyID, oID, requesterID uuid.UUID) (domain.Journey, error) {
			assert.Equal(t, fixture.ID, journeyID)
			assert.Equal(t, optionID, oID)
			fixture.SelectedOption = &oID
			return fixture, nil
		},
	}
	h := newHTTPHandler(svc, nil)

	body := jsonBody(t, map[string]any{"option_id": optionID})
	rec := doRequest(h, http.MethodPut, "/journeys/"+fixture.ID.String()+"/select", body, userID)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Journey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.SelectedOption)
	assert.Equal(t, optionID, *got.SelectedOption)
}

func TestSelectJourneyOption_422_InvalidOption(t *testing.T) {
	svc := &mockJourneyServicer{
		selectOption: func(_ context.Context, _, _, _ uuid.UUID) (domain.Journey, error) {
			return domain.Journey{}, domain.ErrInvalidOption
		},
	}
	h := newHTTPHandler(svc, nil)

	body := jsonBody(t, map[string]any{"option_id": uuid.New()})
	rec := doRequest(h, http.MethodPut, "/journeys/"+uuid.NewString()+"/select", body, uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_option")
}

func TestSelectJourneyOption_422_MissingOptionID(t *testing.T) {
	h := newHTTPHandler(&mockJourneyServicer{}, nil)

	rec := doRequest(h, http.MethodPut, "/journeys/"+uuid.NewString()+"/select", jsonBody(t, map[string]any{}), uuid.New())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "option_id is required")
}

// ---- DELETE /journeys/{id} -------------------------------------------------

func TestDeleteJourney_204(t *testing.T) {
	userID := uuid.New()
	journeyID := uuid.New()
	svc := &mockJourneyServicer{
		delete: func(_ context.Context, id, requesterID uuid.UUID) error {
			assert.Equal(t, journeyID, id)
			assert.Equal(t, userID, requesterID)
			return nil
		},
	}
	h := newHTTPHandler(svc, nil)

	rec := doRequest(h, http.MethodDelete, "/journeys/"+journeyID.String(), nil, userID)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

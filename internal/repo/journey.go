// Package repo contains all database access logic for the travel backend.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farecast/travel-backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JourneyRepo defines the persistence operations for journeys. The option
// set is stored as a jsonb column: options are an embedded part of the
// journey aggregate, never addressed relationally.
type JourneyRepo interface {
	// Create inserts a new journey with its option set and returns the
	// persisted record.
	Create(ctx context.Context, journey domain.Journey) (domain.Journey, error)

	// GetByID retrieves a single journey by its UUID primary key.
	// Returns domain.ErrNotFound if no journey with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error)

	// ListByUser returns all journeys belonging to a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Journey, error)

	// SetSelectedOption records the user's chosen option on the journey.
	// Returns domain.ErrNotFound if the journey does not exist.
	SetSelectedOption(ctx context.Context, journeyID, optionID uuid.UUID) (domain.Journey, error)

	// Delete removes a journey by ID. Returns domain.ErrNotFound if it
	// does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgJourneyRepo is the Postgres implementation of JourneyRepo.
type pgJourneyRepo struct {
	db db
}

// NewJourneyRepo constructs a JourneyRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewJourneyRepo(db db) JourneyRepo {
	return &pgJourneyRepo{db: db}
}

const journeyColumns = `id, user_id, origin, destination, travel_date, passengers, options, selected_option, created_at, updated_at`

// Create inserts a new journey row and returns the full persisted record.
func (r *pgJourneyRepo) Create(ctx context.Context, journey domain.Journey) (domain.Journey, error) {
	const q = `
		INSERT INTO journeys (user_id, origin, destination, travel_date, passengers, options)
		VALUES (@user_id, @origin, @destination, @travel_date, @passengers, @options)
		RETURNING ` + journeyColumns

	optionsJSON, err := json.Marshal(journey.Options)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Create: marshal options: %w", err)
	}

	args := pgx.NamedArgs{
		"user_id":     journey.UserID,
		"origin":      journey.Origin,
		"destination": journey.Destination,
		"travel_date": journey.TravelDate,
		"passengers":  journey.Passengers,
		"options":     optionsJSON,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a journey by primary key.
func (r *pgJourneyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error) {
	const q = `
		SELECT ` + journeyColumns + `
		FROM journeys
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns a user's journeys ordered by created_at descending.
func (r *pgJourneyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Journey, error) {
	const q = `
		SELECT ` + journeyColumns + `
		FROM journeys
		WHERE user_id = @user_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.JourneyRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var journeys []domain.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.JourneyRepo.ListByUser: scan: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.JourneyRepo.ListByUser: rows: %w", err)
	}

	return journeys, nil
}

// SetSelectedOption records the chosen option and returns the updated journey.
func (r *pgJourneyRepo) SetSelectedOption(ctx context.Context, journeyID, optionID uuid.UUID) (domain.Journey, error) {
	const q = `
		UPDATE journeys
		SET selected_option = @selected_option,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + journeyColumns

	args := pgx.NamedArgs{
		"id":              journeyID,
		"selected_option": optionID,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.SetSelectedOption: %w", err)
	}
	return result, nil
}

// Delete removes a journey by primary key.
func (r *pgJourneyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM journeys WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.JourneyRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.JourneyRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanJourney maps a single database row into a domain.Journey.
// It handles the UUID, nullable selected_option, and jsonb options conversions.
func scanJourney(s scanner) (domain.Journey, error) {
	var (
		j          domain.Journey
		id         pgtype.UUID
		userID     pgtype.UUID
		travelDate pgtype.Date
		optionsRaw []byte
		selected   pgtype.UUID
	)

	err := s.Scan(&id, &userID, &j.Origin, &j.Destination, &travelDate, &j.Passengers,
		&optionsRaw, &selected, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Journey{}, domain.ErrNotFound
		}
		return domain.Journey{}, err
	}

	j.ID = uuid.UUID(id.Bytes)
	j.UserID = uuid.UUID(userID.Bytes)
	j.TravelDate = travelDate.Time
	if err := json.Unmarshal(optionsRaw, &j.Options); err != nil {
		return domain.Journey{}, fmt.Errorf("unmarshal options: %w", err)
	}
	if selected.Valid {
		sel := uuid.UUID(selected.Bytes)
		j.SelectedOption = &sel
	}

	return j, nil
}

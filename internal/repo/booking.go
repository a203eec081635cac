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

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// BookingRepo defines the persistence operations for bookings.
//
// A partial unique index on (journey_id, option_id, user_id) for
// non-cancelled bookings backs the duplicate-booking guarantee: when two
// concurrent Create calls race for the same journey and option, the second
// insert fails and is reported as domain.ErrConflict.
type BookingRepo interface {
	// Create inserts a new booking and returns the persisted record.
	// Returns domain.ErrConflict when a non-cancelled booking already
	// exists for the same journey, option, and user, or when the booking
	// reference collides.
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)

	// GetByID retrieves a single booking by its UUID primary key.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// ListByUser returns all bookings belonging to a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)

	// GetByReference retrieves a booking by its booking reference.
	// Returns domain.ErrNotFound if no booking carries that reference.
	GetByReference(ctx context.Context, reference string) (domain.Booking, error)

	// UpdateStatus sets the booking's status and returns the updated
	// record. Returns domain.ErrNotFound if the booking does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, journey_id, user_id, option_id, passengers, total_price, status, payment_status, booking_reference, provider_data, created_at, updated_at`

// Create inserts a new booking row and returns the full persisted record.
func (r *pgBookingRepo) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (journey_id, user_id, option_id, passengers, total_price,
		                      status, payment_status, booking_reference, provider_data)
		VALUES (@journey_id, @user_id, @option_id, @passengers, @total_price,
		        @status, @payment_status, @booking_reference, @provider_data)
		RETURNING ` + bookingColumns

	passengersJSON, err := json.Marshal(booking.Passengers)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: marshal passengers: %w", err)
	}
	providerJSON, err := json.Marshal(booking.ProviderData)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: marshal provider data: %w", err)
	}

	args := pgx.NamedArgs{
		"journey_id":        booking.JourneyID,
		"user_id":           booking.UserID,
		"option_id":         booking.OptionID,
		"passengers":        passengersJSON,
		"total_price":       booking.TotalPrice,
		"status":            booking.Status,
		"payment_status":    booking.PaymentStatus,
		"booking_reference": booking.BookingReference,
		"provider_data":     providerJSON,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", domain.ErrConflict)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a booking by primary key.
func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns a user's bookings ordered by created_at descending.
func (r *pgBookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = @user_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.ListByUser: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByUser: rows: %w", err)
	}

	return bookings, nil
}

// GetByReference retrieves a booking by its unique reference.
func (r *pgBookingRepo) GetByReference(ctx context.Context, reference string) (domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = @reference`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"reference": reference})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByReference: %w", err)
	}
	return result, nil
}

// UpdateStatus sets the status column and returns the updated record.
func (r *pgBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status     = @status,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + bookingColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": status})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// scanBooking maps a single database row into a domain.Booking.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b             domain.Booking
		id            pgtype.UUID
		journeyID     pgtype.UUID
		userID        pgtype.UUID
		optionID      pgtype.UUID
		passengersRaw []byte
		providerRaw   []byte
	)

	err := s.Scan(&id, &journeyID, &userID, &optionID, &passengersRaw, &b.TotalPrice,
		&b.Status, &b.PaymentStatus, &b.BookingReference, &providerRaw, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.JourneyID = uuid.UUID(journeyID.Bytes)
	b.UserID = uuid.UUID(userID.Bytes)
	b.OptionID = uuid.UUID(optionID.Bytes)
	if err := json.Unmarshal(passengersRaw, &b.Passengers); err != nil {
		return domain.Booking{}, fmt.Errorf("unmarshal passengers: %w", err)
	}
	if len(providerRaw) > 0 {
		if err := json.Unmarshal(providerRaw, &b.ProviderData); err != nil {
			return domain.Booking{}, fmt.Errorf("unmarshal provider data: %w", err)
		}
	}

	return b, nil
}

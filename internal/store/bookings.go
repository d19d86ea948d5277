package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Booking statuses. Cancelled bookings free their slot; every other
// status holds it.
const (
	BookingStatusBooked    = "booked"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking reserves one (provider, date, time) slot for a caller. Date and
// time are stored as text: normalized values are ISO "YYYY-MM-DD" and
// 24-hour "HH:MM", but an unparseable phrase is stored verbatim so the
// conversation is never blocked on a parse failure.
type Booking struct {
	ID         uuid.UUID
	CallerID   uuid.UUID
	ProviderID uuid.UUID
	Date       string
	Time       string
	Status     string
	CreatedAt  time.Time
}

// FindActiveBooking returns the non-cancelled booking occupying the exact
// slot, or ErrNotFound when the slot is free.
func (s *Store) FindActiveBooking(ctx context.Context, q Querier, providerID uuid.UUID, date, timeOfDay string) (*Booking, error) {
	query := `
		SELECT id, caller_id, provider_id, appointment_date, appointment_time, status, created_at
		FROM bookings
		WHERE provider_id = $1
		  AND appointment_date = $2
		  AND appointment_time = $3
		  AND status <> 'cancelled'
		LIMIT 1
	`
	var b Booking
	err := s.querier(q).QueryRow(ctx, query, providerID, date, timeOfDay).Scan(
		&b.ID, &b.CallerID, &b.ProviderID, &b.Date, &b.Time, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find active booking: %w", err)
	}
	return &b, nil
}

// InsertConfirmedBooking inserts a confirmed booking for the slot. The
// partial unique index over (provider_id, appointment_date,
// appointment_time) on non-cancelled rows backstops the arbiter's
// pre-check: when two units of work race past it, the loser's insert
// fails here and is reported as ErrSlotTaken.
func (s *Store) InsertConfirmedBooking(ctx context.Context, q Querier, callerID, providerID uuid.UUID, date, timeOfDay string) (*Booking, error) {
	b := Booking{
		ID:         uuid.New(),
		CallerID:   callerID,
		ProviderID: providerID,
		Date:       date,
		Time:       timeOfDay,
		Status:     BookingStatusConfirmed,
	}
	query := `
		INSERT INTO bookings (id, caller_id, provider_id, appointment_date, appointment_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := s.querier(q).QueryRow(ctx, query,
		b.ID, b.CallerID, b.ProviderID, b.Date, b.Time, b.Status,
	).Scan(&b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("store: insert booking: %w", err)
	}
	return &b, nil
}

// UpdateBookingStatus transitions a booking's status. Bookings are never
// deleted; cancellation is a status transition like any other.
func (s *Store) UpdateBookingStatus(ctx context.Context, q Querier, id uuid.UUID, status string) error {
	tag, err := s.querier(q).Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("store: update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

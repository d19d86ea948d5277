package store

import "errors"

var (
	// ErrNotFound is returned when a point lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrSlotTaken is returned when a booking insert loses to an existing
	// non-cancelled booking for the same (provider, date, time) slot.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrDuplicateCallID is returned when a triage insert carries a call id
	// that is already filed on another record.
	ErrDuplicateCallID = errors.New("call id already recorded")
)

package booking

import (
	"errors"
	"fmt"
)

// ErrConflictCheckFailed means the conflict check could not read existing bookings.
// Callers must not treat it as "no conflict".
var ErrConflictCheckFailed = errors.New("conflict check failed")

// ValidationError is a malformed or missing input, reported before storage is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError names the booking that blocks a request.
type ConflictError struct {
	RoomID    string
	RoomName  string
	Date      Date
	Window    Window
	Status    Status
	BookingID string
	Bulk      bool
}

func newConflictError(b Booking, date Date) *ConflictError {
	return &ConflictError{
		RoomID:    b.RoomID,
		RoomName:  b.RoomName,
		Date:      date,
		Window:    b.Window,
		Status:    b.Status,
		BookingID: b.ID,
		Bulk:      b.IsBulk(),
	}
}

func (e *ConflictError) Error() string {
	room := e.RoomName
	if room == "" {
		room = e.RoomID
	}

	kind := "booking"
	if e.Bulk {
		kind = "bulk booking"
	}

	return fmt.Sprintf("room %s is already booked on %s from %s to %s (%s %s %s)",
		room, e.Date, e.Window.Start, e.Window.End, e.Status, kind, e.BookingID)
}

// StorageError wraps a persistence failure met while scanning bookings.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IntegrityWarning flags a stored record that cannot be decoded. Scans skip such
// records and log the warning.
type IntegrityWarning struct {
	BookingID string
	Field     string
	Err       error
}

func (e *IntegrityWarning) Error() string {
	return fmt.Sprintf("booking %s has corrupt %s: %v", e.BookingID, e.Field, e.Err)
}

func (e *IntegrityWarning) Unwrap() error {
	return e.Err
}

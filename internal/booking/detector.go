package booking

import (
	"context"
	"fmt"
	"log/slog"

	"skyvision-booking/pkg/sl"
)

// Source lists the PENDING and APPROVED bookings of a room.
type Source interface {
	ActiveBookingsForRoom(ctx context.Context, roomID, excludeID string) ([]Record, error)
}

// ReserveTx is a Source bound to a transaction that also accepts the write
// following a clean check.
type ReserveTx interface {
	Source
	Insert(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
}

// Result is the outcome of a conflict check.
type Result struct {
	HasConflict bool
	Detail      string
	Conflict    *ConflictError
}

type Detector struct {
	src Source
	log *slog.Logger
}

func NewDetector(src Source, log *slog.Logger) *Detector {
	return &Detector{src: src, log: log}
}

// Check reports the first active booking of roomID that occupies date with a window
// overlapping w. excludeID, when set, is left out so an edited booking does not
// collide with itself.
func (d *Detector) Check(ctx context.Context, roomID string, date Date, w Window, excludeID string) (Result, error) {
	return d.CheckDates(ctx, roomID, []Date{date}, w, excludeID)
}

// CheckDates checks every date in order against one snapshot of the room's bookings
// and stops at the first conflicting date.
func (d *Detector) CheckDates(ctx context.Context, roomID string, dates []Date, w Window, excludeID string) (Result, error) {
	if err := validateCandidate(dates, w); err != nil {
		return Result{}, err
	}

	existing, err := d.load(ctx, roomID, excludeID)
	if err != nil {
		return Result{}, err
	}

	for _, date := range dates {
		for _, b := range existing {
			if blocks(b, date, w) {
				c := newConflictError(b, date)
				return Result{HasConflict: true, Detail: c.Error(), Conflict: c}, nil
			}
		}
	}

	return Result{}, nil
}

// Conflicts returns every active booking blocking w on date.
func (d *Detector) Conflicts(ctx context.Context, roomID string, date Date, w Window, excludeID string) ([]Booking, error) {
	_, out, err := d.Preview(ctx, roomID, date, w, excludeID)
	return out, err
}

// Preview lists every blocker of w on date together with the Result Check would
// give, both taken from a single read of the room's bookings.
func (d *Detector) Preview(ctx context.Context, roomID string, date Date, w Window, excludeID string) (Result, []Booking, error) {
	if err := validateCandidate([]Date{date}, w); err != nil {
		return Result{}, nil, err
	}

	existing, err := d.load(ctx, roomID, excludeID)
	if err != nil {
		return Result{}, nil, err
	}

	var out []Booking
	for _, b := range existing {
		if blocks(b, date, w) {
			out = append(out, b)
		}
	}

	if len(out) == 0 {
		return Result{}, out, nil
	}

	c := newConflictError(out[0], date)
	return Result{HasConflict: true, Detail: c.Error(), Conflict: c}, out, nil
}

func (d *Detector) load(ctx context.Context, roomID, excludeID string) ([]Booking, error) {
	records, err := d.src.ActiveBookingsForRoom(ctx, roomID, excludeID)
	if err != nil {
		return nil, &StorageError{
			Op:  "booking.Detector",
			Err: fmt.Errorf("%w: %w", ErrConflictCheckFailed, err),
		}
	}

	out := make([]Booking, 0, len(records))
	for _, rec := range records {
		if excludeID != "" && rec.ID == excludeID {
			continue
		}

		b, err := Decode(rec)
		if err != nil {
			warn(d.log, rec, err)
			continue
		}

		if !b.Status.Active() {
			continue
		}

		out = append(out, b)
	}

	return out, nil
}

func blocks(b Booking, date Date, w Window) bool {
	return b.Status.Active() && b.Occupies(date) && Overlaps(b.Window, w)
}

func validateCandidate(dates []Date, w Window) error {
	if len(dates) == 0 {
		return &ValidationError{Field: "dates", Reason: "at least one date is required"}
	}
	for _, d := range dates {
		if d.IsZero() {
			return &ValidationError{Field: "date", Reason: "is required"}
		}
	}
	return w.Validate()
}

func warn(log *slog.Logger, rec Record, err error) {
	if log == nil {
		return
	}
	log.Warn("skipping corrupt booking record",
		slog.String("booking_id", rec.ID),
		slog.String("room_id", rec.RoomID),
		slog.String("purpose", rec.Purpose),
		sl.Err(err),
	)
}

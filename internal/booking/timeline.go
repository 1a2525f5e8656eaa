package booking

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// TimelineSource feeds the materializer. Bulk records are fetched regardless of
// their anchor date because any of their dates may match.
type TimelineSource interface {
	ActiveRegularOn(ctx context.Context, date Date) ([]Record, error)
	ActiveBulk(ctx context.Context) ([]Record, error)
}

type Owner struct {
	UserID string
	Name   string
	Email  string
}

// Entry is one booking occupying one date, with its window resolved to timestamps.
type Entry struct {
	BookingID string
	RoomID    string
	RoomName  string
	Date      Date
	Start     time.Time
	End       time.Time
	Purpose   string
	Status    Status
	Bulk      bool
	Owner     Owner
}

type Timeline struct {
	src TimelineSource
	log *slog.Logger
	loc *time.Location
}

func NewTimeline(src TimelineSource, log *slog.Logger, loc *time.Location) *Timeline {
	if loc == nil {
		loc = time.Local
	}
	return &Timeline{src: src, log: log, loc: loc}
}

// Materialize lists everything occupying any room on date, ordered by start time
// and then booking id.
func (t *Timeline) Materialize(ctx context.Context, date Date) ([]Entry, error) {
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is required"}
	}

	regular, err := t.src.ActiveRegularOn(ctx, date)
	if err != nil {
		return nil, &StorageError{Op: "booking.Timeline.regular", Err: err}
	}

	bulk, err := t.src.ActiveBulk(ctx)
	if err != nil {
		return nil, &StorageError{Op: "booking.Timeline.bulk", Err: err}
	}

	seen := make(map[string]struct{}, len(regular)+len(bulk))
	entries := make([]Entry, 0, len(regular)+len(bulk))

	for _, rec := range slices.Concat(regular, bulk) {
		if _, dup := seen[rec.ID]; dup {
			continue
		}

		b, err := Decode(rec)
		if err != nil {
			warn(t.log, rec, err)
			continue
		}

		if !b.Status.Active() || !b.Occupies(date) {
			continue
		}

		seen[rec.ID] = struct{}{}
		entries = append(entries, t.entry(b, date))
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.BookingID, b.BookingID)
	})

	return entries, nil
}

func (t *Timeline) entry(b Booking, date Date) Entry {
	return Entry{
		BookingID: b.ID,
		RoomID:    b.RoomID,
		RoomName:  b.RoomName,
		Date:      date,
		Start:     date.At(b.Window.Start, t.loc),
		End:       date.At(b.Window.End, t.loc),
		Purpose:   b.Purpose,
		Status:    b.Status,
		Bulk:      b.IsBulk(),
		Owner: Owner{
			UserID: b.UserID,
			Name:   b.OwnerName,
			Email:  b.OwnerEmail,
		},
	}
}

// FilterRoom keeps the entries of one room. An empty roomID keeps everything.
func FilterRoom(entries []Entry, roomID string) []Entry {
	if roomID == "" {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.RoomID, roomID) {
			out = append(out, e)
		}
	}
	return out
}

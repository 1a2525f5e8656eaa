package booking

import (
	"slices"
	"time"
)

// Occupancy is the set of calendar dates a booking holds.
// It is either Regular or Bulk.
type Occupancy interface {
	Dates() []Date
	Anchor() Date
	Occupies(d Date) bool

	occupancy()
}

// Regular occupies exactly one date.
type Regular struct {
	Date Date
}

func (r Regular) Dates() []Date        { return []Date{r.Date} }
func (r Regular) Anchor() Date         { return r.Date }
func (r Regular) Occupies(d Date) bool { return r.Date == d }
func (Regular) occupancy()             {}

// Bulk occupies every date in Days with the same window.
type Bulk struct {
	Days []Date
}

// NewBulk sorts and de-duplicates dates so the anchor is the earliest one.
func NewBulk(dates []Date) (Bulk, error) {
	if len(dates) == 0 {
		return Bulk{}, &ValidationError{Field: "dates", Reason: "at least one date is required"}
	}

	days := slices.Clone(dates)
	slices.SortFunc(days, Date.Compare)
	days = slices.Compact(days)

	return Bulk{Days: days}, nil
}

func (b Bulk) Dates() []Date { return b.Days }

func (b Bulk) Anchor() Date {
	if len(b.Days) == 0 {
		return Date{}
	}
	return b.Days[0]
}

func (b Bulk) Occupies(d Date) bool { return slices.Contains(b.Days, d) }
func (Bulk) occupancy()             {}

type Booking struct {
	ID           string
	RoomID       string
	UserID       string
	Occupancy    Occupancy
	Window       Window
	Purpose      string
	Status       Status
	Participants int
	Department   string
	Document     string

	RoomName   string
	OwnerName  string
	OwnerEmail string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b Booking) IsBulk() bool {
	_, ok := b.Occupancy.(Bulk)
	return ok
}

func (b Booking) Occupies(d Date) bool {
	return b.Occupancy != nil && b.Occupancy.Occupies(d)
}

// Record is the persisted shape of a booking. Purpose carries the bulk date list
// for bulk bookings, see FormatBulk.
type Record struct {
	ID           string
	RoomID       string
	UserID       string
	AnchorDate   Date
	StartTime    string
	EndTime      string
	Purpose      string
	Status       string
	Participants int
	Department   string
	Document     string

	RoomName   string
	OwnerName  string
	OwnerEmail string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode turns a stored record into a Booking. Corrupt records return an *IntegrityWarning.
func Decode(r Record) (Booking, error) {
	dates, purpose, bulk, err := ParsePurpose(r.Purpose)
	if err != nil {
		return Booking{}, &IntegrityWarning{BookingID: r.ID, Field: "purpose", Err: err}
	}

	var occ Occupancy = Regular{Date: r.AnchorDate}
	if bulk {
		occ = Bulk{Days: dates}
	}

	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Booking{}, &IntegrityWarning{BookingID: r.ID, Field: "start_time", Err: err}
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Booking{}, &IntegrityWarning{BookingID: r.ID, Field: "end_time", Err: err}
	}

	status, err := ParseStatus(r.Status)
	if err != nil {
		return Booking{}, &IntegrityWarning{BookingID: r.ID, Field: "status", Err: err}
	}

	return Booking{
		ID:           r.ID,
		RoomID:       r.RoomID,
		UserID:       r.UserID,
		Occupancy:    occ,
		Window:       Window{Start: start, End: end},
		Purpose:      purpose,
		Status:       status,
		Participants: r.Participants,
		Department:   r.Department,
		Document:     r.Document,
		RoomName:     r.RoomName,
		OwnerName:    r.OwnerName,
		OwnerEmail:   r.OwnerEmail,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

// Encode is the inverse of Decode.
func Encode(b Booking) Record {
	var anchor Date
	if b.Occupancy != nil {
		anchor = b.Occupancy.Anchor()
	}

	return Record{
		ID:           b.ID,
		RoomID:       b.RoomID,
		UserID:       b.UserID,
		AnchorDate:   anchor,
		StartTime:    b.Window.Start.String(),
		EndTime:      b.Window.End.String(),
		Purpose:      EncodePurpose(b.Occupancy, b.Purpose),
		Status:       string(b.Status),
		Participants: b.Participants,
		Department:   b.Department,
		Document:     b.Document,
		RoomName:     b.RoomName,
		OwnerName:    b.OwnerName,
		OwnerEmail:   b.OwnerEmail,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

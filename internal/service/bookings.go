package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"skyvision-booking/api"
	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/events"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

func (s *Service) CreateBooking(ctx context.Context, p models.Principal, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b, err := newBooking(p, req.RoomID, booking.Regular{Date: date}, req.StartTime, req.EndTime,
		req.Purpose, req.Participants, req.Department)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.reserve(ctx, &b, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking created", slog.String("booking_id", b.ID), slog.String("room_id", b.RoomID))
	s.publish(ctx, bookingEvent(events.BookingCreated, b, p.UserID))

	return s.bookingResponse(ctx, b.ID)
}

// CreateBulkBooking books every date in req with the same window. Either all
// dates are free and one record is stored, or nothing is written and the first
// conflicting date is reported.
func (s *Service) CreateBulkBooking(ctx context.Context, p models.Principal, req *api.BulkBookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBulkBooking"

	occ, err := parseBulk(req.Dates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b, err := newBooking(p, req.RoomID, occ, req.StartTime, req.EndTime,
		req.Purpose, req.Participants, req.Department)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.reserve(ctx, &b, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("bulk booking created",
		slog.String("booking_id", b.ID),
		slog.String("room_id", b.RoomID),
		slog.Int("dates", len(occ.Days)),
	)
	s.publish(ctx, bookingEvent(events.BookingCreated, b, p.UserID))

	return s.bookingResponse(ctx, b.ID)
}

// UpdateBooking edits a pending booking. The conflict re-check leaves the
// booking itself out.
func (s *Service) UpdateBooking(ctx context.Context, p models.Principal, id string, req *api.BookingUpdateRequest) (*api.BookingResponse, error) {
	const op = "service.UpdateBooking"

	current, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.UserID != p.UserID && !p.Admin {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if current.Status != booking.StatusPending {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidState)
	}

	var occ booking.Occupancy
	if len(req.Dates) > 0 {
		bulk, err := parseBulk(req.Dates)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		occ = bulk
	} else {
		date, err := parseDate("date", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		occ = booking.Regular{Date: date}
	}

	owner := models.Principal{UserID: current.UserID}
	b, err := newBooking(owner, req.RoomID, occ, req.StartTime, req.EndTime,
		req.Purpose, req.Participants, req.Department)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b.ID = current.ID
	b.Document = current.Document

	if err := s.reserve(ctx, &b, true); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking updated", slog.String("booking_id", b.ID), slog.String("actor", p.UserID))
	s.publish(ctx, bookingEvent(events.BookingUpdated, b, p.UserID))

	return s.bookingResponse(ctx, b.ID)
}

func (s *Service) ApproveBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error) {
	const op = "service.ApproveBooking"

	resp, err := s.review(ctx, p, id, booking.StatusApproved, events.BookingApproved)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp, nil
}

func (s *Service) RejectBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error) {
	const op = "service.RejectBooking"

	resp, err := s.review(ctx, p, id, booking.StatusRejected, events.BookingRejected)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp, nil
}

func (s *Service) review(ctx context.Context, p models.Principal, id string, to booking.Status, kind events.Type) (*api.BookingResponse, error) {
	if !p.Admin {
		return nil, response.ErrForbidden
	}

	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, b, to); err != nil {
		return nil, err
	}

	s.log.Info("booking reviewed",
		slog.String("booking_id", b.ID),
		slog.String("status", string(to)),
		slog.String("admin", p.UserID),
	)
	s.publish(ctx, bookingEvent(kind, b, p.UserID))

	return s.bookingResponse(ctx, b.ID)
}

// CancelBooking lets owners withdraw their own pending requests.
func (s *Service) CancelBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != p.UserID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.transition(ctx, b, booking.StatusCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking cancelled", slog.String("booking_id", b.ID))
	s.publish(ctx, bookingEvent(events.BookingCancelled, b, p.UserID))

	return s.bookingResponse(ctx, b.ID)
}

func (s *Service) transition(ctx context.Context, b booking.Booking, to booking.Status) error {
	if b.Status != booking.StatusPending {
		return response.ErrInvalidState
	}

	if err := s.store.UpdateBookingStatus(ctx, b.ID, booking.StatusPending, to); err != nil {
		return err
	}

	return nil
}

// DeleteBooking hard-deletes a booking and its document. A document that cannot
// be removed is logged and left behind.
func (s *Service) DeleteBooking(ctx context.Context, p models.Principal, id string) error {
	const op = "service.DeleteBooking"

	if !p.Admin {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	rec, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rec.Document != "" {
		s.removeDocument(ctx, rec.ID, rec.Document)
	}

	s.log.Info("booking deleted", slog.String("booking_id", id), slog.String("admin", p.UserID))

	e := events.Event{
		Type:      events.BookingDeleted,
		BookingID: rec.ID,
		RoomID:    rec.RoomID,
		UserID:    rec.UserID,
		ActorID:   p.UserID,
		Status:    rec.Status,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
	}
	if b, err := booking.Decode(*rec); err == nil {
		e = bookingEvent(events.BookingDeleted, b, p.UserID)
	}
	s.publish(ctx, e)

	return nil
}

// AttachDocument stores a PDF for a pending booking, replacing any previous one.
func (s *Service) AttachDocument(ctx context.Context, p models.Principal, id string, r io.Reader) (*api.BookingResponse, error) {
	const op = "service.AttachDocument"

	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != p.UserID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if b.Status != booking.StatusPending {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidState)
	}

	name, err := s.files.Save(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	previous, err := s.store.SetBookingDocument(ctx, id, name)
	if err != nil {
		s.removeDocument(ctx, id, name)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if previous != "" && previous != name {
		s.removeDocument(ctx, id, previous)
	}

	s.log.Info("document attached", slog.String("booking_id", id), slog.String("document", name))

	return s.bookingResponse(ctx, id)
}

// OpenDocument returns the booking's document for its owner or an admin.
func (s *Service) OpenDocument(ctx context.Context, p models.Principal, id string) (io.ReadCloser, error) {
	const op = "service.OpenDocument"

	rec, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if rec.UserID != p.UserID && !p.Admin {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}
	if rec.Document == "" {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	rc, err := s.files.Open(ctx, rec.Document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rc, nil
}

func (s *Service) GetBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != p.UserID && !p.Admin {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	resp := toBookingResponse(b)
	return &resp, nil
}

// ListBookings returns the caller's own bookings. Admins may list anyone's.
func (s *Service) ListBookings(ctx context.Context, p models.Principal, q *api.BookingListQuery) ([]api.BookingResponse, error) {
	const op = "service.ListBookings"

	filter := models.BookingFilter{
		UserID: q.UserID,
		RoomID: q.RoomID,
		Status: q.Status,
	}
	if !p.Admin {
		filter.UserID = p.UserID
	}

	if q.Status != "" {
		if _, err := booking.ParseStatus(q.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, &booking.ValidationError{Field: "status", Reason: err.Error()})
		}
	}

	for _, bound := range []struct {
		field string
		raw   string
		dst   **time.Time
	}{
		{"from", q.From, &filter.From},
		{"to", q.To, &filter.To},
	} {
		if bound.raw == "" {
			continue
		}
		d, err := parseDate(bound.field, bound.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		t := d.At(0, time.UTC)
		*bound.dst = &t
	}

	records, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.BookingResponse, 0, len(records))
	for _, rec := range records {
		b, err := booking.Decode(rec)
		if err != nil {
			s.log.Warn("skipping corrupt booking record",
				slog.String("booking_id", rec.ID),
				slog.String("purpose", rec.Purpose),
				sl.Err(err),
			)
			continue
		}
		out = append(out, toBookingResponse(b))
	}

	return out, nil
}

// CheckConflict previews whether a candidate window is free without writing anything.
func (s *Service) CheckConflict(ctx context.Context, req *api.ConflictCheckRequest) (*api.ConflictCheckResponse, error) {
	const op = "service.CheckConflict"

	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w, err := booking.NewWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.store.GetRoom(ctx, req.RoomID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, blocking, err := booking.NewDetector(s.store, s.log).Preview(ctx, req.RoomID, date, w, req.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.ConflictCheckResponse{
		HasConflict: res.HasConflict,
		Detail:      res.Detail,
		Conflicts:   make([]api.BookingResponse, 0, len(blocking)),
	}
	for _, b := range blocking {
		resp.Conflicts = append(resp.Conflicts, toBookingResponse(b))
	}

	return resp, nil
}

// Timeline lists what occupies rooms on date, optionally narrowed to one room.
func (s *Service) Timeline(ctx context.Context, date, roomID string) (*api.TimelineResponse, error) {
	const op = "service.Timeline"

	d, err := parseDate("date", date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.timeline.Materialize(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if roomID != "" {
		entries = booking.FilterRoom(entries, roomID)
	}

	resp := &api.TimelineResponse{
		Date:    d.String(),
		Entries: make([]api.TimelineEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, api.TimelineEntry{
			BookingID: e.BookingID,
			RoomID:    e.RoomID,
			RoomName:  e.RoomName,
			Date:      e.Date.String(),
			Start:     e.Start,
			End:       e.End,
			Purpose:   e.Purpose,
			Status:    string(e.Status),
			Bulk:      e.Bulk,
			Owner: api.Owner{
				UserID: e.Owner.UserID,
				Name:   e.Owner.Name,
				Email:  e.Owner.Email,
			},
		})
	}

	return resp, nil
}

// reserve runs the conflict check and the write under the room lock and inside
// one room transaction.
func (s *Service) reserve(ctx context.Context, b *booking.Booking, update bool) error {
	unlock, err := s.lockRoom(ctx, b.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	excludeID := ""
	if update {
		excludeID = b.ID
	}

	return s.store.RunInRoomTx(ctx, b.RoomID, func(tx booking.ReserveTx) error {
		res, err := booking.NewDetector(tx, s.log).CheckDates(ctx, b.RoomID, b.Occupancy.Dates(), b.Window, excludeID)
		if err != nil {
			return err
		}
		if res.HasConflict {
			return res.Conflict
		}

		rec := booking.Encode(*b)
		if update {
			err = tx.Update(ctx, &rec)
		} else {
			err = tx.Insert(ctx, &rec)
		}
		if err != nil {
			return err
		}

		b.CreatedAt = rec.CreatedAt
		b.UpdatedAt = rec.UpdatedAt

		return nil
	})
}

func (s *Service) loadBooking(ctx context.Context, id string) (booking.Booking, error) {
	rec, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return booking.Booking{}, err
	}

	b, err := booking.Decode(*rec)
	if err != nil {
		s.log.Warn("corrupt booking record", slog.String("booking_id", rec.ID), slog.String("purpose", rec.Purpose), sl.Err(err))
		return booking.Booking{}, err
	}

	return b, nil
}

func (s *Service) bookingResponse(ctx context.Context, id string) (*api.BookingResponse, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toBookingResponse(b)
	return &resp, nil
}

func (s *Service) removeDocument(ctx context.Context, bookingID, name string) {
	if err := s.files.Remove(context.WithoutCancel(ctx), name); err != nil {
		s.log.Error("failed to remove document",
			slog.String("booking_id", bookingID),
			slog.String("document", name),
			sl.Err(err),
		)
	}
}

func newBooking(p models.Principal, roomID string, occ booking.Occupancy, start, end, purpose string, participants int, department string) (booking.Booking, error) {
	if roomID == "" {
		return booking.Booking{}, &booking.ValidationError{Field: "room_id", Reason: "is required"}
	}

	w, err := booking.NewWindow(start, end)
	if err != nil {
		return booking.Booking{}, err
	}

	if _, bulk := occ.(booking.Bulk); !bulk {
		if err := booking.ValidatePurpose(purpose); err != nil {
			return booking.Booking{}, err
		}
	} else if purpose == "" {
		return booking.Booking{}, &booking.ValidationError{Field: "purpose", Reason: "must not be empty"}
	}

	if participants < 0 {
		return booking.Booking{}, &booking.ValidationError{Field: "participants", Reason: "must not be negative"}
	}

	return booking.Booking{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		UserID:       p.UserID,
		Occupancy:    occ,
		Window:       w,
		Purpose:      purpose,
		Status:       booking.StatusPending,
		Participants: participants,
		Department:   department,
	}, nil
}

func parseDate(field, raw string) (booking.Date, error) {
	if raw == "" {
		return booking.Date{}, &booking.ValidationError{Field: field, Reason: "is required"}
	}

	d, err := booking.ParseDate(raw)
	if err != nil {
		return booking.Date{}, &booking.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", raw)}
	}

	return d, nil
}

func parseBulk(raw []string) (booking.Bulk, error) {
	if len(raw) == 0 {
		return booking.Bulk{}, &booking.ValidationError{Field: "dates", Reason: "at least one date is required"}
	}

	dates := make([]booking.Date, 0, len(raw))
	for _, r := range raw {
		d, err := parseDate("dates", r)
		if err != nil {
			return booking.Bulk{}, err
		}
		dates = append(dates, d)
	}

	return booking.NewBulk(dates)
}

func toBookingResponse(b booking.Booking) api.BookingResponse {
	dates := b.Occupancy.Dates()
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}

	return api.BookingResponse{
		ID:           b.ID,
		RoomID:       b.RoomID,
		RoomName:     b.RoomName,
		UserID:       b.UserID,
		OwnerName:    b.OwnerName,
		OwnerEmail:   b.OwnerEmail,
		Bulk:         b.IsBulk(),
		Date:         b.Occupancy.Anchor().String(),
		Dates:        out,
		StartTime:    b.Window.Start.String(),
		EndTime:      b.Window.End.String(),
		Purpose:      b.Purpose,
		Status:       string(b.Status),
		Participants: b.Participants,
		Department:   b.Department,
		HasDocument:  b.Document != "",
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func bookingEvent(kind events.Type, b booking.Booking, actorID string) events.Event {
	dates := make([]string, 0, len(b.Occupancy.Dates()))
	for _, d := range b.Occupancy.Dates() {
		dates = append(dates, d.String())
	}

	status := b.Status
	switch kind {
	case events.BookingApproved:
		status = booking.StatusApproved
	case events.BookingRejected:
		status = booking.StatusRejected
	case events.BookingCancelled:
		status = booking.StatusCancelled
	}

	return events.Event{
		Type:       kind,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		UserID:     b.UserID,
		ActorID:    actorID,
		Status:     string(status),
		Dates:      dates,
		StartTime:  b.Window.Start.String(),
		EndTime:    b.Window.End.String(),
		OccurredAt: time.Now().UTC(),
	}
}

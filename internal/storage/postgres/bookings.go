package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

const selectBookings = `
	SELECT b.id, b.room_id, b.user_id, b.anchor_date, b.start_time, b.end_time, b.purpose, b.status,
		b.participants, b.department, b.document, b.created_at, b.updated_at,
		r.name, u.name, u.email
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN users u ON u.id = b.user_id`

const activeStatuses = `b.status IN ('PENDING', 'APPROVED')`

// bulkPrefix matches purposes carrying the bulk tag. Its negation selects regular bookings.
const bulkPrefix = `b.purpose LIKE 'BULK\_BOOKING%'`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (booking.Record, error) {
	var rec booking.Record
	var anchor time.Time

	err := row.Scan(
		&rec.ID,
		&rec.RoomID,
		&rec.UserID,
		&anchor,
		&rec.StartTime,
		&rec.EndTime,
		&rec.Purpose,
		&rec.Status,
		&rec.Participants,
		&rec.Department,
		&rec.Document,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.RoomName,
		&rec.OwnerName,
		&rec.OwnerEmail,
	)
	if err != nil {
		return booking.Record{}, err
	}

	rec.AnchorDate = booking.DateOf(anchor)
	rec.StartTime = strings.TrimSpace(rec.StartTime)
	rec.EndTime = strings.TrimSpace(rec.EndTime)

	return rec, nil
}

func queryRecords(ctx context.Context, q querier, query string, args ...any) ([]booking.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var records []booking.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func activeForRoom(ctx context.Context, q querier, roomID, excludeID string) ([]booking.Record, error) {
	return queryRecords(ctx, q,
		selectBookings+`
		WHERE b.room_id = $1 AND `+activeStatuses+` AND ($2 = '' OR b.id::text <> $2)
		ORDER BY b.anchor_date, b.start_time, b.id`,
		roomID, excludeID,
	)
}

// ActiveBookingsForRoom reads outside any transaction. Used for conflict previews.
func (s *Storage) ActiveBookingsForRoom(ctx context.Context, roomID, excludeID string) ([]booking.Record, error) {
	const op = "storage.postgres.ActiveBookingsForRoom"

	records, err := activeForRoom(ctx, s.db, roomID, excludeID)
	if err != nil {
		if pqCode(err) == codeInvalidText {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) ActiveRegularOn(ctx context.Context, date booking.Date) ([]booking.Record, error) {
	const op = "storage.postgres.ActiveRegularOn"

	records, err := queryRecords(ctx, s.db,
		selectBookings+`
		WHERE b.anchor_date = $1 AND `+activeStatuses+` AND NOT `+bulkPrefix+`
		ORDER BY b.start_time, b.id`,
		date.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) ActiveBulk(ctx context.Context) ([]booking.Record, error) {
	const op = "storage.postgres.ActiveBulk"

	records, err := queryRecords(ctx, s.db,
		selectBookings+`
		WHERE `+activeStatuses+` AND `+bulkPrefix+`
		ORDER BY b.anchor_date, b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*booking.Record, error) {
	const op = "storage.postgres.GetBooking"

	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectBookings+` WHERE b.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rec, nil
}

func (s *Storage) ListBookings(ctx context.Context, filter models.BookingFilter) ([]booking.Record, error) {
	const op = "storage.postgres.ListBookings"

	var where []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("b.user_id = $%d", filter.UserID)
	}
	if filter.RoomID != "" {
		add("b.room_id = $%d", filter.RoomID)
	}
	if filter.Status != "" {
		add("b.status = $%d", filter.Status)
	}
	// bulk rows are narrowed by their decoded dates below
	if filter.From != nil {
		add("(b.anchor_date >= $%d OR "+bulkPrefix+")", filter.From.Format(booking.DateLayout))
	}
	if filter.To != nil {
		add("(b.anchor_date <= $%d OR "+bulkPrefix+")", filter.To.Format(booking.DateLayout))
	}

	query := selectBookings
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY b.anchor_date DESC, b.start_time, b.id"

	records, err := queryRecords(ctx, s.db, query, args...)
	if err != nil {
		if pqCode(err) == codeInvalidText {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if filter.From == nil && filter.To == nil {
		return records, nil
	}

	out := records[:0]
	for _, rec := range records {
		if bulkInRange(rec, filter.From, filter.To) {
			out = append(out, rec)
		}
	}

	return out, nil
}

// bulkInRange reports whether any date of a bulk record lies within [from, to].
// Regular records were already matched by the query and corrupt encodings are
// kept so callers can report them.
func bulkInRange(rec booking.Record, from, to *time.Time) bool {
	dates, _, bulk, err := booking.ParsePurpose(rec.Purpose)
	if !bulk || err != nil {
		return true
	}

	for _, d := range dates {
		if from != nil && d.Before(booking.DateOf(*from)) {
			continue
		}
		if to != nil && booking.DateOf(*to).Before(d) {
			continue
		}
		return true
	}

	return false
}

// UpdateBookingStatus moves a booking from one status to another. It fails with
// response.ErrInvalidState when the booking is no longer in status from.
func (s *Storage) UpdateBookingStatus(ctx context.Context, id string, from, to booking.Status) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := rowsAffected(res); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrInvalidState)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SetBookingDocument stores a new document name and returns the one it replaced.
func (s *Storage) SetBookingDocument(ctx context.Context, id, document string) (string, error) {
	const op = "storage.postgres.SetBookingDocument"

	var previous string

	err := s.db.QueryRowContext(ctx,
		`UPDATE bookings b SET document = $2, updated_at = now()
		FROM (SELECT id, document FROM bookings WHERE id = $1 FOR UPDATE) old
		WHERE b.id = old.id
		RETURNING old.document`,
		id, document,
	).Scan(&previous)
	if err != nil {
		if notFound(err) {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return previous, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteBooking"

	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RunInRoomTx locks the room row and runs fn inside one transaction, so the
// conflict check fn performs and the write it makes commit together.
func (s *Storage) RunInRoomTx(ctx context.Context, roomID string, fn func(tx booking.ReserveTx) error) error {
	const op = "storage.postgres.RunInRoomTx"

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&locked)
	if err != nil {
		if notFound(err) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: lock room: %w", op, err)
	}

	if err := fn(&roomTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

type roomTx struct {
	tx *sql.Tx
}

func (r *roomTx) ActiveBookingsForRoom(ctx context.Context, roomID, excludeID string) ([]booking.Record, error) {
	return activeForRoom(ctx, r.tx, roomID, excludeID)
}

func (r *roomTx) Insert(ctx context.Context, rec *booking.Record) error {
	const op = "storage.postgres.roomTx.Insert"

	err := r.tx.QueryRowContext(ctx,
		`INSERT INTO bookings
		(id, room_id, user_id, anchor_date, start_time, end_time, purpose, status, participants, department, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		rec.ID,
		rec.RoomID,
		rec.UserID,
		rec.AnchorDate.String(),
		rec.StartTime,
		rec.EndTime,
		rec.Purpose,
		rec.Status,
		rec.Participants,
		rec.Department,
		rec.Document,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *roomTx) Update(ctx context.Context, rec *booking.Record) error {
	const op = "storage.postgres.roomTx.Update"

	err := r.tx.QueryRowContext(ctx,
		`UPDATE bookings SET
			room_id = $2, anchor_date = $3, start_time = $4, end_time = $5, purpose = $6,
			participants = $7, department = $8, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING created_at, updated_at`,
		rec.ID,
		rec.RoomID,
		rec.AnchorDate.String(),
		rec.StartTime,
		rec.EndTime,
		rec.Purpose,
		rec.Participants,
		rec.Department,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%s: %w", op, response.ErrInvalidState)
		case pqCode(err) == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"

	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

func (s *Storage) CreateRoom(ctx context.Context, room *models.Room) error {
	const op = "storage.postgres.CreateRoom"

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rooms (id, name, building, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		room.ID,
		room.Name,
		room.Building,
		room.Capacity,
	).Scan(&room.CreatedAt)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("%s: %w", op, response.ErrExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	const op = "storage.postgres.GetRoom"

	var room models.Room

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, building, capacity, created_at FROM rooms WHERE id = $1`, id).
		Scan(
			&room.ID,
			&room.Name,
			&room.Building,
			&room.Capacity,
			&room.CreatedAt,
		)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*models.Room, error) {
	const op = "storage.postgres.ListRooms"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, building, capacity, created_at FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Building, &room.Capacity, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rooms, nil
}

// DeleteRoom refuses to drop a room that bookings still reference.
func (s *Storage) DeleteRoom(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteRoom"

	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		switch {
		case pqCode(err) == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, response.ErrRoomInUse)
		case notFound(err):
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := rowsAffected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

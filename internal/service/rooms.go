package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"skyvision-booking/api"
	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

func (s *Service) CreateRoom(ctx context.Context, p models.Principal, req *api.RoomRequest) (*api.RoomResponse, error) {
	const op = "service.CreateRoom"

	if !p.Admin {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, &booking.ValidationError{Field: "name", Reason: "is required"})
	}

	room := &models.Room{
		ID:       uuid.NewString(),
		Name:     name,
		Building: strings.TrimSpace(req.Building),
		Capacity: req.Capacity,
	}

	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("room created", slog.String("room_id", room.ID), slog.String("name", room.Name))

	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *Service) GetRoom(ctx context.Context, id string) (*api.RoomResponse, error) {
	const op = "service.GetRoom"

	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toRoomResponse(room)
	return &resp, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]api.RoomResponse, error) {
	const op = "service.ListRooms"

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomResponse(room))
	}

	return out, nil
}

// DeleteRoom fails with response.ErrRoomInUse while any booking references the room.
func (s *Service) DeleteRoom(ctx context.Context, p models.Principal, id string) error {
	const op = "service.DeleteRoom"

	if !p.Admin {
		return fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("room deleted", slog.String("room_id", id))

	return nil
}

func toRoomResponse(r *models.Room) api.RoomResponse {
	return api.RoomResponse{
		ID:        r.ID,
		Name:      r.Name,
		Building:  r.Building,
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt,
	}
}

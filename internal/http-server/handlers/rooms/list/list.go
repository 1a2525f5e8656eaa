package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	"skyvision-booking/pkg/response"
)

type RoomLister interface {
	ListRooms(ctx context.Context) ([]api.RoomResponse, error)
}

type Response struct {
	response.Response
	Rooms []api.RoomResponse `json:"rooms"`
}

func New(log *slog.Logger, lister RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rooms.list.New"

		log := handlers.Logger(log, op, r)

		rooms, err := lister.ListRooms(r.Context())
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list rooms")
			return
		}

		render.JSON(w, r, Response{Rooms: rooms})
	}
}

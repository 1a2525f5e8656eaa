package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	"skyvision-booking/pkg/response"
)

type RoomGetter interface {
	GetRoom(ctx context.Context, id string) (*api.RoomResponse, error)
}

type Response struct {
	response.Response
	Room *api.RoomResponse `json:"room,omitempty"`
}

func New(log *slog.Logger, getter RoomGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rooms.get.New"

		log := handlers.Logger(log, op, r)

		room, err := getter.GetRoom(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to get room")
			return
		}

		render.JSON(w, r, Response{Room: room})
	}
}

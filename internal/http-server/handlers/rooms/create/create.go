package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

type RoomCreator interface {
	CreateRoom(ctx context.Context, p models.Principal, req *api.RoomRequest) (*api.RoomResponse, error)
}

type Response struct {
	response.Response
	Room *api.RoomResponse `json:"room,omitempty"`
}

func New(log *slog.Logger, creator RoomCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rooms.create.New"

		log := handlers.Logger(log, op, r)

		var req api.RoomRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		p, _ := mwauth.PrincipalFrom(r.Context())

		room, err := creator.CreateRoom(r.Context(), p, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create room")
			return
		}

		log.Info("Room created", slog.String("room_id", room.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Room: room})
	}
}

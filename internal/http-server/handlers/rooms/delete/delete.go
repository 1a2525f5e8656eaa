package delete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/internal/models"
)

type RoomDeleter interface {
	DeleteRoom(ctx context.Context, p models.Principal, id string) error
}

func New(log *slog.Logger, deleter RoomDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rooms.delete.New"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		p, _ := mwauth.PrincipalFrom(r.Context())

		if err := deleter.DeleteRoom(r.Context(), p, id); err != nil {
			handlers.Fail(w, r, log, err, "failed to delete room")
			return
		}

		log.Info("Room deleted", slog.String("room_id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}

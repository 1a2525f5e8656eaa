package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	"skyvision-booking/pkg/response"
)

type TimelineGetter interface {
	Timeline(ctx context.Context, date, roomID string) (*api.TimelineResponse, error)
}

type Response struct {
	response.Response
	*api.TimelineResponse
}

func New(log *slog.Logger, getter TimelineGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.timeline.get.New"

		log := handlers.Logger(log, op, r)

		query := r.URL.Query()

		resp, err := getter.Timeline(r.Context(), query.Get("date"), query.Get("room_id"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to build timeline")
			return
		}

		render.JSON(w, r, Response{TimelineResponse: resp})
	}
}

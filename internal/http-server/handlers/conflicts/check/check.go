package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	"skyvision-booking/pkg/response"
)

type ConflictChecker interface {
	CheckConflict(ctx context.Context, req *api.ConflictCheckRequest) (*api.ConflictCheckResponse, error)
}

type Response struct {
	response.Response
	*api.ConflictCheckResponse
}

// New answers GET /conflicts?room_id=&date=&start=&end=&exclude_id=.
func New(log *slog.Logger, checker ConflictChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.conflicts.check.New"

		log := handlers.Logger(log, op, r)

		query := r.URL.Query()
		req := api.ConflictCheckRequest{
			RoomID:    query.Get("room_id"),
			Date:      query.Get("date"),
			StartTime: query.Get("start"),
			EndTime:   query.Get("end"),
			ExcludeID: query.Get("exclude_id"),
		}
		if !handlers.Validate(w, r, log, &req) {
			return
		}

		resp, err := checker.CheckConflict(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to check conflicts")
			return
		}

		render.JSON(w, r, Response{ConflictCheckResponse: resp})
	}
}

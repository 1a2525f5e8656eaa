package list

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

type BookingLister interface {
	ListBookings(ctx context.Context, p models.Principal, q *api.BookingListQuery) ([]api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []api.BookingResponse `json:"bookings"`
}

func New(log *slog.Logger, lister BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.New"

		log := handlers.Logger(log, op, r)

		query := r.URL.Query()
		q := api.BookingListQuery{
			UserID: query.Get("user_id"),
			RoomID: query.Get("room_id"),
			Status: query.Get("status"),
			From:   query.Get("from"),
			To:     query.Get("to"),
		}
		if !handlers.Validate(w, r, log, &q) {
			return
		}

		p, _ := mwauth.PrincipalFrom(r.Context())

		bookings, err := lister.ListBookings(r.Context(), p, &q)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to list bookings")
			return
		}

		render.JSON(w, r, Response{Bookings: bookings})
	}
}

package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
)

type BookingGetter interface {
	GetBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log := handlers.Logger(log, op, r)

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := getter.GetBooking(r.Context(), p, chi.URLParam(r, "id"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to get booking")
			return
		}

		render.JSON(w, r, Response{Booking: booking})
	}
}

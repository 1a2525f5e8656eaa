package cancel

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

type BookingCanceller interface {
	CancelBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

		log := handlers.Logger(log, op, r)

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := canceller.CancelBooking(r.Context(), p, chi.URLParam(r, "id"))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to cancel booking")
			return
		}

		log.Info("Booking cancelled", slog.String("booking_id", booking.ID))

		render.JSON(w, r, Response{Booking: booking})
	}
}

package update

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

type BookingUpdater interface {
	UpdateBooking(ctx context.Context, p models.Principal, id string, req *api.BookingUpdateRequest) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, updater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.update.New"

		log := handlers.Logger(log, op, r)

		var req api.BookingUpdateRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := updater.UpdateBooking(r.Context(), p, chi.URLParam(r, "id"), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to update booking")
			return
		}

		log.Info("Booking updated", slog.String("booking_id", booking.ID))

		render.JSON(w, r, Response{Booking: booking})
	}
}

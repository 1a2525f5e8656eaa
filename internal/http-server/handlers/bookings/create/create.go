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

type BookingCreator interface {
	CreateBooking(ctx context.Context, p models.Principal, req *api.BookingRequest) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log := handlers.Logger(log, op, r)

		var req api.BookingRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		log.Debug("Request body decoded", slog.Any("request", req))

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := creator.CreateBooking(r.Context(), p, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create booking")
			return
		}

		log.Info("Booking created", slog.String("booking_id", booking.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Booking: booking})
	}
}

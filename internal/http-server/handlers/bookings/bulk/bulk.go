package bulk

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

type BulkCreator interface {
	CreateBulkBooking(ctx context.Context, p models.Principal, req *api.BulkBookingRequest) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

// New books the same window on every requested date, or on none of them.
func New(log *slog.Logger, creator BulkCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.bulk.New"

		log := handlers.Logger(log, op, r)

		var req api.BulkBookingRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := creator.CreateBulkBooking(r.Context(), p, &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to create bulk booking")
			return
		}

		log.Info("Bulk booking created",
			slog.String("booking_id", booking.ID),
			slog.Int("dates", len(booking.Dates)),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Booking: booking})
	}
}

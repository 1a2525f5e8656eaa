// Package review serves the admin decisions on pending bookings.
package review

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

type Reviewer interface {
	ApproveBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error)
	RejectBooking(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

type decision func(ctx context.Context, p models.Principal, id string) (*api.BookingResponse, error)

func NewApprove(log *slog.Logger, reviewer Reviewer) http.HandlerFunc {
	return handle(log, "handlers.bookings.review.NewApprove", reviewer.ApproveBooking, "failed to approve booking")
}

func NewReject(log *slog.Logger, reviewer Reviewer) http.HandlerFunc {
	return handle(log, "handlers.bookings.review.NewReject", reviewer.RejectBooking, "failed to reject booking")
}

func handle(log *slog.Logger, op string, decide decision, failMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := handlers.Logger(log, op, r)

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := decide(r.Context(), p, chi.URLParam(r, "id"))
		if err != nil {
			handlers.Fail(w, r, log, err, failMsg)
			return
		}

		log.Info("Booking reviewed",
			slog.String("booking_id", booking.ID),
			slog.String("status", booking.Status),
		)

		render.JSON(w, r, Response{Booking: booking})
	}
}

// Package document uploads and serves the PDF attached to a booking.
package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

const formField = "file"

type DocumentService interface {
	AttachDocument(ctx context.Context, p models.Principal, id string, r io.Reader) (*api.BookingResponse, error)
	OpenDocument(ctx context.Context, p models.Principal, id string) (io.ReadCloser, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

// NewUpload accepts a multipart form with the PDF in the "file" field.
// maxBytes bounds the whole request body.
func NewUpload(log *slog.Logger, svc DocumentService, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.document.NewUpload"

		log := handlers.Logger(log, op, r)

		if maxBytes > 0 {
			// multipart framing needs a little room on top of the file itself
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+64<<10)
		}

		file, _, err := r.FormFile(formField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				handlers.Fail(w, r, log, response.ErrTooLarge, "document is too large")
				return
			}
			log.Info("Missing document in form", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "multipart field 'file' is required"))
			return
		}
		defer file.Close()

		p, _ := mwauth.PrincipalFrom(r.Context())

		booking, err := svc.AttachDocument(r.Context(), p, chi.URLParam(r, "id"), file)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to attach document")
			return
		}

		log.Info("Document attached", slog.String("booking_id", booking.ID))

		render.JSON(w, r, Response{Booking: booking})
	}
}

func NewDownload(log *slog.Logger, svc DocumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.document.NewDownload"

		log := handlers.Logger(log, op, r)

		id := chi.URLParam(r, "id")
		p, _ := mwauth.PrincipalFrom(r.Context())

		rc, err := svc.OpenDocument(r.Context(), p, id)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to open document")
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="booking-`+id+`.pdf"`)
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, rc); err != nil {
			log.Error("Failed to stream document", sl.Err(err))
		}
	}
}

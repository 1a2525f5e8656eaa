package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"skyvision-booking/internal/http-server/handlers/auth/login"
	"skyvision-booking/internal/http-server/handlers/auth/logout"
	"skyvision-booking/internal/http-server/handlers/auth/me"
	"skyvision-booking/internal/http-server/handlers/auth/register"
	bookingBulk "skyvision-booking/internal/http-server/handlers/bookings/bulk"
	bookingCancel "skyvision-booking/internal/http-server/handlers/bookings/cancel"
	bookingCreate "skyvision-booking/internal/http-server/handlers/bookings/create"
	bookingDelete "skyvision-booking/internal/http-server/handlers/bookings/delete"
	bookingDocument "skyvision-booking/internal/http-server/handlers/bookings/document"
	bookingGet "skyvision-booking/internal/http-server/handlers/bookings/get"
	bookingList "skyvision-booking/internal/http-server/handlers/bookings/list"
	bookingReview "skyvision-booking/internal/http-server/handlers/bookings/review"
	bookingUpdate "skyvision-booking/internal/http-server/handlers/bookings/update"
	conflictCheck "skyvision-booking/internal/http-server/handlers/conflicts/check"
	roomCreate "skyvision-booking/internal/http-server/handlers/rooms/create"
	roomDelete "skyvision-booking/internal/http-server/handlers/rooms/delete"
	roomGet "skyvision-booking/internal/http-server/handlers/rooms/get"
	roomList "skyvision-booking/internal/http-server/handlers/rooms/list"
	timelineGet "skyvision-booking/internal/http-server/handlers/timeline/get"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/pkg/middleware/mwlogger"
)

type Service interface {
	mwauth.Authenticator

	register.Registerer
	login.LoginService
	logout.LogoutService
	me.Profiler

	roomCreate.RoomCreator
	roomGet.RoomGetter
	roomList.RoomLister
	roomDelete.RoomDeleter

	bookingCreate.BookingCreator
	bookingBulk.BulkCreator
	bookingList.BookingLister
	bookingGet.BookingGetter
	bookingUpdate.BookingUpdater
	bookingCancel.BookingCanceller
	bookingReview.Reviewer
	bookingDelete.BookingDeleter
	bookingDocument.DocumentService

	conflictCheck.ConflictChecker
	timelineGet.TimelineGetter
}

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

func New(log *slog.Logger, svc Service, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS(opts.AllowedOrigins))

	router.Post("/auth/register", register.New(log, svc))
	router.Post("/auth/login", login.New(log, svc))

	router.Group(func(r chi.Router) {
		r.Use(mwauth.New(log, svc))

		r.Post("/auth/logout", logout.New(log, svc))
		r.Get("/auth/me", me.New(log, svc))

		// Rooms
		r.Get("/rooms", roomList.New(log, svc))
		r.Get("/rooms/{id}", roomGet.New(log, svc))

		// Bookings
		r.Post("/bookings", bookingCreate.New(log, svc))
		r.Post("/bookings/bulk", bookingBulk.New(log, svc))
		r.Get("/bookings", bookingList.New(log, svc))
		r.Get("/bookings/{id}", bookingGet.New(log, svc))
		r.Put("/bookings/{id}", bookingUpdate.New(log, svc))
		r.Put("/bookings/{id}/cancel", bookingCancel.New(log, svc))
		r.Post("/bookings/{id}/document", bookingDocument.NewUpload(log, svc, opts.MaxUploadBytes))
		r.Get("/bookings/{id}/document", bookingDocument.NewDownload(log, svc))

		r.Get("/conflicts", conflictCheck.New(log, svc))
		r.Get("/timeline", timelineGet.New(log, svc))

		r.Group(func(r chi.Router) {
			r.Use(mwauth.RequireAdmin)

			r.Post("/rooms", roomCreate.New(log, svc))
			r.Delete("/rooms/{id}", roomDelete.New(log, svc))

			r.Post("/bookings/{id}/approve", bookingReview.NewApprove(log, svc))
			r.Post("/bookings/{id}/reject", bookingReview.NewReject(log, svc))
			r.Delete("/bookings/{id}", bookingDelete.New(log, svc))
		})
	})

	return router
}

// CORS allows the listed origins, or any origin without credentials when the
// list is empty.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           300,
	})
}

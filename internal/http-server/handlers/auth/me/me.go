package me

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

type Profiler interface {
	Me(ctx context.Context, p models.Principal) (*api.UserResponse, error)
}

type Response struct {
	response.Response
	User *api.UserResponse `json:"user,omitempty"`
}

func New(log *slog.Logger, profiler Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.me.New"

		log := handlers.Logger(log, op, r)

		p, _ := mwauth.PrincipalFrom(r.Context())

		user, err := profiler.Me(r.Context(), p)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to load profile")
			return
		}

		render.JSON(w, r, Response{User: user})
	}
}

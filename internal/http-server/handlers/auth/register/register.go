package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	"skyvision-booking/pkg/response"
)

type Registerer interface {
	Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error)
}

type Response struct {
	response.Response
	User *api.UserResponse `json:"user,omitempty"`
}

func New(log *slog.Logger, registerer Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.register.New"

		log := handlers.Logger(log, op, r)

		var req api.RegisterRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		user, err := registerer.Register(r.Context(), &req)
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to register user")
			return
		}

		log.Info("User registered", slog.String("user_id", user.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{User: user})
	}
}

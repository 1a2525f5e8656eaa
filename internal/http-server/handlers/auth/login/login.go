package login

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/render"

	"skyvision-booking/api"
	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
	"skyvision-booking/pkg/response"
)

type LoginService interface {
	Login(ctx context.Context, req *api.LoginRequest, clientKey string) (*api.LoginResponse, error)
}

type Response struct {
	response.Response
	*api.LoginResponse
}

// New issues a session token in the body and in the session cookie.
func New(log *slog.Logger, svc LoginService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log := handlers.Logger(log, op, r)

		var req api.LoginRequest
		if !handlers.Decode(w, r, log, &req) {
			return
		}

		resp, err := svc.Login(r.Context(), &req, clientKey(r))
		if err != nil {
			handlers.Fail(w, r, log, err, "failed to log in")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     mwauth.CookieName,
			Value:    resp.Token,
			Path:     "/",
			Expires:  resp.ExpiresAt,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info("User logged in", slog.String("user_id", resp.User.ID))

		render.JSON(w, r, Response{LoginResponse: resp})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package logout

import (
	"context"
	"log/slog"
	"net/http"

	"skyvision-booking/internal/http-server/handlers"
	mwauth "skyvision-booking/internal/http-server/middleware/auth"
)

type LogoutService interface {
	Logout(ctx context.Context, token string) error
}

func New(log *slog.Logger, svc LogoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log := handlers.Logger(log, op, r)

		if err := svc.Logout(r.Context(), mwauth.Token(r)); err != nil {
			handlers.Fail(w, r, log, err, "failed to log out")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     mwauth.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		w.WriteHeader(http.StatusNoContent)
	}
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"skyvision-booking/internal/models"
	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

const CookieName = "session_token"

type ctxKey struct{}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// New rejects requests without a valid session and stores the caller in the context.
func New(log *slog.Logger, a Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/auth"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			token := Token(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			p, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, response.ErrUnauthorized) {
					log.Error("failed to authenticate",
						slog.String("request_id", middleware.GetReqID(r.Context())),
						sl.Err(err),
					)
					w.WriteHeader(http.StatusServiceUnavailable)
					render.JSON(w, r, response.Error(string(response.STORAGE_UNAVAILABLE), "failed to authenticate"))
					return
				}
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireAdmin must run after New.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}
		if !p.Admin {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token reads a bearer token, falling back to the session cookie.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}

	return ""
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(models.Principal)
	return p, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "authentication required"))
}

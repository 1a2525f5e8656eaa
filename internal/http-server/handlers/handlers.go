// Package handlers holds what every handler package shares: decoding,
// validation and the mapping of service errors onto HTTP responses.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"skyvision-booking/internal/booking"
	"skyvision-booking/internal/http-server/validate"
	"skyvision-booking/pkg/response"
	"skyvision-booking/pkg/sl"
)

// Logger scopes log to one handler invocation.
func Logger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Decode reads a JSON body into v and validates it. On failure the response is
// already written and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return false
	}

	return Validate(w, r, log, v)
}

func Validate(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("Invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verrs))
			return false
		}

		log.Error("Failed to validate request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid request"))
		return false
	}

	return true
}

// Fail writes the response matching err. msg is used for unexpected failures.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	var (
		verr     *booking.ValidationError
		conflict *booking.ConflictError
		storage  *booking.StorageError
	)

	switch {
	case errors.As(err, &verr):
		log.Info("Validation failed", sl.Err(err))
		write(w, r, http.StatusBadRequest, response.VALIDATION, verr.Error())
	case errors.As(err, &conflict):
		log.Info("Booking conflict", slog.String("detail", conflict.Error()))
		write(w, r, http.StatusConflict, response.CONFLICT, conflict.Error())
	case errors.Is(err, response.ErrNotFound):
		log.Info("Resource not found", sl.Err(err))
		write(w, r, http.StatusNotFound, response.NOT_FOUND, "resource not found")
	case errors.Is(err, booking.ErrConflictCheckFailed):
		log.Error("Conflict check failed", sl.Err(err))
		write(w, r, http.StatusServiceUnavailable, response.CONFLICT_CHECK_FAILED, "could not verify room availability, try again")
	case errors.As(err, &storage):
		log.Error("Storage unavailable", sl.Err(err))
		write(w, r, http.StatusServiceUnavailable, response.STORAGE_UNAVAILABLE, "storage is unavailable, try again")
	case errors.Is(err, response.ErrLocked):
		log.Warn("Room is locked", sl.Err(err))
		write(w, r, http.StatusLocked, response.LOCKED, "room is being booked by another request, try again")
	case errors.Is(err, response.ErrExists):
		log.Info("Resource already exists", sl.Err(err))
		write(w, r, http.StatusConflict, response.ALREADY_EXISTS, response.ErrExists.Error())
	case errors.Is(err, response.ErrInvalidState):
		log.Info("Invalid booking state", sl.Err(err))
		write(w, r, http.StatusConflict, response.INVALID_STATE, response.ErrInvalidState.Error())
	case errors.Is(err, response.ErrRoomInUse):
		log.Info("Room in use", sl.Err(err))
		write(w, r, http.StatusConflict, response.ROOM_IN_USE, response.ErrRoomInUse.Error())
	case errors.Is(err, response.ErrForbidden):
		log.Info("Forbidden", sl.Err(err))
		write(w, r, http.StatusForbidden, response.FORBIDDEN, response.ErrForbidden.Error())
	case errors.Is(err, response.ErrInvalidCredentials):
		log.Info("Invalid credentials")
		write(w, r, http.StatusUnauthorized, response.UNAUTHORIZED, response.ErrInvalidCredentials.Error())
	case errors.Is(err, response.ErrUnauthorized):
		write(w, r, http.StatusUnauthorized, response.UNAUTHORIZED, response.ErrUnauthorized.Error())
	case errors.Is(err, response.ErrTooManyRequests):
		log.Warn("Too many requests", sl.Err(err))
		write(w, r, http.StatusTooManyRequests, response.TOO_MANY_REQUESTS, response.ErrTooManyRequests.Error())
	case errors.Is(err, response.ErrUnsupportedMedia):
		write(w, r, http.StatusUnsupportedMediaType, response.UNSUPPORTED_MEDIA, response.ErrUnsupportedMedia.Error())
	case errors.Is(err, response.ErrTooLarge):
		write(w, r, http.StatusRequestEntityTooLarge, response.TOO_LARGE, response.ErrTooLarge.Error())
	default:
		log.Error(msg, sl.Err(err))
		write(w, r, http.StatusInternalServerError, response.FAILED_REQUEST, msg)
	}
}

func write(w http.ResponseWriter, r *http.Request, status int, code response.ErrCode, msg string) {
	w.WriteHeader(status)
	render.JSON(w, r, response.Error(string(code), msg))
}

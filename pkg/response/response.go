package response

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST        ErrCode = "REQUEST_FAILED"
	BAD_REQUEST           ErrCode = "FAILED_TO_DECODE"
	VALIDATION            ErrCode = "VALIDATION_FAILED"
	UNAUTHORIZED          ErrCode = "UNAUTHORIZED"
	FORBIDDEN             ErrCode = "FORBIDDEN"
	NOT_FOUND             ErrCode = "NOT_FOUND"
	LOCKED                ErrCode = "LOCKED"
	CONFLICT              ErrCode = "CONFLICT"
	ALREADY_EXISTS        ErrCode = "ALREADY_EXISTS"
	INVALID_STATE         ErrCode = "INVALID_STATE"
	ROOM_IN_USE           ErrCode = "ROOM_IN_USE"
	TOO_MANY_REQUESTS     ErrCode = "TOO_MANY_REQUESTS"
	UNSUPPORTED_MEDIA     ErrCode = "UNSUPPORTED_MEDIA_TYPE"
	TOO_LARGE             ErrCode = "PAYLOAD_TOO_LARGE"
	CONFLICT_CHECK_FAILED ErrCode = "CONFLICT_CHECK_FAILED"
	STORAGE_UNAVAILABLE   ErrCode = "STORAGE_UNAVAILABLE"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("resource not found")
	ErrExists             = errors.New("resource already exists")
	ErrLocked             = errors.New("resource is locked")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidState       = errors.New("booking is not in a state that allows this operation")
	ErrRoomInUse          = errors.New("room still has bookings")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrUnsupportedMedia   = errors.New("only PDF documents are accepted")
	ErrTooLarge           = errors.New("document is too large")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// ValidationError renders validator failures keyed by the JSON field name.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string]string, len(errs))
	var errMsg []string

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required", "required_without":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "min":
			msg = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s", err.Param())
		case "gte":
			msg = fmt.Sprintf("must be greater than or equal to %s", err.Param())
		case "excluded_with":
			msg = fmt.Sprintf("cannot be combined with %s", strings.ToLower(err.Param()))
		case "datetime":
			msg = fmt.Sprintf("must match layout %s", err.Param())
		default:
			msg = "is invalid"
		}
		fields[err.Field()] = msg
		errMsg = append(errMsg, fmt.Sprintf("field '%s' %s", err.Field(), msg))
	}

	return Response{
		ResponseError: ResponseError{
			Code:    string(VALIDATION),
			Message: strings.Join(errMsg, ", "),
			Fields:  fields,
		},
	}
}

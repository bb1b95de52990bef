// Package apierror defines the enumerable error kinds surfaced by the HTTP
// API. Handlers raise the first violated precondition as one of these kinds;
// the response boundary maps them onto the uniform error envelope.
package apierror

import (
	"errors"
	"net/http"
)

// Sentinel kinds. Every error returned to a client wraps exactly one of
// these, so tests can assert on kind instead of message text.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrServer          = errors.New("server error")
)

// Error pairs a kind with a human-readable message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is lets errors.Is match both the kind and the wrapped cause.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// BadRequest reports missing or malformed input.
func BadRequest(message string) *Error {
	return &Error{Kind: ErrBadRequest, Message: message}
}

// Unauthorized reports a missing/invalid token, bad credentials, or an
// ownership mismatch.
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// NotFound reports an absent referenced entity.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// TooManyRequests reports a rate-limited caller.
func TooManyRequests(message string) *Error {
	return &Error{Kind: ErrTooManyRequests, Message: message}
}

// Server reports an unexpected persistence or upstream failure.
func Server(message string, cause error) *Error {
	return &Error{Kind: ErrServer, Message: message, Err: cause}
}

// Code returns the stable machine-readable code for the error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTooManyRequests):
		return "too_many_requests"
	default:
		return "server_error"
	}
}

// Status maps the error onto its HTTP status code. Unknown errors are
// treated as server errors.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message, hiding internal detail for
// non-API errors.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal server error"
}

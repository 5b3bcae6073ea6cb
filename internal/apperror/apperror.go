// Package apperror defines the error taxonomy shared by every layer.
//
// Services and repositories return these values; only the HTTP layer
// (handler.writeError) knows which status code each one becomes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUpstream            = errors.New("upstream error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: upstream HTTP status for ErrUpstream
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that a record with the given natural key already exists.
func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with id %s already exists", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when a bearer token is missing, malformed or expired.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream records a non-2xx answer from the GitHub API. The status is kept
// so the HTTP layer can pass it through.
func Upstream(status int) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: fmt.Sprintf("upstream returned status %d %s", status, http.StatusText(status)),
		Status:  status,
	}
}

// UpstreamUnavailable wraps a transport failure (DNS, refused connection,
// timeout) talking to the GitHub API. The cause is kept for logging only.
func UpstreamUnavailable(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstreamUnavailable, cause),
		Message: "upstream service unavailable",
	}
}

package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so that all
// responses share one shape. Errors always look like:
//
//	{"error": "not_found", "message": "project not found with id abc123"}
//
// plus a "field" key on validation failures.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio-api/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending field for validation errors
}

// writeJSON sends data as JSON with the given status.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body is written. Once Encode
// writes the first byte, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError is the single place where error kinds become HTTP statuses.
//
//	ErrValidation          → 422
//	ErrUnauthorized        → 401
//	ErrForbidden           → 403
//	ErrNotFound            → 404
//	ErrConflict            → 409
//	ErrUpstream            → the upstream status if it is 4xx/5xx, else 502
//	ErrUpstreamUnavailable → 502
//	anything else          → 500, cause logged but never sent
//
// An upstream 401/403 (a bad GITHUB_TOKEN) keeps its status but is reported
// with kind "upstream_error", never "unauthorized", so clients can tell it
// apart from a rejected bearer token.
//
// errors.As walks the wrap chain, so a service returning
// fmt.Errorf("...: %w", apperror.NotFound(...)) still maps to 404.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	kind := "internal_error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, kind = http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, kind = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUpstreamUnavailable):
		status, kind = http.StatusBadGateway, "upstream_unavailable"
		logger.Warn("upstream unavailable", slog.String("error", err.Error()))
	case errors.Is(err, apperror.ErrUpstream):
		status, kind = http.StatusBadGateway, "upstream_error"
		if appErr.Status >= 400 && appErr.Status <= 599 {
			status = appErr.Status
		}
	}

	writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

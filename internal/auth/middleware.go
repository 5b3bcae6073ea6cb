package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/portfolio-api/internal/apperror"
)

// contextKey is unexported so only this package can set or read the admin ID.
type contextKey string

const adminIDKey contextKey = "adminID"

// TokenValidator is the token gate RequireAuth consults. In the server it is
// the AuthService, which turns every failure into an Unauthorized error whose
// message is sent back to the client.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <jwt>"
// header with 401. On success the token subject (admin ID) is stored in the
// request context for AdminIDFromContext.
//
// MIDDLEWARE PATTERN:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... before ...
//	        next.ServeHTTP(w, r)
//	        // ... after ...
//	    })
//	}
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			adminID, err := tokens.ValidateToken(raw)
			if err != nil {
				unauthorized(w, rejectionMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext returns the authenticated admin's ID, or ("", false)
// when the request did not pass through RequireAuth.
func AdminIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(adminIDKey).(string)
	return id, ok && id != ""
}

// WithAdminID returns a context carrying adminID. Handler tests use it to
// skip the middleware.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// rejectionMessage prefers the message of an *apperror.AppError and falls
// back to the raw token errors of this package.
func rejectionMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if errors.Is(err, ErrTokenExpired) {
		return "token expired"
	}
	return "invalid token"
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-api/internal/apperror"
)

// echoAdmin writes the admin ID found in the context.
var echoAdmin = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := AdminIDFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(id))
})

// rawGate exposes TokenService through the TokenValidator interface without
// translating its errors, so the package's own fallbacks are exercised.
type rawGate struct{ ts *TokenService }

func (g rawGate) ValidateToken(token string) (string, error) { return g.ts.Validate(token) }

// appErrorGate rejects every token with an Unauthorized AppError.
type appErrorGate struct{}

func (appErrorGate) ValidateToken(string) (string, error) {
	return "", apperror.Unauthorized("token revoked")
}

func TestRequireAuth_UsesAppErrorMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/projects", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	RequireAuth(appErrorGate{})(echoAdmin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token revoked")
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate("admin-42")
	require.NoError(t, err)
	expired, err := ts.GenerateWithDuration("admin-42", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid bearer", "Bearer " + valid, http.StatusOK, "admin-42"},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, "admin-42"},
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "missing bearer token"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "missing bearer token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token expired"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(rawGate{ts})(echoAdmin).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestAdminIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := AdminIDFromContext(req.Context())
	assert.False(t, ok)

	ctx := WithAdminID(req.Context(), "admin-7")
	id, ok := AdminIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin-7", id)
}

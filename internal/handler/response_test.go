package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", apperror.ValidationFailed("name", "name is required"), http.StatusUnprocessableEntity, "validation_error"},
		{"not found", apperror.NotFound("project", "abc"), http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("loading: %w", apperror.NotFound("project", "abc")), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("project", "1"), http.StatusConflict, "conflict"},
		{"upstream 404", apperror.Upstream(http.StatusNotFound), http.StatusNotFound, "upstream_error"},
		{"upstream 503", apperror.Upstream(http.StatusServiceUnavailable), http.StatusServiceUnavailable, "upstream_error"},
		{"upstream 302", apperror.Upstream(http.StatusFound), http.StatusBadGateway, "upstream_error"},
		{"upstream unreachable", apperror.UpstreamUnavailable(errors.New("dial tcp: refused")), http.StatusBadGateway, "upstream_unavailable"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteError_InternalCauseIsLoggedNotSent(t *testing.T) {
	var logs bytes.Buffer
	rec := httptest.NewRecorder()

	writeError(rec, slog.New(slog.NewTextHandler(&logs, nil)), errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, logs.String(), "pq: password authentication failed")
}

func TestWriteError_ValidationCarriesField(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), apperror.ValidationFailed("github_id", "github_id is required"))

	assert.JSONEq(t, `{"error":"validation_error","message":"github_id is required","field":"github_id"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantErr   bool
	}{
		{"valid", `{"github_id":1,"name":"n","html_url":"https://a.b","pushed_at":"2023-03-01T12:00:00Z","languages_url":"https://a.b/l"}`, "", false},
		{"empty body", ``, "", true},
		{"syntax error", `{"github_id":1,`, "", true},
		{"wrong type", `{"github_id":"x"}`, "github_id", true},
		{"bad timestamp", `{"pushed_at":"yesterday"}`, "", true},
		{"missing name", `{"github_id":1,"html_url":"https://a.b","pushed_at":"2023-03-01T12:00:00Z","languages_url":"https://a.b/l"}`, "name", true},
		{"non-positive id", `{"github_id":-4,"name":"n","html_url":"https://a.b","pushed_at":"2023-03-01T12:00:00Z","languages_url":"https://a.b/l"}`, "github_id", true},
		{"bad image url", `{"github_id":1,"name":"n","html_url":"https://a.b","pushed_at":"2023-03-01T12:00:00Z","languages_url":"https://a.b/l","image_url":"nope"}`, "image_url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(tt.body))
			var dst model.ProjectCreate

			err := decodeJSON(httptest.NewRecorder(), req, &dst)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, int64(1), dst.GitHubID)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation), "got %v", err)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(big))

	err := decodeJSON(httptest.NewRecorder(), req, &model.ProjectCreate{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Error(), "too large")
}

func TestWriteError_UpstreamAuthFailureIsDistinguishable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), apperror.Upstream(http.StatusUnauthorized))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream_error", body.Error)
	assert.Contains(t, body.Message, "upstream returned status 401")
}

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/auth"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/service"
)

// AdminHandler serves registration, login and the current-admin lookup.
type AdminHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAdminHandler(authService *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: authService, logger: logger}
}

// RegisterResponse is the 201 body of POST /admin/register.
type RegisterResponse struct {
	Message string             `json:"message"`
	Data    *model.AdminPublic `json:"data"`
}

// TokenResponse is the 200 body of POST /admin/login. The field names follow
// the OAuth2 token response so standard clients can read it.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleRegister serves POST /admin/register.
func (h *AdminHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	admin, err := h.auth.Register(r.Context(), in.FullName, in.Email, in.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message: "Admin registered successfully",
		Data:    admin,
	})
}

// HandleLogin serves POST /admin/login.
//
// It accepts either a JSON body or an OAuth2 password-grant style form
// (application/x-www-form-urlencoded with username and password fields).
func (h *AdminHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in model.LoginRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeError(w, h.logger, apperror.ValidationFailed("", "invalid form body"))
			return
		}
		in.Username = r.PostForm.Get("username")
		in.Password = r.PostForm.Get("password")
		if err := validateStruct(&in); err != nil {
			writeError(w, h.logger, err)
			return
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// HandleMe serves GET /admin/me. RequireAuth must run first.
func (h *AdminHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("not authenticated"))
		return
	}

	admin, err := h.auth.Me(r.Context(), adminID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

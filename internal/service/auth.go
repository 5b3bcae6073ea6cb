package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/auth"
	"github.com/sakif/portfolio-api/internal/model"
	"github.com/sakif/portfolio-api/internal/repository"
)

// AuthService handles admin registration, login and token checks.
//
//	AdminHandler (HTTP) → AuthService → AdminRepository (DB)
//	                                  ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	admins    repository.AdminRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	admins repository.AdminRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		admins:    admins,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// normalizeEmail makes "  Ada@Example.COM " and "ada@example.com" the same login.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an admin account and returns its public view.
//
// A taken email fails with Conflict. As with projects, the lookup is only a
// fast path; the store's UNIQUE(email) constraint decides concurrent races.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*model.AdminPublic, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	_, err := s.admins.GetAdminByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict("admin", email)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	admin := &model.Admin{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating admin: %w", err)
	}

	s.logger.Info("admin registered", slog.String("adminID", admin.ID))
	return admin.Public(), nil
}

// Login checks the credentials and returns a signed access token.
// Unknown email → NotFound; wrong password → Forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("service/auth: looking up admin: %w", err)
	}

	if err := s.passwords.Verify(admin.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("login rejected", slog.String("adminID", admin.ID))
			return "", apperror.Forbidden("incorrect email or password")
		}
		return "", fmt.Errorf("service/auth: verifying password: %w", err)
	}

	token, err := s.tokens.Generate(admin.ID)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for admin %s: %w", admin.ID, err)
	}

	s.logger.Info("admin logged in", slog.String("adminID", admin.ID))
	return token, nil
}

// ValidateToken returns the admin ID carried by a token. Every failure,
// expired or otherwise, becomes Unauthorized; the message says which.
func (s *AuthService) ValidateToken(token string) (string, error) {
	id, err := s.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return "", apperror.Unauthorized("token expired")
		}
		return "", apperror.Unauthorized("invalid token")
	}
	return id, nil
}

// Me returns the public view of the admin with the given ID.
func (s *AuthService) Me(ctx context.Context, id string) (*model.AdminPublic, error) {
	if id == "" {
		return nil, apperror.Unauthorized("not authenticated")
	}

	admin, err := s.admins.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching admin %s: %w", id, err)
	}
	return admin.Public(), nil
}

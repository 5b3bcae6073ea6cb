// Package auth provides JWT access tokens, bcrypt password hashing and the
// bearer-token middleware that guards the admin write routes.
//
// AUTHENTICATION FLOW:
//  1. An admin registers with POST /admin/register (password stored as bcrypt hash)
//  2. POST /admin/login checks the password and returns a signed JWT
//  3. The client sends it back as "Authorization: Bearer <token>"
//  4. RequireAuth validates the token and puts the admin ID in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"<admin id>","iss":"portfolio-api","exp":1234567890}
//	- Signature: HMAC(header+"."+payload, secretKey)
//
// The server verifies the signature with the secret alone, no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "portfolio-api"

// DefaultTTL is how long an access token stays valid.
const DefaultTTL = 30 * time.Minute

// Validate failures fall into exactly one of these two buckets.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenService signs and verifies access tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
//
// algorithm is one of HS256, HS384, HS512 (empty means HS256). A ttl of zero
// or less falls back to DefaultTTL. The secret must be at least 16 characters;
// in production use something like JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported JWT algorithm %q", algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &TokenService{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// TTL reports the lifetime given to tokens from Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate creates and signs a token for subject (the admin ID).
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithDuration(subject, s.ttl)
}

// GenerateWithDuration creates a token with a custom lifetime. Tests use a
// negative duration to get an already-expired token.
func (s *TokenService) GenerateWithDuration(subject string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	signed, err := jwt.NewWithClaims(s.method, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token and returns its subject.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - signature matches the secret
//   - exp is present and in the future
//   - iss is "portfolio-api"
//   - alg is exactly the configured one (blocks "none" and algorithm confusion)
//
// An expired token yields ErrTokenExpired. Anything else yields ErrTokenInvalid.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if !token.Valid || c.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}

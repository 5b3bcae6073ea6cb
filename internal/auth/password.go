package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production. Each increment
// doubles the hashing time; 12 is roughly 250ms on current hardware.
const DefaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated, so Hash rejects it instead.
const maxPasswordBytes = 72

// ErrPasswordMismatch means the password does not match the stored hash.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and verifies admin passwords with bcrypt.
//
// The cost is a field so tests can run at bcrypt.MinCost (4) instead of 12.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService using cost. Values outside
// bcrypt's accepted range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash returns a self-contained bcrypt hash, e.g.
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//	 ^   ^  ^
//	 |   |  22-char salt followed by the 31-char hash
//	 |   cost
//	 version
//
// Salt and cost travel inside the string, so one column is enough to store it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil if plaintext matches hash and ErrPasswordMismatch if it
// does not. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for new hashes.
const defaultCost = 12

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService hashes and verifies the admin password with bcrypt.
//
// The hash is produced once with the hash-password command and stored in
// TRUTH_DARE_ADMIN_PASSWORD_HASH; the plaintext is never kept.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests use bcrypt.MinCost (4) to stay fast.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes plaintext. The output embeds salt and cost:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("auth: password must not be empty")
	}
	if len(plaintext) > 72 {
		// bcrypt would silently truncate.
		return "", errors.New("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrInvalidPassword when
// it does not. Any other error means hash itself is unusable.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

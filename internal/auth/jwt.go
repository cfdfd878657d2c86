// Package auth issues and checks the credentials guarding the admin endpoints.
//
// ADMIN FLOW:
//  1. POST /admin/login with the admin password
//  2. The password is checked against ADMIN_PASSWORD_HASH (bcrypt)
//  3. The server answers with a signed JWT (subject "admin")
//  4. Later calls send it as "Authorization: Bearer <jwt>"; RequireAdmin
//     verifies it before the handler runs
//
// Tokens are HS256 and stateless: the secret alone verifies them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is stamped into every token and required on validation.
	Issuer = "truthdare-api"

	// AdminSubject is the subject of tokens granting admin rights.
	AdminSubject = "admin"

	// DefaultTokenTTL is the lifetime of a token from Generate.
	DefaultTokenTTL = time.Hour
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Example: TRUTH_DARE_ADMIN_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for subject valid for DefaultTokenTTL.
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithDuration(subject, DefaultTokenTTL)
}

// GenerateWithDuration signs a token for subject valid for d.
// A non-positive d yields a token that is already expired.
func (s *TokenService) GenerateWithDuration(subject string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a JWT and returns its subject.
//
// CHECKS:
//   - HS256 signature with our secret (other algorithms, "none" included, are rejected)
//   - exp present and in the future
//   - iss equals Issuer
//   - sub not empty
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return c.Subject, nil
}

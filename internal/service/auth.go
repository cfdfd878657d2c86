package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/truthdare/truthdare-api/internal/apperror"
	"github.com/truthdare/truthdare-api/internal/auth"
)

// AdminService exchanges the admin password for a short-lived bearer token.
//
//	AdminHandler (HTTP) -> AdminService -> PasswordService (bcrypt)
//	                                    -> TokenService (JWT)
//
// There is a single admin identity; its bcrypt hash comes from configuration.
type AdminService struct {
	tokens       *auth.TokenService
	passwords    *auth.PasswordService
	passwordHash string
	logger       *slog.Logger
	now          func() time.Time
}

// NewAdminService creates an AdminService checking passwords against
// passwordHash.
func NewAdminService(
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	passwordHash string,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		tokens:       tokens,
		passwords:    passwords,
		passwordHash: passwordHash,
		logger:       logger,
		now:          time.Now,
	}
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login verifies password and issues an admin token.
// A wrong or empty password is an apperror.ErrUnauthorized.
func (s *AdminService) Login(password string) (LoginResult, error) {
	if password == "" {
		return LoginResult{}, apperror.Unauthorized("password is required")
	}

	if err := s.passwords.Verify(s.passwordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("admin login rejected")
			return LoginResult{}, apperror.Unauthorized("invalid credentials")
		}
		// The configured hash itself is broken.
		return LoginResult{}, fmt.Errorf("service/admin: verifying password: %w", err)
	}

	issued := s.now()
	token, err := s.tokens.Generate(auth.AdminSubject)
	if err != nil {
		return LoginResult{}, fmt.Errorf("service/admin: generating token: %w", err)
	}

	s.logger.Info("admin logged in")
	return LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: issued.Add(auth.DefaultTokenTTL).UTC(),
	}, nil
}

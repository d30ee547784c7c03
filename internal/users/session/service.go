// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/visibles-org/visibles/internal/platform/apperr"
	"github.com/visibles-org/visibles/internal/platform/constants"
	"github.com/visibles-org/visibles/internal/platform/sec"
	"github.com/visibles-org/visibles/internal/platform/validate"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and parsing access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, role, sessionID string, timeToLive time.Duration) (string, error)

	// ParseToken validates a token's signature and standard claims.
	ParseToken(tokenString string) (*sec.AuthClaims, error)
}

// Credentials is the result of a successful login or registration.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// Service implements staff authentication use cases.
//
// # Login Failure Messaging
//
// Every credential failure reports the same generic message, whether the
// email is unknown or the password wrong, so the endpoint cannot be used to
// enumerate staff accounts.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(users UserRepository, sessions SessionRepository, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// errInvalidCredentials is the single message for every login failure.
func errInvalidCredentials() error {
	return apperr.Unauthorized("Invalid credentials")
}

// # Login Flow

/*
Login verifies credentials and opens a new sliding session window.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Credentials: Access token, initial expiry, and the account
  - error: apperr.Unauthorized on any credential failure
*/
func (service *Service) Login(context context.Context, email, password string) (*Credentials, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable on purpose.
		return nil, errInvalidCredentials()
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errInvalidCredentials()
	}

	credentials, err := service.openSession(context, user)
	if err != nil {
		return nil, err
	}

	service.logger.Info("session_opened",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return credentials, nil
}

/*
Register creates a viewer account and logs it straight in.

Description: New self-service accounts always start as [sec.RoleViewer];
staff roles are granted out of band. A known email reports a conflict.

Parameters:
  - context: context.Context
  - name: string
  - email: string
  - password: string

Returns:
  - *Credentials: Same shape as a successful login
  - error: Validation, apperr.Conflict, or persistence failures
*/
func (service *Service) Register(context context.Context, name, email, password string) (*Credentials, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	validator := &validate.Validator{}
	validator.
		Required(FieldName, name).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		MinLen(FieldPassword, password, 8)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("password_hash_failed: %w", err))
	}

	user, err := service.users.Create(context, &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         sec.RoleViewer,
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("account_registered", slog.String("user_id", user.ID))

	return service.openSession(context, user)
}

/*
Logout closes the session behind an access token. Idempotent: logging out an
already-dead session succeeds silently.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - error: Storage failures only
*/
func (service *Service) Logout(context context.Context, accessToken string) error {
	return service.sessions.Delete(context, sec.HashToken(accessToken))
}

/*
Current returns the account behind verified claims.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims

Returns:
  - *User: The live account record
  - error: apperr.NotFound if the account was removed since login
*/
func (service *Service) Current(context context.Context, claims *sec.AuthClaims) (*User, error) {
	return service.users.FindByID(context, claims.UserID)
}

// # Token Verification

/*
VerifyToken validates an access token and slides the session window.

Description: This is the middleware entry point, called on every
authenticated request. The signature check alone is not enough: the token is
only alive while its Redis record exists, and the very act of checking
pushes the record's expiry forward by the full window.

Parameters:
  - context: context.Context
  - tokenString: string

Returns:
  - *sec.AuthClaims: Verified claims
  - error: apperr.Unauthorized on any verification failure
*/
func (service *Service) VerifyToken(context context.Context, tokenString string) (*sec.AuthClaims, error) {
	claims, err := service.tokens.ParseToken(tokenString)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	record, err := service.sessions.Touch(context, sec.HashToken(tokenString), constants.SessionWindow)
	if err != nil {
		return nil, apperr.Unauthorized("Session has expired")
	}

	// A mismatched record means the key was somehow reused; treat as dead.
	if record.ID != claims.SessionID {
		return nil, apperr.Unauthorized("Session has expired")
	}

	return claims, nil
}

// # Seeding

/*
EnsureSeedAccounts creates the built-in demo staff accounts when absent.

Description: Runs at startup in development environments. Both accounts
share the operator-provided password hash; existing accounts are left
untouched.

Parameters:
  - context: context.Context
  - passwordHash: string (bcrypt hash from configuration)

Returns:
  - error: Persistence failures
*/
func (service *Service) EnsureSeedAccounts(context context.Context, passwordHash string) error {
	if passwordHash == "" {
		return nil
	}

	seeds := []*User{
		{Email: "admin@visibles.org", Name: "Demo Admin", Role: sec.RoleAdmin},
		{Email: "worker@visibles.org", Name: "Demo Social Worker", Role: sec.RoleSocialWorker},
	}

	for _, seed := range seeds {
		if _, err := service.users.FindByEmail(context, seed.Email); err == nil {
			continue
		}

		seed.PasswordHash = passwordHash
		if _, err := service.users.Create(context, seed); err != nil {
			return fmt.Errorf("seed_account_create_failed (%s): %w", seed.Email, err)
		}

		service.logger.Info("seed_account_created", slog.String("email", seed.Email))
	}

	return nil
}

// openSession issues a token and stores the matching Redis record.
func (service *Service) openSession(context context.Context, user *User) (*Credentials, error) {
	sessionID, err := sec.GenerateSecureToken(sessionIDBytes)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("session_id_generate_failed: %w", err))
	}

	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role), sessionID, accessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("access_token_generate_failed: %w", err))
	}

	record := Session{
		ID:        sessionID,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: time.Now(),
	}
	if err := service.sessions.Save(context, sec.HashToken(accessToken), record, constants.SessionWindow); err != nil {
		return nil, apperr.Internal(fmt.Errorf("session_save_failed: %w", err))
	}

	return &Credentials{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(constants.SessionWindow),
		User:        user,
	}, nil
}

package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftwise/shiftwise/internal/shared"
)

// CredentialsPort abstracts the credential lookup for the service.
type CredentialsPort interface {
	ByEmail(ctx context.Context, email string) (Credentials, error)
	Role(ctx context.Context, id uuid.UUID) (shared.Role, error)
}

// Service performs login and logout against the session store.
type Service struct {
	repo     CredentialsPort
	sessions *SessionStore
}

// NewService builds a Service.
func NewService(repo CredentialsPort, sessions *SessionStore) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// LoginResult is handed back to the client after authentication.
type LoginResult struct {
	Token  string      `json:"token"`
	UserID uuid.UUID   `json:"user_id"`
	Role   shared.Role `json:"role"`
}

// Login verifies the password and issues a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	creds, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	token, err := s.sessions.Issue(ctx, creds.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, UserID: creds.ID, Role: creds.Role}, nil
}

// Logout revokes the session behind a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Identify resolves a bearer token into a caller identity, re-reading the
// role so demotions take effect immediately.
func (s *Service) Identify(ctx context.Context, token string) (shared.Identity, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return shared.Identity{}, err
	}
	role, err := s.repo.Role(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The account was deleted out from under the session.
			_ = s.sessions.Revoke(ctx, token)
			return shared.Identity{}, ErrSessionNotFound
		}
		return shared.Identity{}, err
	}
	return shared.Identity{UserID: userID, Role: role}, nil
}

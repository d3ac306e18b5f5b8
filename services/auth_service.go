//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IAuthService interface {
	Register(req auth.RegisterRequest) (domain.Identity, error)
	Authenticate(req auth.LoginRequest) (AuthResult, error)
	InvalidateSession(ctx context.Context, username string) error
	CurrentIdentity(ctx context.Context) (domain.Identity, error)
	ListOnlineUsernames() []string
}

type AuthResult struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"user"`
}

type AuthService struct {
	users    repositories.IUserRepository
	tokens   auth.ITokenService
	presence contract.IPresenceRegistry
	log      *slog.Logger
}

func NewAuthService(users repositories.IUserRepository, tokens auth.ITokenService,
	presence contract.IPresenceRegistry, log *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, presence: presence, log: log}
}

// Register validates the request before any expensive hashing, then persists
// the identity. An existing username fails with errors.ErrUserAlreadyExists and
// leaves the stored record untouched.
func (s *AuthService) Register(req auth.RegisterRequest) (domain.Identity, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return domain.Identity{}, err
	}
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hashing failed: %w", err)
	}
	identity, err := s.users.CreateUser(req.Username, req.Email, hashedPassword)
	if err != nil {
		return domain.Identity{}, err
	}
	s.log.Info("User registered", "username", identity.Username, "user_id", identity.ID)
	return identity, nil
}

// Authenticate never tells an unknown username apart from a wrong password.
// It does not mark the user online: presence follows realtime connections only.
func (s *AuthService) Authenticate(req auth.LoginRequest) (AuthResult, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return AuthResult{}, errors.ErrInvalidCredentials
	}
	identity, err := s.users.GetUserByUsername(req.Username)
	if err != nil {
		if !errors.Is(err, errors.ErrUserNotFound) {
			s.log.Error("Unable to load user", "username", req.Username, "error", err)
		}
		return AuthResult{}, errors.ErrInvalidCredentials
	}
	match, err := auth.ComparePassword(req.Password, identity.PasswordHash)
	if err != nil || !match {
		return AuthResult{}, errors.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, Identity: identity}, nil
}

// InvalidateSession marks the identity offline. Issued tokens stay valid until they expire.
func (s *AuthService) InvalidateSession(_ context.Context, username string) error {
	if err := s.users.SetOnline(username, false); err != nil {
		return err
	}
	s.log.Info("User logged out", "username", username)
	return nil
}

func (s *AuthService) CurrentIdentity(ctx context.Context) (domain.Identity, error) {
	identity, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return domain.Identity{}, errors.ErrUnauthenticated
	}
	return identity, nil
}

func (s *AuthService) ListOnlineUsernames() []string {
	return s.presence.ListOnline()
}

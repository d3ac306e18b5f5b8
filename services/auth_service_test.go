package services_test

import (
	"context"
	"log/slog"
	"testing"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/runtime"
	"chat-relay/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (*services.AuthService, *mocks.MockIUserRepository, *mocks.MockITokenService, *runtime.PresenceRegistry) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := mocks.NewMockITokenService(ctrl)
	presence := runtime.NewPresenceRegistry()
	return services.NewAuthService(users, tokens, presence, slog.Default()), users, tokens, presence
}

func TestAuthService_Register(t *testing.T) {
	valid := auth.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "ComplexPass123!"}

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		svc, users, _, _ := newAuthService(t)
		created := domain.Identity{ID: 1, Username: "alice", Email: "alice@example.com"}

		// The repository receives a hash, never the plain password
		users.EXPECT().
			CreateUser("alice", "alice@example.com", gomock.Not(valid.Password)).
			Return(created, nil).
			Times(1)

		identity, err := svc.Register(valid)

		req.NoError(err)
		req.Equal(created, identity)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		weak := valid
		weak.Password = "simple"
		_, err := svc.Register(weak)

		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should fail with a validation error when username exists", func(t *testing.T) {
		req := require.New(t)
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().
			CreateUser("alice", "alice@example.com", gomock.Any()).
			Return(domain.Identity{}, errors.ErrUserAlreadyExists)

		_, err := svc.Register(valid)

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
		req.ErrorIs(err, errors.ErrValidation)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	hash, err := auth.HashPassword("ComplexPass123!")
	require.NoError(t, err)
	stored := domain.Identity{ID: 3, Username: "alice", PasswordHash: hash}

	t.Run("should issue a token with correct credentials", func(t *testing.T) {
		req := require.New(t)
		svc, users, tokens, presence := newAuthService(t)
		users.EXPECT().GetUserByUsername("alice").Return(stored, nil)
		tokens.EXPECT().Issue(stored).Return("signed", nil)

		res, err := svc.Authenticate(auth.LoginRequest{Username: "alice", Password: "ComplexPass123!"})

		req.NoError(err)
		req.Equal("signed", res.Token)
		req.Equal(stored, res.Identity)
		// Logging in does not make anyone present
		req.False(presence.IsOnline("alice"))
	})

	t.Run("should fail with wrong password", func(t *testing.T) {
		req := require.New(t)
		svc, users, tokens, _ := newAuthService(t)
		users.EXPECT().GetUserByUsername("alice").Return(stored, nil)
		tokens.EXPECT().Issue(gomock.Any()).Times(0)

		_, err := svc.Authenticate(auth.LoginRequest{Username: "alice", Password: "WrongPass123!"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail the same way for unknown users", func(t *testing.T) {
		req := require.New(t)
		svc, users, _, _ := newAuthService(t)
		users.EXPECT().GetUserByUsername("ghost").Return(domain.Identity{}, errors.ErrUserNotFound)

		_, err := svc.Authenticate(auth.LoginRequest{Username: "ghost", Password: "ComplexPass123!"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.NotErrorIs(err, errors.ErrUserNotFound)
	})
}

func TestAuthService_InvalidateSession(t *testing.T) {
	req := require.New(t)
	svc, users, _, _ := newAuthService(t)
	users.EXPECT().SetOnline("alice", false).Return(nil)

	req.NoError(svc.InvalidateSession(context.Background(), "alice"))
}

func TestAuthService_CurrentIdentity(t *testing.T) {
	req := require.New(t)
	svc, _, _, _ := newAuthService(t)

	_, err := svc.CurrentIdentity(context.Background())
	req.ErrorIs(err, errors.ErrUnauthenticated)

	alice := domain.Identity{ID: 1, Username: "alice"}
	identity, err := svc.CurrentIdentity(auth.WithPrincipal(context.Background(), alice))
	req.NoError(err)
	req.Equal(alice, identity)
}

func TestAuthService_ListOnlineUsernames(t *testing.T) {
	req := require.New(t)
	svc, _, _, presence := newAuthService(t)
	presence.SetOnline("bob", "c2")
	presence.SetOnline("alice", "c1")

	req.Equal([]string{"alice", "bob"}, svc.ListOnlineUsernames())
}

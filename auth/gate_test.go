package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

var alice = domain.Identity{ID: 7, Username: "alice", Email: "alice@example.com"}

// principalRecorder answers 200 and remembers the principal it saw.
func principalRecorder(seen *domain.Identity, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, *found = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestGate_Middleware(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		setup         func(r *http.Request)
		expect        func(tokens *mocks.MockITokenService, users *mocks.MockIUserRepository)
		wantPrincipal bool
	}{
		{
			name: "valid bearer installs principal",
			path: "/auth/current-user",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			expect: func(tokens *mocks.MockITokenService, users *mocks.MockIUserRepository) {
				tokens.EXPECT().Verify("good").Return(int64(7), nil)
				users.EXPECT().GetUserByID(int64(7)).Return(alice, nil)
			},
			wantPrincipal: true,
		},
		{
			name: "cookie is accepted when no header is sent",
			path: "/users/online",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
			},
			expect: func(tokens *mocks.MockITokenService, users *mocks.MockIUserRepository) {
				tokens.EXPECT().Verify("from-cookie").Return(int64(7), nil)
				users.EXPECT().GetUserByID(int64(7)).Return(alice, nil)
			},
			wantPrincipal: true,
		},
		{
			name:   "no credential stays anonymous",
			path:   "/users/online",
			setup:  func(r *http.Request) {},
			expect: func(*mocks.MockITokenService, *mocks.MockIUserRepository) {},
		},
		{
			name: "expired token stays anonymous",
			path: "/users/online",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer old")
			},
			expect: func(tokens *mocks.MockITokenService, users *mocks.MockIUserRepository) {
				tokens.EXPECT().Verify("old").Return(int64(0), errors.ErrTokenExpired)
			},
		},
		{
			name: "unknown user stays anonymous",
			path: "/users/online",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer orphan")
			},
			expect: func(tokens *mocks.MockITokenService, users *mocks.MockIUserRepository) {
				tokens.EXPECT().Verify("orphan").Return(int64(99), nil)
				users.EXPECT().GetUserByID(int64(99)).Return(domain.Identity{}, errors.ErrUserNotFound)
			},
		},
		{
			name: "public route is not inspected",
			path: "/auth/login",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			expect: func(*mocks.MockITokenService, *mocks.MockIUserRepository) {},
		},
		{
			name: "websocket prefix is public",
			path: "/ws",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			expect: func(*mocks.MockITokenService, *mocks.MockIUserRepository) {},
		},
		{
			name:   "preflight is public",
			method: http.MethodOptions,
			path:   "/users/online",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer good")
			},
			expect: func(*mocks.MockITokenService, *mocks.MockIUserRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			tokens := mocks.NewMockITokenService(ctrl)
			users := mocks.NewMockIUserRepository(ctrl)
			tt.expect(tokens, users)

			gate := auth.NewGate(tokens, users, auth.DefaultPublicRoutes(), slog.Default())
			var seen domain.Identity
			var found bool
			handler := gate.Middleware(principalRecorder(&seen, &found))

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			r := httptest.NewRequest(method, tt.path, nil)
			tt.setup(r)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			// The gate never rejects
			req.Equal(http.StatusOK, w.Code)
			req.Equal(tt.wantPrincipal, found)
			if tt.wantPrincipal {
				req.Equal(alice, seen)
			}
		})
	}
}

func TestRequirePrincipal(t *testing.T) {
	req := require.New(t)
	var seen domain.Identity
	var found bool
	handler := auth.RequirePrincipal(principalRecorder(&seen, &found))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/current-user", nil))
	req.Equal(http.StatusUnauthorized, w.Code)
	req.False(found)

	r := httptest.NewRequest(http.MethodGet, "/auth/current-user", nil)
	r = r.WithContext(auth.WithPrincipal(r.Context(), alice))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	req.Equal(http.StatusOK, w.Code)
	req.Equal(alice, seen)
}

func TestGate_UnaryInterceptor(t *testing.T) {
	handler := func(ctx context.Context, req any) (any, error) {
		return ctx, nil
	}
	protected := &grpc.UnaryServerInfo{FullMethod: "/chat.Admin/Inspect"}

	t.Run("should install principal from metadata", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		tokens := mocks.NewMockITokenService(ctrl)
		users := mocks.NewMockIUserRepository(ctrl)
		tokens.EXPECT().Verify("good").Return(int64(7), nil)
		users.EXPECT().GetUserByID(int64(7)).Return(alice, nil)

		gate := auth.NewGate(tokens, users, auth.DefaultPublicRoutes(), slog.Default())
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer good"))

		res, err := gate.UnaryInterceptor()(ctx, nil, protected, handler)
		req.NoError(err)
		identity, ok := auth.PrincipalFromContext(res.(context.Context))
		req.True(ok)
		req.Equal(alice, identity)
	})

	t.Run("should continue anonymous with invalid token", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		tokens := mocks.NewMockITokenService(ctrl)
		tokens.EXPECT().Verify("bad").Return(int64(0), errors.ErrTokenMalformed)

		gate := auth.NewGate(tokens, mocks.NewMockIUserRepository(ctrl), auth.DefaultPublicRoutes(), slog.Default())
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer bad"))

		res, err := gate.UnaryInterceptor()(ctx, nil, protected, handler)
		req.NoError(err)
		_, ok := auth.PrincipalFromContext(res.(context.Context))
		req.False(ok)
	})

	t.Run("should skip health checks", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		gate := auth.NewGate(mocks.NewMockITokenService(ctrl), mocks.NewMockIUserRepository(ctrl), auth.DefaultPublicRoutes(), slog.Default())
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer good"))

		_, err := gate.UnaryInterceptor()(ctx, nil,
			&grpc.UnaryServerInfo{FullMethod: grpc_health_v1.Health_Check_FullMethodName}, handler)
		req.NoError(err)
	})
}

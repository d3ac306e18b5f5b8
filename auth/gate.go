package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"chat-relay/domain"
	"chat-relay/repositories"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// CookieName is the cookie set at login and accepted when no header is sent.
const CookieName = "JWT"

const bearerPrefix = "Bearer "

// PublicRoutes lists paths the gate lets through without even looking for a token.
type PublicRoutes struct {
	Exact    []string
	Prefixes []string
}

func DefaultPublicRoutes() PublicRoutes {
	return PublicRoutes{
		Exact:    []string{"/auth/login", "/auth/signup", "/error", "/health", "/test", "/metrics"},
		Prefixes: []string{"/ws", "/api/public/"},
	}
}

// Map of gRPC methods served without resolving a principal.
var publicMethods = map[string]struct{}{
	grpc_health_v1.Health_Check_FullMethodName: {},
	grpc_health_v1.Health_Watch_FullMethodName: {},
}

// Gate resolves the caller's identity from a bearer token.
// It fails open: a missing, invalid or expired token, or an unknown user, leaves
// the request anonymous. Rejecting anonymous callers is left to the routes.
type Gate struct {
	tokens ITokenService
	users  repositories.IUserRepository
	public PublicRoutes
	log    *slog.Logger
}

func NewGate(tokens ITokenService, users repositories.IUserRepository, public PublicRoutes, log *slog.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, public: public, log: log}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.IsPublic(r) {
			next.ServeHTTP(w, r)
			return
		}
		if identity, ok := g.Authenticate(r); ok {
			r = r.WithContext(WithPrincipal(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) IsPublic(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	for _, path := range g.public.Exact {
		if r.URL.Path == path {
			return true
		}
	}
	for _, prefix := range g.public.Prefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// Authenticate resolves the identity carried by the request, header first, then cookie.
func (g *Gate) Authenticate(r *http.Request) (domain.Identity, bool) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(CookieName); err == nil {
			token = cookie.Value
		}
	}
	return g.Resolve(token)
}

// Resolve verifies the token and loads its identity.
func (g *Gate) Resolve(token string) (domain.Identity, bool) {
	if token == "" {
		return domain.Identity{}, false
	}
	userID, err := g.tokens.Verify(token)
	if err != nil {
		g.log.Debug("Token rejected, continuing anonymous", "error", err)
		return domain.Identity{}, false
	}
	identity, err := g.users.GetUserByID(userID)
	if err != nil {
		g.log.Debug("Token subject unknown, continuing anonymous", "user_id", userID, "error", err)
		return domain.Identity{}, false
	}
	return identity, true
}

// UnaryInterceptor applies the same fail-open policy to gRPC calls, reading the
// "authorization" metadata.
func (g *Gate) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, public := publicMethods[info.FullMethod]; public {
			return handler(ctx, req)
		}
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}
		values := md.Get("authorization")
		if len(values) == 0 {
			return handler(ctx, req)
		}
		if identity, ok := g.Resolve(bearerToken(values[0])); ok {
			ctx = WithPrincipal(ctx, identity)
		}
		return handler(ctx, req)
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"chat-relay/domain"
	"chat-relay/errors"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal installs the authenticated identity for the rest of the request.
func WithPrincipal(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, principalKey, identity)
}

func PrincipalFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(principalKey).(domain.Identity)
	return identity, ok
}

// RequirePrincipal answers 401 to anonymous requests.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": errors.ErrUnauthenticated.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

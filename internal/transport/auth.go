package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type actorKey struct{}

// ActorResolver resolves a caller account address from a bearer token.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (string, error)
}

// PassthroughResolver treats the bearer token itself as the account
// address. Used when auth is disabled, for local development.
type PassthroughResolver struct{}

func (PassthroughResolver) ResolveActor(_ context.Context, token string) (string, error) {
	return token, nil
}

// ActorFromContext returns the caller address from context, if present.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey{}).(string)
	return actor, ok
}

// WithActor stamps a caller address onto the context.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), token)
			if err != nil || actor == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

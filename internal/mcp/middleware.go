package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const actorKey contextKey = iota

// getActor extracts the caller account address from context.
func getActor(ctx context.Context) string {
	v, _ := ctx.Value(actorKey).(string)
	return v
}

// ActorResolver resolves a caller account address from a bearer token.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver ActorResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			token := bearerToken(req)
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			actor, err := resolver.ResolveActor(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			if actor == "" {
				return nil, fmt.Errorf("unauthorized: invalid bearer token")
			}

			ctx = context.WithValue(ctx, actorKey, actor)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware takes the bearer token itself as the caller address, or
// falls back to a default actor when no header is present (stdio). Local
// development only.
func noAuthMiddleware(defaultActor string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			actor := bearerToken(req)
			if actor == "" {
				actor = defaultActor
			}
			ctx = context.WithValue(ctx, actorKey, actor)
			return next(ctx, method, req)
		}
	}
}

func bearerToken(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	extra := req.GetExtra()
	if extra == nil || extra.Header == nil {
		return ""
	}
	auth := extra.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

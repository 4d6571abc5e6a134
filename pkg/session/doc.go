// Package session provides analytics.SessionProvider implementations.
//
// Tokens are looked up per scope. A scope identifies whose session is
// current (a user id, an installation, a tenant) and travels on the
// context; calls without a scope use DefaultScope.
//
//   - StaticProvider holds a single token in memory.
//   - RedisProvider reads tokens from Redis keys.
//   - CachedProvider puts an expiring LRU in front of another provider.
package session

import "context"

// DefaultScope is used when the context carries no scope
const DefaultScope = "current"

type scopeKey struct{}

// WithScope returns a context whose session lookups use scope
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the scope carried by ctx, or DefaultScope
func ScopeFromContext(ctx context.Context) string {
	if scope, ok := ctx.Value(scopeKey{}).(string); ok && scope != "" {
		return scope
	}
	return DefaultScope
}

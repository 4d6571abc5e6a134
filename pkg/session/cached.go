package session

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = time.Minute
)

// CachedProvider caches the tokens returned by another provider per scope.
// Lookup errors are not cached.
type CachedProvider struct {
	next  analytics.SessionProvider
	cache *lru.LRU[string, string]
}

var _ analytics.SessionProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps next. Non-positive size or ttl use the defaults.
func NewCachedProvider(next analytics.SessionProvider, size int, ttl time.Duration) *CachedProvider {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedProvider{
		next:  next,
		cache: lru.NewLRU[string, string](size, nil, ttl),
	}
}

// CurrentSessionToken returns the cached token of the context's scope,
// asking the wrapped provider on a miss
func (p *CachedProvider) CurrentSessionToken(ctx context.Context) (string, error) {
	scope := ScopeFromContext(ctx)
	if token, ok := p.cache.Get(scope); ok {
		return token, nil
	}

	token, err := p.next.CurrentSessionToken(ctx)
	if err != nil {
		return "", err
	}

	p.cache.Add(scope, token)
	return token, nil
}

// Invalidate drops the cached token of scope
func (p *CachedProvider) Invalidate(scope string) {
	p.cache.Remove(scope)
}

// Purge drops every cached token
func (p *CachedProvider) Purge() {
	p.cache.Purge()
}

// Len returns the number of cached scopes
func (p *CachedProvider) Len() int {
	return p.cache.Len()
}

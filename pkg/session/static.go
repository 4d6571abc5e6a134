package session

import (
	"context"
	"sync"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

// StaticProvider returns the same token for every scope. The token can be
// swapped at runtime, e.g. on login and logout.
type StaticProvider struct {
	mu    sync.RWMutex
	token string
}

var _ analytics.SessionProvider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider returning token. An empty token
// means no session.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// CurrentSessionToken returns a snapshot of the token
func (p *StaticProvider) CurrentSessionToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, nil
}

// SetToken replaces the token. Submissions already started keep the old one.
func (p *StaticProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

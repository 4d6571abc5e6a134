package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

// DefaultKeyPrefix namespaces session keys in Redis
const DefaultKeyPrefix = "parse:session:"

// RedisConfig configures a RedisProvider
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	KeyPrefix  string
	MaxRetries int
	PoolSize   int
}

// RedisProvider reads session tokens from Redis. The token of a scope is
// stored as a plain string at KeyPrefix+scope; a missing key means no session.
type RedisProvider struct {
	client *redis.Client
	prefix string
}

var _ analytics.SessionProvider = (*RedisProvider)(nil)

// NewRedisProvider connects to Redis and verifies the connection
func NewRedisProvider(ctx context.Context, cfg RedisConfig) (*RedisProvider, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisProviderFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisProviderFromClient wraps an existing client. An empty prefix
// means DefaultKeyPrefix.
func NewRedisProviderFromClient(client *redis.Client, prefix string) *RedisProvider {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisProvider{client: client, prefix: prefix}
}

// CurrentSessionToken returns the token stored for the context's scope
func (p *RedisProvider) CurrentSessionToken(ctx context.Context) (string, error) {
	token, err := p.client.Get(ctx, p.key(ScopeFromContext(ctx))).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return token, nil
}

// StoreToken saves token for scope. A zero ttl keeps it until removed.
func (p *RedisProvider) StoreToken(ctx context.Context, scope, token string, ttl time.Duration) error {
	return p.client.Set(ctx, p.key(scope), token, ttl).Err()
}

// RemoveToken deletes the token of scope
func (p *RedisProvider) RemoveToken(ctx context.Context, scope string) error {
	return p.client.Del(ctx, p.key(scope)).Err()
}

// Close closes the Redis client
func (p *RedisProvider) Close() error {
	return p.client.Close()
}

func (p *RedisProvider) key(scope string) string {
	return p.prefix + scope
}

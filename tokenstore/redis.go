// Package tokenstore holds TokenStore implementations backed by external services.
package tokenstore

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKey     = "session:token"
	defaultTimeout = 5 * time.Second
)

// Client is the subset of the go-redis client the store uses
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTokenStore keeps the bearer token in redis so several processes can
// share one session.
type RedisTokenStore struct {
	client Client
	key    string
	ttl    time.Duration
}

// Option customizes the redis store
type Option func(*RedisTokenStore)

// WithKey sets the redis key, defaults to "session:token"
func WithKey(key string) Option {
	return func(s *RedisTokenStore) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithTTL expires the stored token, zero keeps it until cleared
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisTokenStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisTokenStore creates a store over client
func NewRedisTokenStore(client Client, opts ...Option) *RedisTokenStore {
	s := &RedisTokenStore{
		client: client,
		key:    defaultKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Key returns the redis key the token lives under
func (s *RedisTokenStore) Key() string {
	return s.key
}

// Token returns the stored token, an empty string when none is stored
func (s *RedisTokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token from redis").
			WithMetadata(map[string]any{"key": s.key})
	}
	return token, nil
}

func (s *RedisTokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store token in redis").
			WithMetadata(map[string]any{"key": s.key})
	}
	return nil
}

func (s *RedisTokenStore) ClearToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete token from redis").
			WithMetadata(map[string]any{"key": s.key})
	}
	return nil
}

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to ping redis").
			WithMetadata(map[string]any{"addr": cfg.Addr})
	}

	return client, nil
}

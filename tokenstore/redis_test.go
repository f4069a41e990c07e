package tokenstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-session"
	"github.com/goliatone/go-session/tokenstore"
)

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisTokenStore_ImplementsTokenStore(t *testing.T) {
	var _ session.TokenStore = tokenstore.NewRedisTokenStore(newFakeRedis())
}

func TestRedisTokenStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	store := tokenstore.NewRedisTokenStore(fake, tokenstore.WithKey("tiffin:token"), tokenstore.WithTTL(time.Hour))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetToken(ctx, "abc"))
	assert.Equal(t, "abc", fake.values["tiffin:token"])
	assert.Equal(t, time.Hour, fake.ttls["tiffin:token"])

	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.ClearToken(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRedisTokenStore_DefaultKey(t *testing.T) {
	store := tokenstore.NewRedisTokenStore(newFakeRedis(), tokenstore.WithKey("  "))
	assert.Equal(t, "session:token", store.Key())
}

func TestRedisTokenStore_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := tokenstore.NewRedisTokenStore(fake)

	_, err := store.Token(ctx)
	assert.Error(t, err)
	assert.Error(t, store.SetToken(ctx, "abc"))
	assert.Error(t, store.ClearToken(ctx))
}

func TestConnectWrapsPingFailure(t *testing.T) {
	client, err := tokenstore.Connect(context.Background(), tokenstore.Config{
		Addr:    "127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Nil(t, client)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
	assert.Equal(t, "failed to ping redis", richErr.Message)
	assert.Equal(t, "127.0.0.1:1", richErr.Metadata["addr"])
}

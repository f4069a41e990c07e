package session_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-session"
)

var (
	_ session.TokenStore = (*session.MemoryTokenStore)(nil)
	_ session.TokenStore = (*session.FileTokenStore)(nil)
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryTokenStore()

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SetToken(ctx, "abc"))
	token, _ = store.Token(ctx)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.ClearToken(ctx))
	token, _ = store.Token(ctx)
	assert.Empty(t, token)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	store := session.NewFileTokenStore(path, "")

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "missing file reads as no token")

	require.NoError(t, store.SetToken(ctx, "abc"))

	reopened := session.NewFileTokenStore(path, session.DefaultTokenKey)
	token, err = reopened.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.ClearToken(ctx))
	token, _ = store.Token(ctx)
	assert.Empty(t, token)
	require.NoError(t, reopened.ClearToken(ctx))
}

func TestFileTokenStorePreservesOtherKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600))

	store := session.NewFileTokenStore(path, "token")
	require.NoError(t, store.SetToken(ctx, "abc"))
	require.NoError(t, store.ClearToken(ctx))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var values map[string]string
	require.NoError(t, json.Unmarshal(raw, &values))
	assert.Equal(t, map[string]string{"theme": "dark"}, values)
}

func TestFileTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	store := session.NewFileTokenStore(path, "token")
	_, err := store.Token(context.Background())
	assert.Error(t, err)
}

func TestBootstrapWithCorruptTokenFileIsUnauthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	ctrl, _ := newTestController(t, &MockCredentialAPI{}, session.NewFileTokenStore(path, "token"))
	ctrl.Bootstrap(context.Background())

	assert.Equal(t, session.StatusUnauthenticated, ctrl.Snapshot().Status)
}

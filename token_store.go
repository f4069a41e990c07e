package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenKey is the well known key the token is stored under
const DefaultTokenKey = "token"

// MemoryTokenStore keeps the token for the lifetime of the process
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore returns an empty in memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) SetToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// FileTokenStore persists the token in a small JSON key/value file,
// the command line analogue of browser local storage. Other keys in the
// file are preserved.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
	key  string
}

// NewFileTokenStore stores the token under key in the file at path
func NewFileTokenStore(path, key string) *FileTokenStore {
	if strings.TrimSpace(key) == "" {
		key = DefaultTokenKey
	}
	return &FileTokenStore{path: path, key: key}
}

// Path returns the backing file
func (f *FileTokenStore) Path() string {
	return f.path
}

func (f *FileTokenStore) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[f.key], nil
}

func (f *FileTokenStore) SetToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[f.key] = token
	return f.write(values)
}

func (f *FileTokenStore) ClearToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[f.key]; !ok {
		return nil
	}
	delete(values, f.key)
	return f.write(values)
}

func (f *FileTokenStore) read() (map[string]string, error) {
	values := map[string]string{}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token file")
	}

	if len(strings.TrimSpace(string(raw))) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token file is corrupt").
			WithMetadata(map[string]any{"path": f.path})
	}
	return values, nil
}

func (f *FileTokenStore) write(values map[string]string) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create token directory")
		}
	}

	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode token file")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write token file")
	}

	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to replace token file")
	}
	return nil
}

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	pathProfile = "/auth/profile"
	pathLogin   = "/auth/login"
	pathSignup  = "/auth/signup"

	maxResponseBytes = 1 << 20
)

// CredentialClient talks to the credential store over HTTP
type CredentialClient struct {
	baseURL string
	http    Doer
	logger  Logger
}

// ClientOption customizes the credential client
type ClientOption func(*CredentialClient)

// WithHTTPClient overrides the transport, tests inject httptest or in process doers.
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *CredentialClient) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithClientLogger sets the logger
func WithClientLogger(logger Logger) ClientOption {
	return func(c *CredentialClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCredentialClient creates a client for the store at cfg.GetBaseURL()
func NewCredentialClient(cfg Config, opts ...ClientOption) *CredentialClient {
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &CredentialClient{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// FetchProfile returns the user the token belongs to
func (c *CredentialClient) FetchProfile(ctx context.Context, token string) (User, error) {
	status, body, err := c.do(ctx, http.MethodGet, pathProfile, token, nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, newError(ErrAuthentication, serverMessage(body), nil, map[string]any{
			"operation": "profile",
			"status":    status,
		})
	}

	user, err := UnmarshalUser(body)
	if err != nil {
		return nil, newError(ErrMalformedResponse, "", err, map[string]any{"operation": "profile"})
	}
	return user, nil
}

// Login exchanges credentials for a token and the user
func (c *CredentialClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, pathLogin, "", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, newError(ErrAuthentication, firstNonEmpty(serverMessage(body), msgLoginFailed), nil, map[string]any{
			"operation": "login",
			"status":    status,
		})
	}

	return decodeAuthResult("login", body)
}

// Signup registers a user. Rejected payloads (400, 422) are validation errors,
// anything else is an authentication error.
func (c *CredentialClient) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, pathSignup, "", req)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		meta := map[string]any{
			"operation": "signup",
			"status":    status,
		}
		msg := firstNonEmpty(serverMessage(body), msgSignupFailed)
		if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
			return nil, newError(ErrValidation, msg, nil, meta)
		}
		return nil, newError(ErrAuthentication, msg, nil, meta)
	}

	return decodeAuthResult("signup", body)
}

// UpdateProfile sends patch and returns the fields the server echoed back
func (c *CredentialClient) UpdateProfile(ctx context.Context, token string, patch UserPatch) (UserPatch, error) {
	status, body, err := c.do(ctx, http.MethodPut, pathProfile, token, patch)
	if err != nil {
		return UserPatch{}, err
	}

	if !isSuccess(status) {
		return UserPatch{}, newError(ErrProfileUpdate, serverMessage(body), nil, map[string]any{
			"operation": "update_profile",
			"status":    status,
		})
	}

	var echoed UserPatch
	if len(bytes.TrimSpace(body)) == 0 {
		return echoed, nil
	}
	if err := json.Unmarshal(body, &echoed); err != nil {
		return UserPatch{}, newError(ErrMalformedResponse, "", err, map[string]any{"operation": "update_profile"})
	}
	return echoed, nil
}

func (c *CredentialClient) do(ctx context.Context, method, path, token string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request payload")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("credential store request failed", "method", method, "path", path, "error", err)
		return 0, nil, newError(ErrNetwork, "", err, map[string]any{
			"method": method,
			"path":   path,
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, newError(ErrNetwork, "", err, map[string]any{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
	}

	c.logger.Debug("credential store response", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

func decodeAuthResult(operation string, body []byte) (*AuthResult, error) {
	var result AuthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, newError(ErrMalformedResponse, "", err, map[string]any{"operation": operation})
	}
	return &result, nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// serverMessage extracts {message} (or {error}) from an error body
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return firstNonEmpty(eb.Message, eb.Error)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

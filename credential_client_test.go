package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-session"
)

type clientConfig struct {
	baseURL string
}

func (c clientConfig) GetBaseURL() string        { return c.baseURL }
func (c clientConfig) GetTimeout() time.Duration { return time.Second }
func (c clientConfig) GetTokenKey() string       { return session.DefaultTokenKey }
func (c clientConfig) GetRoutes() session.Routes { return session.DefaultRoutes() }

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *session.CredentialClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return session.NewCredentialClient(clientConfig{baseURL: srv.URL + "/api/"}, session.WithClientLogger(nopLogger{}))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestCredentialClientLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		writeJSON(w, http.StatusOK, `{"token":"tok","user":{"id":"c-1","role":"customer","name":"Ana"}}`)
	})

	result, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, "c-1", session.UserID(result.User))
}

func TestCredentialClientLoginRejected(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "server message", body: `{"message":"Invalid credentials"}`, message: "Invalid credentials"},
		{name: "error key", body: `{"error":"Account locked"}`, message: "Account locked"},
		{name: "no message", body: `<html>oops</html>`, message: "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, tt.body)
			})

			_, err := client.Login(context.Background(), "ana@example.com", "wrong")
			require.Error(t, err)
			assert.True(t, session.IsAuthenticationError(err))
			assert.Equal(t, tt.message, session.Message(err))

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, http.StatusUnauthorized, richErr.Metadata["status"])
		})
	}
}

func TestCredentialClientLoginMalformedSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"token":"tok"}`)
	})

	_, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.True(t, session.IsMalformedResponseError(err))
}

func TestCredentialClientNetworkFailure(t *testing.T) {
	client := session.NewCredentialClient(clientConfig{baseURL: "http://store"},
		session.WithClientLogger(nopLogger{}),
		session.WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})),
	)

	_, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.True(t, session.IsNetworkError(err))
}

func TestCredentialClientSignupStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		validation bool
	}{
		{name: "bad request is validation", status: http.StatusBadRequest, validation: true},
		{name: "unprocessable is validation", status: http.StatusUnprocessableEntity, validation: true},
		{name: "conflict is authentication", status: http.StatusConflict},
		{name: "server error is authentication", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/auth/signup", r.URL.Path)
				writeJSON(w, tt.status, `{}`)
			})

			_, err := client.Signup(context.Background(), validCustomerSignup())
			require.Error(t, err)
			assert.Equal(t, tt.validation, session.IsValidationError(err))
			assert.Equal(t, !tt.validation, session.IsAuthenticationError(err))
			assert.Equal(t, "Signup failed", session.Message(err))
		})
	}
}

func TestCredentialClientFetchProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/auth/profile", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"_id":"k-1","role":"chef","experience":"3"}`)
	})

	u, err := client.FetchProfile(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, session.RoleChef, u.Role())
	assert.Equal(t, "k-1", session.UserID(u))

	_, err = client.FetchProfile(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, session.IsAuthenticationError(err))
	assert.Equal(t, "Token expired", session.Message(err))
}

func TestCredentialClientUpdateProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"kitchenName": "New"}, body)

		writeJSON(w, http.StatusOK, `{"kitchenName":"New","updatedAt":"2024-03-01T10:00:00Z"}`)
	})

	echoed, err := client.UpdateProfile(context.Background(), "tok", session.UserPatch{KitchenName: session.Ptr("New")})
	require.NoError(t, err)
	require.NotNil(t, echoed.KitchenName)
	assert.Equal(t, "New", *echoed.KitchenName)
	require.NotNil(t, echoed.UpdatedAt)
}

func TestCredentialClientUpdateProfileEmptyAndRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	echoed, err := client.UpdateProfile(context.Background(), "tok", session.UserPatch{Name: session.Ptr("x")})
	require.NoError(t, err)
	assert.True(t, echoed.IsEmpty())

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"Phone is invalid"}`)
	})
	_, err = client.UpdateProfile(context.Background(), "tok", session.UserPatch{Phone: session.Ptr("1")})
	require.Error(t, err)
	assert.True(t, session.IsProfileUpdateError(err))
	assert.Equal(t, "Phone is invalid", session.Message(err))
}

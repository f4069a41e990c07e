package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetTokenKey() string
	GetRoutes() Routes
}

// TokenStore persists the opaque bearer credential between runs.
// Implementations never parse the token.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Navigator moves the consumer to a surface, e.g. a route in a UI shell.
type Navigator interface {
	Navigate(ctx context.Context, destination string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(ctx context.Context, destination string)

// Navigate satisfies the Navigator interface.
func (f NavigatorFunc) Navigate(ctx context.Context, destination string) {
	if f != nil {
		f(ctx, destination)
	}
}

// CredentialAPI is the contract the controller needs from the credential store.
type CredentialAPI interface {
	FetchProfile(ctx context.Context, token string) (User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	UpdateProfile(ctx context.Context, token string, patch UserPatch) (UserPatch, error)
}

// Doer executes HTTP requests, *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthResult is the credential store answer to login and signup
type AuthResult struct {
	Token string
	User  User
}

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) {}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println("[ERR] SESSION " + formatLine(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println("[WRN] SESSION " + formatLine(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println("[INF] SESSION " + formatLine(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println("[DBG] SESSION " + formatLine(msg, args...))
}

func formatLine(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(msg, "\n"))
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		var val any = "[MISSING]"
		if i+1 < len(args) {
			val = args[i+1]
		}
		fmt.Fprintf(&b, " %s=%v", key, val)
	}
	return b.String()
}

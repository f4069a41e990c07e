package session_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	session "github.com/goliatone/go-session"
)

// MockCredentialAPI implements session.CredentialAPI
type MockCredentialAPI struct {
	mock.Mock
}

func (m *MockCredentialAPI) FetchProfile(ctx context.Context, token string) (session.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(session.User)
	return u, args.Error(1)
}

func (m *MockCredentialAPI) Login(ctx context.Context, email, password string) (*session.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*session.AuthResult)
	return r, args.Error(1)
}

func (m *MockCredentialAPI) Signup(ctx context.Context, req session.SignupRequest) (*session.AuthResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*session.AuthResult)
	return r, args.Error(1)
}

func (m *MockCredentialAPI) UpdateProfile(ctx context.Context, token string, patch session.UserPatch) (session.UserPatch, error) {
	args := m.Called(ctx, token, patch)
	p, _ := args.Get(0).(session.UserPatch)
	return p, args.Error(1)
}

// recordingNavigator collects every destination
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, destination string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, destination)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.paths))
	copy(out, n.paths)
	return out
}

// failingTokenStore fails every write
type failingTokenStore struct {
	token string
	err   error
}

func (f *failingTokenStore) Token(context.Context) (string, error)  { return f.token, nil }
func (f *failingTokenStore) SetToken(context.Context, string) error { return f.err }
func (f *failingTokenStore) ClearToken(context.Context) error       { return f.err }

// nopLogger keeps test output quiet
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newCustomer() *session.Customer {
	return &session.Customer{
		Account: session.Account{
			ID:      "c-1",
			Name:    "Ana",
			Email:   "ana@example.com",
			Phone:   "+14155552671",
			Address: "1 Main St",
		},
		Preferences: session.Preferences{
			DietaryRestrictions: []string{"vegan"},
			SpiceLevel:          session.SpiceMild,
		},
	}
}

func newChef() *session.Chef {
	return &session.Chef{
		Account: session.Account{
			ID:    "k-1",
			Name:  "Ravi",
			Email: "ravi@example.com",
			Phone: "+14155552672",
		},
		KitchenName:    "Ravi's Kitchen",
		KitchenAddress: "2 Market St",
		Specialties:    []string{"thali"},
		Experience:     session.Ptr(5.0),
		Rating:         4.5,
		TotalOrders:    12,
		IsVerified:     true,
	}
}

package session

import (
	"context"
	"strings"
	"sync"
)

// Controller drives the session: bootstrap, login, signup, logout and
// profile updates. It is the only writer of the session State and of the
// stored token.
//
// Every session mutating call takes a new epoch. When a call finishes after
// a newer call started, its outcome is dropped and it returns
// ErrOperationSuperseded, so the latest call always wins.
type Controller struct {
	state   *State
	client  CredentialAPI
	tokens  TokenStore
	router  RoleRouter
	nav     Navigator
	logger  Logger
	machine *stateMachine

	smOpts []StateMachineOption

	mu    sync.Mutex
	epoch uint64
}

// Option customizes the controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(logger Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNavigator sets where post authentication and logout navigation goes
func WithNavigator(nav Navigator) Option {
	return func(c *Controller) {
		if nav != nil {
			c.nav = nav
		}
	}
}

// WithRoutes overrides the navigation surfaces
func WithRoutes(routes Routes) Option {
	return func(c *Controller) {
		c.router = NewRoleRouter(routes)
	}
}

// WithTransitionHook registers a hook called after every status change
func WithTransitionHook(h TransitionHook) Option {
	return func(c *Controller) {
		if h != nil {
			c.smOpts = append(c.smOpts, WithStateMachineHook(h))
		}
	}
}

// WithState makes the controller drive an existing state container
func WithState(state *State) Option {
	return func(c *Controller) {
		if state != nil {
			c.state = state
		}
	}
}

// NewController creates a controller in the loading status. Call Bootstrap once at startup.
func NewController(client CredentialAPI, tokens TokenStore, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		tokens: tokens,
		router: NewRoleRouter(DefaultRoutes()),
		nav:    noopNavigator{},
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.state == nil {
		c.state = NewState()
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore()
	}

	c.machine = newStateMachine(c.state, append([]StateMachineOption{WithStateMachineLogger(c.logger)}, c.smOpts...)...)

	return c
}

// State returns the state container
func (c *Controller) State() *State {
	return c.state
}

// Snapshot returns the current session
func (c *Controller) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// User returns the current user, nil when unauthenticated
func (c *Controller) User() User {
	return c.state.User()
}

// Loading reports whether a session operation is in flight
func (c *Controller) Loading() bool {
	return c.state.Loading()
}

// Subscribe registers fn for every session change
func (c *Controller) Subscribe(fn Listener) func() {
	return c.state.Subscribe(fn)
}

// Router returns the navigation policy
func (c *Controller) Router() RoleRouter {
	return c.router
}

// Bootstrap restores the session from the stored token. It never fails and
// never navigates: any failure discards the token and leaves the session
// unauthenticated.
func (c *Controller) Bootstrap(ctx context.Context) {
	epoch, _, _ := c.begin(ctx, OperationBootstrap, StatusLoading, nil)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("session bootstrap could not read token", "error", err)
		token = ""
	}

	if token == "" {
		c.settle(ctx, OperationBootstrap, epoch, func() error {
			return c.machine.apply(ctx, OperationBootstrap, Snapshot{Status: StatusUnauthenticated})
		})
		return
	}

	user, err := c.client.FetchProfile(ctx, token)
	if err != nil {
		c.logger.Info("session bootstrap rejected, discarding token", "error", err)
		c.settle(ctx, OperationBootstrap, epoch, func() error {
			if cerr := c.tokens.ClearToken(ctx); cerr != nil {
				c.logger.Error("session bootstrap could not discard token", "error", cerr)
			}
			return c.machine.apply(ctx, OperationBootstrap, Snapshot{Status: StatusUnauthenticated})
		})
		return
	}

	c.settle(ctx, OperationBootstrap, epoch, func() error {
		return c.machine.apply(ctx, OperationBootstrap, Snapshot{
			User:   user,
			Status: StatusAuthenticated,
		})
	})
}

// Login authenticates with email and password. On success the token is
// stored, the session becomes authenticated and the user is routed by role.
// On failure the session is restored and an AuthenticationError is returned.
func (c *Controller) Login(ctx context.Context, email, password string) (User, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := req.Validate(); err != nil {
		return nil, validationError(err, "")
	}

	epoch, prev, _ := c.begin(ctx, OperationLogin, StatusLoading, nil)

	result, err := c.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, c.fail(ctx, OperationLogin, epoch, prev, authFailure(err, msgLoginFailed))
	}

	return c.completeAuth(ctx, OperationLogin, epoch, prev, result, msgLoginFailed)
}

// Signup registers a new user. The payload is validated before any network
// call; chefs must provide experience, specialties and a kitchen address.
func (c *Controller) Signup(ctx context.Context, req SignupRequest) (User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, validationError(err, "")
	}

	epoch, prev, _ := c.begin(ctx, OperationSignup, StatusLoading, nil)

	result, err := c.client.Signup(ctx, req)
	if err != nil {
		if !IsValidationError(err) {
			err = authFailure(err, msgSignupFailed)
		}
		return nil, c.fail(ctx, OperationSignup, epoch, prev, err)
	}

	return c.completeAuth(ctx, OperationSignup, epoch, prev, result, msgSignupFailed)
}

// Logout discards the token, clears the session and navigates to the login
// surface. It always succeeds from the caller's point of view.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	prev := c.state.Snapshot()

	if err := c.machine.apply(ctx, OperationLogout, Snapshot{
		User:    prev.User,
		Status:  StatusLoading,
		Loading: true,
	}); err != nil {
		c.logger.Error("session logout transition failed", "error", err)
	}

	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logger.Error("session logout could not discard token", "error", err)
	}

	if err := c.machine.apply(ctx, OperationLogout, Snapshot{Status: StatusUnauthenticated}); err != nil {
		c.logger.Error("session logout transition failed", "error", err)
	}
	c.mu.Unlock()

	c.nav.Navigate(ctx, c.router.LoginSurface())
}

// UpdateUser sends patch to the credential store and reconciles the answer
// with the current user. A rejected update leaves the session untouched.
func (c *Controller) UpdateUser(ctx context.Context, patch UserPatch) (User, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, newError(ErrNotAuthenticated, "", err, nil)
	}
	if token == "" {
		return nil, newError(ErrNotAuthenticated, "", nil, nil)
	}

	if err := patch.Validate(); err != nil {
		return nil, validationError(err, "")
	}

	epoch, prev, err := c.begin(ctx, OperationUpdate, "", func(s Snapshot) error {
		if !s.Authenticated() {
			return newError(ErrNotAuthenticated, "", nil, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	echoed, err := c.client.UpdateProfile(ctx, token, patch)
	if err != nil {
		if !IsNetworkError(err) && !IsProfileUpdateError(err) {
			err = newError(ErrProfileUpdate, "", err, nil)
		}
		return nil, c.fail(ctx, OperationUpdate, epoch, prev, err)
	}

	var next User
	err = c.current(epoch, func() error {
		next = Reconcile(prev.User, patch, echoed)
		return c.machine.apply(ctx, OperationUpdate, Snapshot{
			User:   next,
			Status: StatusAuthenticated,
		})
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("session profile updated", "user_id", UserID(next))
	return next, nil
}

// begin takes a new epoch and marks the session loading. An empty status
// keeps the current one. guard runs under the lock before anything changes.
func (c *Controller) begin(ctx context.Context, op Operation, status Status, guard func(Snapshot) error) (uint64, Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state.Snapshot()
	if guard != nil {
		if err := guard(prev); err != nil {
			return 0, prev, err
		}
	}

	c.epoch++

	next := prev
	next.Loading = true
	if status != "" {
		next.Status = status
	}
	if err := c.machine.apply(ctx, op, next); err != nil {
		c.logger.Error("session transition failed", "operation", op, "error", err)
	}

	return c.epoch, prev, nil
}

// current runs fn under the lock if no newer call started since epoch.
func (c *Controller) current(epoch uint64, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return newError(ErrOperationSuperseded, "", nil, map[string]any{
			"epoch":  epoch,
			"latest": c.epoch,
		})
	}

	return fn()
}

// settle is current for operations that never report errors
func (c *Controller) settle(ctx context.Context, op Operation, epoch uint64, fn func() error) {
	if err := c.current(epoch, fn); err != nil {
		if IsSupersededError(err) {
			c.logger.Debug("session result dropped", "operation", op)
			return
		}
		c.logger.Error("session transition failed", "operation", op, "error", err)
	}
}

// fail restores the pre-call session and returns cause, or the superseded
// error when a newer call owns the session.
func (c *Controller) fail(ctx context.Context, op Operation, epoch uint64, prev Snapshot, cause error) error {
	err := c.current(epoch, func() error {
		return c.machine.apply(ctx, op, restored(prev))
	})
	if err != nil {
		if IsSupersededError(err) {
			return newError(ErrOperationSuperseded, "", cause, map[string]any{"operation": op})
		}
		c.logger.Error("session restore failed", "operation", op, "error", err)
	}
	return cause
}

func (c *Controller) completeAuth(ctx context.Context, op Operation, epoch uint64, prev Snapshot, result *AuthResult, fallback string) (User, error) {
	if result == nil || isNilUser(result.User) || strings.TrimSpace(result.Token) == "" {
		return nil, c.fail(ctx, op, epoch, prev, newError(ErrAuthentication, fallback,
			newError(ErrMalformedResponse, "", nil, nil),
			map[string]any{"cause": "malformed_response"},
		))
	}

	var restoreErr error
	err := c.current(epoch, func() error {
		if err := c.tokens.SetToken(ctx, result.Token); err != nil {
			restoreErr = c.machine.apply(ctx, op, restored(prev))
			return newError(ErrAuthentication, fallback, err, map[string]any{"cause": "token_store"})
		}
		return c.machine.apply(ctx, op, Snapshot{
			User:   result.User,
			Status: StatusAuthenticated,
		})
	})
	if restoreErr != nil {
		c.logger.Error("session restore failed", "operation", op, "error", restoreErr)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("session authenticated", "operation", op, "user_id", UserID(result.User), "role", result.User.Role())
	c.nav.Navigate(ctx, c.router.Destination(result.User))
	return result.User, nil
}

// restored is the pre-call session with loading cleared. A call that started
// during bootstrap falls back to the status implied by the user.
func restored(prev Snapshot) Snapshot {
	next := prev
	next.Loading = false
	if isNilUser(prev.User) {
		next.User = nil
		next.Status = StatusUnauthenticated
	} else {
		next.Status = StatusAuthenticated
	}
	return next
}

// authFailure reports any login or signup failure as an AuthenticationError,
// keeping the underlying error as source.
func authFailure(err error, fallback string) error {
	if IsAuthenticationError(err) {
		return err
	}

	meta := map[string]any{}
	switch {
	case IsNetworkError(err):
		meta["cause"] = "network"
	case IsMalformedResponseError(err):
		meta["cause"] = "malformed_response"
	default:
		meta["cause"] = "unknown"
	}
	return newError(ErrAuthentication, fallback, err, meta)
}

package session

import (
	"context"
)

// Operation names the controller call that drove a transition
type Operation string

const (
	OperationBootstrap Operation = "bootstrap"
	OperationLogin     Operation = "login"
	OperationSignup    Operation = "signup"
	OperationLogout    Operation = "logout"
	OperationUpdate    Operation = "update_user"
)

// TransitionContext is passed into hooks
type TransitionContext struct {
	Operation Operation
	From      Status
	To        Status
	User      User
}

// TransitionHook observes a committed transition. Errors are logged, the
// transition is not rolled back.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*stateMachine)

// WithStateMachineLogger overrides the logger used for hook failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *stateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithStateMachineHook adds a hook executed after every committed transition.
func WithStateMachineHook(h TransitionHook) StateMachineOption {
	return func(sm *stateMachine) {
		if h != nil {
			sm.hooks = append(sm.hooks, h)
		}
	}
}

type stateMachine struct {
	state       *State
	transitions map[Status]map[Status]struct{}
	hooks       []TransitionHook
	logger      Logger
}

func newStateMachine(state *State, opts ...StateMachineOption) *stateMachine {
	sm := &stateMachine{
		state: state,
		transitions: map[Status]map[Status]struct{}{
			StatusLoading: {
				StatusAuthenticated:   {},
				StatusUnauthenticated: {},
			},
			StatusUnauthenticated: {
				StatusLoading: {},
			},
			StatusAuthenticated: {
				StatusLoading:         {},
				StatusUnauthenticated: {},
			},
		},
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// apply validates the move to next.Status and publishes next.
func (sm *stateMachine) apply(ctx context.Context, op Operation, next Snapshot) error {
	from := sm.state.Snapshot().Status
	if next.Status == "" {
		return newError(ErrInvalidTransition, "", nil, map[string]any{
			"operation": op,
			"reason":    "target status is empty",
		})
	}

	if from != next.Status && !sm.canTransition(from, next.Status) {
		return newError(ErrInvalidTransition, "", nil, map[string]any{
			"operation": op,
			"from":      from,
			"to":        next.Status,
		})
	}

	sm.state.set(next)

	if from != next.Status {
		sm.runHooks(ctx, TransitionContext{
			Operation: op,
			From:      from,
			To:        next.Status,
			User:      next.User,
		})
	}

	return nil
}

func (sm *stateMachine) runHooks(ctx context.Context, tc TransitionContext) {
	for _, hook := range sm.hooks {
		if err := hook(ctx, tc); err != nil {
			sm.logger.Error("session transition hook failed",
				"operation", tc.Operation,
				"from", tc.From,
				"to", tc.To,
				"error", err,
			)
		}
	}
}

func (sm *stateMachine) canTransition(from, to Status) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

package session

import "context"

var controllerCtxKey = &contextKey{"session-controller"}

type contextKey struct {
	name string
}

// WithController sets the Controller in the given context
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, controllerCtxKey, c)
}

// ControllerFromContext finds the controller from the context.
func ControllerFromContext(ctx context.Context) (*Controller, bool) {
	raw, ok := ctx.Value(controllerCtxKey).(*Controller)
	return raw, ok && raw != nil
}

// UserFromContext returns the current session user, if any
func UserFromContext(ctx context.Context) (User, bool) {
	c, ok := ControllerFromContext(ctx)
	if !ok {
		return nil, false
	}
	u := c.User()
	return u, !isNilUser(u)
}

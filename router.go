package session

import "strings"

// Routes names the surfaces the session navigates to
type Routes struct {
	Kitchen string
	Home    string
	Login   string
}

// DefaultRoutes returns the marketplace surfaces
func DefaultRoutes() Routes {
	return Routes{
		Kitchen: "/chef",
		Home:    "/",
		Login:   "/login",
	}
}

// RoleRouter is the post authentication navigation policy. It holds no state.
type RoleRouter struct {
	routes Routes
}

// NewRoleRouter creates a router, empty routes fall back to DefaultRoutes
func NewRoleRouter(routes Routes) RoleRouter {
	def := DefaultRoutes()
	if strings.TrimSpace(routes.Kitchen) == "" {
		routes.Kitchen = def.Kitchen
	}
	if strings.TrimSpace(routes.Home) == "" {
		routes.Home = def.Home
	}
	if strings.TrimSpace(routes.Login) == "" {
		routes.Login = def.Login
	}
	return RoleRouter{routes: routes}
}

// Destination returns the kitchen surface for chefs and the landing
// surface for every other role.
func (r RoleRouter) Destination(u User) string {
	if !isNilUser(u) && u.Role() == RoleChef {
		return r.routes.Kitchen
	}
	return r.routes.Home
}

// LoginSurface is where logout sends the user
func (r RoleRouter) LoginSurface() string {
	return r.routes.Login
}

// Routes returns the configured surfaces
func (r RoleRouter) Routes() Routes {
	return r.routes
}

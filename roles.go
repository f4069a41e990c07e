package session

import "strings"

// Role is the discriminator of the User variant
type Role string

const (
	// RoleCustomer orders meals
	RoleCustomer Role = "customer"
	// RoleChef runs a kitchen and manages a menu
	RoleChef Role = "chef"
	// RoleAdmin operates the marketplace
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined roles
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleChef, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns every predefined role
func AllRoles() []Role {
	return []Role{
		RoleCustomer,
		RoleChef,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}

// SpiceLevel is a customer preference. The empty value means no preference.
type SpiceLevel string

const (
	SpiceMild   SpiceLevel = "mild"
	SpiceMedium SpiceLevel = "medium"
	SpiceHot    SpiceLevel = "hot"
)

// IsValid reports whether the level is one of mild, medium or hot
func (s SpiceLevel) IsValid() bool {
	switch s {
	case SpiceMild, SpiceMedium, SpiceHot:
		return true
	default:
		return false
	}
}

package session

import "time"

// Account is the record shared by every user variant
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// User is the tagged variant keyed on Role. It is implemented by
// *Customer, *Chef and *Admin only.
type User interface {
	Role() Role
	GetAccount() Account
	isUser()
}

// Preferences are the customer dining preferences
type Preferences struct {
	DietaryRestrictions []string   `json:"dietaryRestrictions"`
	SpiceLevel          SpiceLevel `json:"spiceLevel,omitempty"`
}

// Customer orders meals
type Customer struct {
	Account
	Preferences Preferences
}

// Chef runs a kitchen. Numeric fields are nil when the value was never supplied.
type Chef struct {
	Account
	KitchenName     string
	KitchenAddress  string
	Specialties     []string
	Experience      *float64
	MaxOrdersPerDay *float64
	DeliveryRadius  *float64
	Rating          float64
	TotalOrders     int
	IsVerified      bool
}

// Admin operates the marketplace
type Admin struct {
	Account
	Permissions []string
}

func (*Customer) Role() Role { return RoleCustomer }
func (*Chef) Role() Role     { return RoleChef }
func (*Admin) Role() Role    { return RoleAdmin }

func (c *Customer) GetAccount() Account { return c.Account }
func (c *Chef) GetAccount() Account     { return c.Account }
func (a *Admin) GetAccount() Account    { return a.Account }

func (*Customer) isUser() {}
func (*Chef) isUser()     {}
func (*Admin) isUser()    {}

// Ptr returns a pointer to v, handy for building patches
func Ptr[T any](v T) *T {
	return &v
}

// UserID returns the user id or an empty string for a nil user
func UserID(u User) string {
	if isNilUser(u) {
		return ""
	}
	return u.GetAccount().ID
}

func isNilUser(u User) bool {
	if u == nil {
		return true
	}
	switch v := u.(type) {
	case *Customer:
		return v == nil
	case *Chef:
		return v == nil
	case *Admin:
		return v == nil
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

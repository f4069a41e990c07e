package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wireUser is the flat camelCase JSON shape shared by users, patches and
// partial server responses. Every field is optional.
type wireUser struct {
	ID              *string          `json:"id,omitempty"`
	Role            *Role            `json:"role,omitempty"`
	Name            *string          `json:"name,omitempty"`
	Email           *string          `json:"email,omitempty"`
	Phone           *string          `json:"phone,omitempty"`
	Address         *string          `json:"address,omitempty"`
	CreatedAt       *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time       `json:"updatedAt,omitempty"`
	Preferences     *wirePreferences `json:"preferences,omitempty"`
	KitchenName     *string          `json:"kitchenName,omitempty"`
	KitchenAddress  *string          `json:"kitchenAddress,omitempty"`
	Specialties     *[]string        `json:"specialties,omitempty"`
	Experience      *float64         `json:"experience,omitempty"`
	MaxOrdersPerDay *float64         `json:"maxOrdersPerDay,omitempty"`
	DeliveryRadius  *float64         `json:"deliveryRadius,omitempty"`
	Rating          *float64         `json:"rating,omitempty"`
	TotalOrders     *int             `json:"totalOrders,omitempty"`
	IsVerified      *bool            `json:"isVerified,omitempty"`
	Permissions     *[]string        `json:"permissions,omitempty"`
}

type wirePreferences struct {
	DietaryRestrictions *[]string   `json:"dietaryRestrictions,omitempty"`
	SpiceLevel          *SpiceLevel `json:"spiceLevel,omitempty"`
}

// UnmarshalJSON accepts numbers encoded as JSON numbers or numeric strings,
// treats null and "" as absent and falls back to "_id" for the identifier.
func (w *wireUser) UnmarshalJSON(data []byte) error {
	type plain wireUser
	aux := struct {
		*plain
		MongoID         json.RawMessage `json:"_id"`
		CreatedAt       json.RawMessage `json:"createdAt"`
		UpdatedAt       json.RawMessage `json:"updatedAt"`
		Experience      json.RawMessage `json:"experience"`
		MaxOrdersPerDay json.RawMessage `json:"maxOrdersPerDay"`
		DeliveryRadius  json.RawMessage `json:"deliveryRadius"`
		Rating          json.RawMessage `json:"rating"`
		TotalOrders     json.RawMessage `json:"totalOrders"`
	}{plain: (*plain)(w)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if w.ID == nil && len(aux.MongoID) > 0 {
		var id string
		if json.Unmarshal(aux.MongoID, &id) == nil && id != "" {
			w.ID = &id
		}
	}

	if w.CreatedAt, err = parseTime("createdAt", aux.CreatedAt); err != nil {
		return err
	}
	if w.UpdatedAt, err = parseTime("updatedAt", aux.UpdatedAt); err != nil {
		return err
	}
	if w.Experience, err = parseNumber("experience", aux.Experience); err != nil {
		return err
	}
	if w.MaxOrdersPerDay, err = parseNumber("maxOrdersPerDay", aux.MaxOrdersPerDay); err != nil {
		return err
	}
	if w.DeliveryRadius, err = parseNumber("deliveryRadius", aux.DeliveryRadius); err != nil {
		return err
	}
	if w.Rating, err = parseNumber("rating", aux.Rating); err != nil {
		return err
	}

	total, err := parseNumber("totalOrders", aux.TotalOrders)
	if err != nil {
		return err
	}
	if total != nil {
		n := int(*total)
		w.TotalOrders = &n
	}

	if w.Preferences != nil && w.Preferences.SpiceLevel != nil && *w.Preferences.SpiceLevel == "" {
		w.Preferences.SpiceLevel = nil
	}

	return nil
}

func isNullOrEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseNumber only yields a value when a number was actually supplied.
func parseNumber(field string, raw json.RawMessage) (*float64, error) {
	if isNullOrEmpty(raw) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", field, s)
		}
		return &v, nil
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &v, nil
}

func parseTime(field string, raw json.RawMessage) (*time.Time, error) {
	if isNullOrEmpty(raw) || bytes.Equal(bytes.TrimSpace(raw), []byte(`""`)) {
		return nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &t, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optStrings(in []string) *[]string {
	if in == nil {
		return nil
	}
	out := cloneStrings(in)
	return &out
}

func accountToWire(a Account) wireUser {
	return wireUser{
		ID:        optString(a.ID),
		Name:      &a.Name,
		Email:     &a.Email,
		Phone:     &a.Phone,
		Address:   optString(a.Address),
		CreatedAt: optTime(a.CreatedAt),
		UpdatedAt: optTime(a.UpdatedAt),
	}
}

func userToWire(u User) wireUser {
	role := u.Role()
	w := accountToWire(u.GetAccount())
	w.Role = &role

	switch v := u.(type) {
	case *Customer:
		restrictions := cloneStrings(v.Preferences.DietaryRestrictions)
		if restrictions == nil {
			restrictions = []string{}
		}
		w.Preferences = &wirePreferences{DietaryRestrictions: &restrictions}
		if v.Preferences.SpiceLevel != "" {
			level := v.Preferences.SpiceLevel
			w.Preferences.SpiceLevel = &level
		}
	case *Chef:
		w.KitchenName = &v.KitchenName
		w.KitchenAddress = &v.KitchenAddress
		specialties := cloneStrings(v.Specialties)
		if specialties == nil {
			specialties = []string{}
		}
		w.Specialties = &specialties
		w.Experience = cloneFloat(v.Experience)
		w.MaxOrdersPerDay = cloneFloat(v.MaxOrdersPerDay)
		w.DeliveryRadius = cloneFloat(v.DeliveryRadius)
		w.Rating = &v.Rating
		w.TotalOrders = &v.TotalOrders
		w.IsVerified = &v.IsVerified
	case *Admin:
		permissions := cloneStrings(v.Permissions)
		if permissions == nil {
			permissions = []string{}
		}
		w.Permissions = &permissions
	}
	return w
}

func (w wireUser) account() Account {
	var a Account
	if w.ID != nil {
		a.ID = *w.ID
	}
	if w.Name != nil {
		a.Name = *w.Name
	}
	if w.Email != nil {
		a.Email = *w.Email
	}
	if w.Phone != nil {
		a.Phone = *w.Phone
	}
	if w.Address != nil {
		a.Address = *w.Address
	}
	if w.CreatedAt != nil {
		a.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		a.UpdatedAt = *w.UpdatedAt
	}
	return a
}

// toUser builds the variant selected by the role tag. Fields of other roles are dropped.
func (w wireUser) toUser() (User, error) {
	if w.Role == nil {
		return nil, fmt.Errorf("user role is missing")
	}

	role, ok := ParseRole(string(*w.Role))
	if !ok {
		return nil, fmt.Errorf("unknown user role %q", *w.Role)
	}

	switch role {
	case RoleCustomer:
		c := &Customer{Account: w.account()}
		c.Preferences.DietaryRestrictions = []string{}
		if w.Preferences != nil {
			if w.Preferences.DietaryRestrictions != nil {
				c.Preferences.DietaryRestrictions = cloneStrings(*w.Preferences.DietaryRestrictions)
			}
			if w.Preferences.SpiceLevel != nil {
				c.Preferences.SpiceLevel = *w.Preferences.SpiceLevel
			}
		}
		return c, nil
	case RoleChef:
		c := &Chef{
			Account:         w.account(),
			Specialties:     []string{},
			Experience:      cloneFloat(w.Experience),
			MaxOrdersPerDay: cloneFloat(w.MaxOrdersPerDay),
			DeliveryRadius:  cloneFloat(w.DeliveryRadius),
		}
		if w.KitchenName != nil {
			c.KitchenName = *w.KitchenName
		}
		if w.KitchenAddress != nil {
			c.KitchenAddress = *w.KitchenAddress
		}
		if w.Specialties != nil {
			c.Specialties = cloneStrings(*w.Specialties)
		}
		if w.Rating != nil {
			c.Rating = *w.Rating
		}
		if w.TotalOrders != nil {
			c.TotalOrders = *w.TotalOrders
		}
		if w.IsVerified != nil {
			c.IsVerified = *w.IsVerified
		}
		return c, nil
	default:
		a := &Admin{Account: w.account(), Permissions: []string{}}
		if w.Permissions != nil {
			a.Permissions = cloneStrings(*w.Permissions)
		}
		return a, nil
	}
}

// UnmarshalUser decodes a user from its flat JSON representation
func UnmarshalUser(data []byte) (User, error) {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return w.toUser()
}

// MarshalJSON encodes the customer with its role tag
func (c *Customer) MarshalJSON() ([]byte, error) {
	return json.Marshal(userToWire(c))
}

// MarshalJSON encodes the chef with its role tag
func (c *Chef) MarshalJSON() ([]byte, error) {
	return json.Marshal(userToWire(c))
}

// MarshalJSON encodes the admin with its role tag
func (a *Admin) MarshalJSON() ([]byte, error) {
	return json.Marshal(userToWire(a))
}

// UnmarshalJSON decodes a customer, the role tag must be absent or customer
func (c *Customer) UnmarshalJSON(data []byte) error {
	u, err := unmarshalAs(data, RoleCustomer)
	if err != nil {
		return err
	}
	*c = *u.(*Customer)
	return nil
}

// UnmarshalJSON decodes a chef, the role tag must be absent or chef
func (c *Chef) UnmarshalJSON(data []byte) error {
	u, err := unmarshalAs(data, RoleChef)
	if err != nil {
		return err
	}
	*c = *u.(*Chef)
	return nil
}

// UnmarshalJSON decodes an admin, the role tag must be absent or admin
func (a *Admin) UnmarshalJSON(data []byte) error {
	u, err := unmarshalAs(data, RoleAdmin)
	if err != nil {
		return err
	}
	*a = *u.(*Admin)
	return nil
}

func unmarshalAs(data []byte, role Role) (User, error) {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Role != nil && *w.Role != role {
		return nil, fmt.Errorf("expected role %q, got %q", role, *w.Role)
	}
	w.Role = &role
	return w.toUser()
}

type authEnvelope struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// UnmarshalJSON decodes the {token, user} login and signup answer
func (r *AuthResult) UnmarshalJSON(data []byte) error {
	var env authEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if strings.TrimSpace(env.Token) == "" {
		return fmt.Errorf("token is missing")
	}
	if isNullOrEmpty(env.User) {
		return fmt.Errorf("user is missing")
	}
	u, err := UnmarshalUser(env.User)
	if err != nil {
		return err
	}
	r.Token = env.Token
	r.User = u
	return nil
}

// MarshalJSON encodes the {token, user} answer
func (r AuthResult) MarshalJSON() ([]byte, error) {
	var user any
	if !isNilUser(r.User) {
		user = userToWire(r.User)
	}
	return json.Marshal(struct {
		Token string `json:"token"`
		User  any    `json:"user"`
	}{Token: r.Token, User: user})
}

package session

import (
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignupRequest carries the user fields minus id and timestamps, plus the password.
type SignupRequest struct {
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Password        string       `json:"password"`
	Phone           string       `json:"phone"`
	Role            Role         `json:"role"`
	Address         string       `json:"address,omitempty"`
	Preferences     *Preferences `json:"preferences,omitempty"`
	KitchenName     string       `json:"kitchenName,omitempty"`
	KitchenAddress  string       `json:"kitchenAddress,omitempty"`
	Specialties     []string     `json:"specialties,omitempty"`
	Experience      *float64     `json:"experience,omitempty"`
	MaxOrdersPerDay *float64     `json:"maxOrdersPerDay,omitempty"`
	DeliveryRadius  *float64     `json:"deliveryRadius,omitempty"`
	Permissions     []string     `json:"permissions,omitempty"`
}

// Validate will run validation rules. Chefs must also provide experience,
// at least one specialty and a kitchen address.
func (r SignupRequest) Validate() error {
	fields := []*validation.FieldRules{
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Phone, validation.Required),
		validation.Field(&r.Role, validation.Required, validation.In(RoleCustomer, RoleChef, RoleAdmin)),
		validation.Field(&r.MaxOrdersPerDay, validation.Min(0.0)),
		validation.Field(&r.DeliveryRadius, validation.Min(0.0)),
	}

	if r.Role == RoleChef {
		fields = append(fields,
			validation.Field(&r.Experience, validation.NotNil, validation.Min(0.0)),
			validation.Field(&r.Specialties, validation.Required),
			validation.Field(&r.KitchenAddress, validation.Required),
		)
	}

	if r.Preferences != nil && r.Preferences.SpiceLevel != "" {
		fields = append(fields,
			validation.Field(&r.Preferences, validation.By(validSpiceLevel)),
		)
	}

	return validation.ValidateStruct(&r, fields...)
}

func validSpiceLevel(value interface{}) error {
	prefs, ok := value.(*Preferences)
	if !ok || prefs == nil || prefs.SpiceLevel == "" {
		return nil
	}
	if !prefs.SpiceLevel.IsValid() {
		return fmt.Errorf("spice level must be one of mild, medium or hot")
	}
	return nil
}

// UnmarshalJSON accepts numeric strings for the numeric fields and a comma
// separated string for specialties, which is how form layers submit them.
func (r *SignupRequest) UnmarshalJSON(data []byte) error {
	type plain SignupRequest
	aux := struct {
		*plain
		Specialties     json.RawMessage `json:"specialties"`
		Experience      json.RawMessage `json:"experience"`
		MaxOrdersPerDay json.RawMessage `json:"maxOrdersPerDay"`
		DeliveryRadius  json.RawMessage `json:"deliveryRadius"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if r.Experience, err = parseNumber("experience", aux.Experience); err != nil {
		return err
	}
	if r.MaxOrdersPerDay, err = parseNumber("maxOrdersPerDay", aux.MaxOrdersPerDay); err != nil {
		return err
	}
	if r.DeliveryRadius, err = parseNumber("deliveryRadius", aux.DeliveryRadius); err != nil {
		return err
	}

	r.Specialties = nil
	if !isNullOrEmpty(aux.Specialties) {
		var list []string
		if err := json.Unmarshal(aux.Specialties, &list); err == nil {
			r.Specialties = list
		} else {
			var joined string
			if err := json.Unmarshal(aux.Specialties, &joined); err != nil {
				return fmt.Errorf("specialties: expected a list or a comma separated string")
			}
			r.Specialties = ParseSpecialties(joined)
		}
	}

	return nil
}

// ParseSpecialties splits a comma separated list, trimming blanks
func ParseSpecialties(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate will run validation rules. Only supplied fields are checked.
func (p UserPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&p.Phone, validation.NilOrNotEmpty),
		validation.Field(&p.Experience, validation.Min(0.0)),
		validation.Field(&p.MaxOrdersPerDay, validation.Min(0.0)),
		validation.Field(&p.DeliveryRadius, validation.Min(0.0)),
		validation.Field(&p.Preferences),
	)
}

// Validate will run validation rules
func (p PreferencesPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.SpiceLevel, validation.In(SpiceMild, SpiceMedium, SpiceHot)),
	)
}

// validationError turns ozzo errors into a ValidationError keeping the per field messages.
func validationError(err error, message string) error {
	if err == nil {
		return nil
	}

	meta := map[string]any{}
	if verrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		meta["fields"] = fields
	}

	if message == "" {
		message = err.Error()
	}

	return newError(ErrValidation, message, err, meta)
}

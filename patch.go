package session

import (
	"encoding/json"
	"time"
)

// UserPatch is a partial user. A nil pointer or nil slice means the field
// was not supplied. It is used both for update requests and for the
// possibly partial server response.
type UserPatch struct {
	Name            *string           `json:"name,omitempty"`
	Email           *string           `json:"email,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Address         *string           `json:"address,omitempty"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
	Preferences     *PreferencesPatch `json:"preferences,omitempty"`
	KitchenName     *string           `json:"kitchenName,omitempty"`
	KitchenAddress  *string           `json:"kitchenAddress,omitempty"`
	Specialties     []string          `json:"specialties,omitempty"`
	Experience      *float64          `json:"experience,omitempty"`
	MaxOrdersPerDay *float64          `json:"maxOrdersPerDay,omitempty"`
	DeliveryRadius  *float64          `json:"deliveryRadius,omitempty"`
	Permissions     []string          `json:"permissions,omitempty"`
}

// PreferencesPatch is the partial form of Preferences
type PreferencesPatch struct {
	DietaryRestrictions []string    `json:"dietaryRestrictions,omitempty"`
	SpiceLevel          *SpiceLevel `json:"spiceLevel,omitempty"`
}

// IsEmpty reports whether no field was supplied
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil &&
		p.UpdatedAt == nil && p.Preferences == nil && p.KitchenName == nil &&
		p.KitchenAddress == nil && p.Specialties == nil && p.Experience == nil &&
		p.MaxOrdersPerDay == nil && p.DeliveryRadius == nil && p.Permissions == nil
}

func (p UserPatch) toWire() wireUser {
	w := wireUser{
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		Address:         p.Address,
		UpdatedAt:       p.UpdatedAt,
		KitchenName:     p.KitchenName,
		KitchenAddress:  p.KitchenAddress,
		Specialties:     optStrings(p.Specialties),
		Experience:      p.Experience,
		MaxOrdersPerDay: p.MaxOrdersPerDay,
		DeliveryRadius:  p.DeliveryRadius,
		Permissions:     optStrings(p.Permissions),
	}
	if p.Preferences != nil {
		w.Preferences = &wirePreferences{
			DietaryRestrictions: optStrings(p.Preferences.DietaryRestrictions),
			SpiceLevel:          p.Preferences.SpiceLevel,
		}
	}
	return w
}

func (w wireUser) toPatch() UserPatch {
	p := UserPatch{
		Name:            w.Name,
		Email:           w.Email,
		Phone:           w.Phone,
		Address:         w.Address,
		UpdatedAt:       w.UpdatedAt,
		KitchenName:     w.KitchenName,
		KitchenAddress:  w.KitchenAddress,
		Experience:      w.Experience,
		MaxOrdersPerDay: w.MaxOrdersPerDay,
		DeliveryRadius:  w.DeliveryRadius,
	}
	if w.Specialties != nil {
		p.Specialties = cloneStrings(*w.Specialties)
	}
	if w.Permissions != nil {
		p.Permissions = cloneStrings(*w.Permissions)
	}
	if w.Preferences != nil {
		p.Preferences = &PreferencesPatch{SpiceLevel: w.Preferences.SpiceLevel}
		if w.Preferences.DietaryRestrictions != nil {
			p.Preferences.DietaryRestrictions = cloneStrings(*w.Preferences.DietaryRestrictions)
		}
	}
	return p
}

// MarshalJSON keeps an explicitly empty slice on the wire, so a patch can clear a list
func (p UserPatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.toWire())
}

// UnmarshalJSON accepts the same flexible encodings as a user
func (p *UserPatch) UnmarshalJSON(data []byte) error {
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = w.toPatch()
	return nil
}

// PatchFromUser returns a patch carrying every field of u
func PatchFromUser(u User) UserPatch {
	if isNilUser(u) {
		return UserPatch{}
	}
	return userToWire(u).toPatch()
}

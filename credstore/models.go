package credstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	session "github.com/goliatone/go-session"
)

// UserRecord is the stored user. Role specific columns stay at their zero
// value for other roles.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Role         string    `bun:"role,notnull"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Phone        string    `bun:"phone,notnull"`
	Address      string    `bun:"address"`

	DietaryRestrictions []string `bun:"dietary_restrictions,type:jsonb"`
	SpiceLevel          string   `bun:"spice_level"`

	KitchenName     string   `bun:"kitchen_name"`
	KitchenAddress  string   `bun:"kitchen_address"`
	Specialties     []string `bun:"specialties,type:jsonb"`
	Experience      *float64 `bun:"experience"`
	MaxOrdersPerDay *float64 `bun:"max_orders_per_day"`
	DeliveryRadius  *float64 `bun:"delivery_radius"`
	Rating          float64  `bun:"rating,notnull,default:0"`
	TotalOrders     int      `bun:"total_orders,notnull,default:0"`
	IsVerified      bool     `bun:"is_verified,notnull,default:false"`

	Permissions []string `bun:"permissions,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newUserRecord(req session.SignupRequest, passwordHash string, now time.Time) *UserRecord {
	rec := &UserRecord{
		ID:           uuid.New(),
		Role:         string(req.Role),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch req.Role {
	case session.RoleCustomer:
		rec.DietaryRestrictions = []string{}
		if req.Preferences != nil {
			if req.Preferences.DietaryRestrictions != nil {
				rec.DietaryRestrictions = append([]string{}, req.Preferences.DietaryRestrictions...)
			}
			rec.SpiceLevel = string(req.Preferences.SpiceLevel)
		}
	case session.RoleChef:
		rec.KitchenName = req.KitchenName
		rec.KitchenAddress = req.KitchenAddress
		rec.Specialties = append([]string{}, req.Specialties...)
		rec.Experience = req.Experience
		rec.MaxOrdersPerDay = req.MaxOrdersPerDay
		rec.DeliveryRadius = req.DeliveryRadius
	case session.RoleAdmin:
		rec.Permissions = append([]string{}, req.Permissions...)
	}

	return rec
}

func (r *UserRecord) account() session.Account {
	return session.Account{
		ID:        r.ID.String(),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToUser returns the session variant for the record's role
func (r *UserRecord) ToUser() session.User {
	switch session.Role(r.Role) {
	case session.RoleChef:
		return &session.Chef{
			Account:         r.account(),
			KitchenName:     r.KitchenName,
			KitchenAddress:  r.KitchenAddress,
			Specialties:     nonNil(r.Specialties),
			Experience:      r.Experience,
			MaxOrdersPerDay: r.MaxOrdersPerDay,
			DeliveryRadius:  r.DeliveryRadius,
			Rating:          r.Rating,
			TotalOrders:     r.TotalOrders,
			IsVerified:      r.IsVerified,
		}
	case session.RoleAdmin:
		return &session.Admin{
			Account:     r.account(),
			Permissions: nonNil(r.Permissions),
		}
	default:
		return &session.Customer{
			Account: r.account(),
			Preferences: session.Preferences{
				DietaryRestrictions: nonNil(r.DietaryRestrictions),
				SpiceLevel:          session.SpiceLevel(r.SpiceLevel),
			},
		}
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string{}, in...)
}

package credstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/hashid/pkg/hashid"

	session "github.com/goliatone/go-session"
)

// Service implements signup, login, profile fetch and profile update
type Service struct {
	users     *Users
	hasher    PasswordHasher
	tokens    *TokenService
	phones    *PhoneNormalizer
	useHashid bool
	debug     bool
	logger    session.Logger
	now       func() time.Time
}

// ServiceOption customizes the service
type ServiceOption func(*Service)

// WithServiceLogger sets the logger
func WithServiceLogger(logger session.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHashid derives user ids from the email instead of random UUIDs
func WithHashid(enabled bool) ServiceOption {
	return func(s *Service) {
		s.useHashid = enabled
	}
}

// WithDebug dumps incoming payloads, passwords excluded
func WithDebug(enabled bool) ServiceOption {
	return func(s *Service) {
		s.debug = enabled
	}
}

// NewService wires the store components
func NewService(users *Users, hasher PasswordHasher, tokens *TokenService, phones *PhoneNormalizer, opts ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		phones: phones,
		logger: nopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Signup registers a user and issues a token
func (s *Service) Signup(ctx context.Context, req session.SignupRequest) (res *session.AuthResult, err error) {
	defer func() {
		role := "unknown"
		if req.Role.IsValid() {
			role = string(req.Role)
		}
		SignupsTotal.WithLabelValues(role, outcome(err)).Inc()
	}()

	req.Email = normalizeEmail(req.Email)
	if verr := req.Validate(); verr != nil {
		return nil, invalidPayload(verr)
	}

	if s.debug {
		redacted := req
		redacted.Password = "[REDACTED]"
		s.logger.Debug("signup payload", "payload", print.MaybePrettyJSON(redacted))
	}

	phone, err := s.phones.Normalize(req.Phone)
	if err != nil {
		return nil, err
	}
	req.Phone = phone

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	rec := newUserRecord(req, hash, s.now().UTC())
	if s.useHashid {
		if id, herr := hashid.NewUUID(req.Email); herr == nil {
			rec.ID = id
		}
	}

	if rec, err = s.users.Create(ctx, rec); err != nil {
		return nil, err
	}

	user := rec.ToUser()
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", rec.ID.String(), "role", rec.Role)
	return &session.AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token
func (s *Service) Login(ctx context.Context, email, password string) (res *session.AuthResult, err error) {
	defer func() {
		LoginsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	email = normalizeEmail(email)
	if verr := (session.LoginRequest{Email: email, Password: password}).Validate(); verr != nil {
		return nil, invalidPayload(verr)
	}

	rec, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err = s.hasher.Compare(password, rec.PasswordHash); err != nil {
		return nil, err
	}

	user := rec.ToUser()
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", rec.ID.String())
	return &session.AuthResult{Token: token, User: user}, nil
}

// Profile returns the user with id
func (s *Service) Profile(ctx context.Context, id string) (session.User, error) {
	rec, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.ToUser(), nil
}

// UpdateProfile applies the supplied fields that belong to the user's role
// and returns only the fields it changed, plus updatedAt.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch session.UserPatch) (echo session.UserPatch, err error) {
	defer func() {
		ProfileUpdatesTotal.WithLabelValues(outcome(err)).Inc()
	}()

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if verr := patch.Validate(); verr != nil {
		return session.UserPatch{}, invalidPayload(verr)
	}

	if s.debug {
		s.logger.Debug("profile update payload", "user_id", id, "payload", print.MaybePrettyJSON(patch))
	}

	rec, err := s.users.GetByID(ctx, id)
	if err != nil {
		return session.UserPatch{}, err
	}

	u := &recordUpdate{}

	if patch.Phone != nil {
		phone, perr := s.phones.Normalize(*patch.Phone)
		if perr != nil {
			return session.UserPatch{}, perr
		}
		patch.Phone = &phone
	}

	if patch.Email != nil && *patch.Email != rec.Email {
		if _, lerr := s.users.GetByEmail(ctx, *patch.Email); lerr == nil {
			return session.UserPatch{}, ErrEmailTaken
		} else if !errors.Is(lerr, ErrUserNotFound) {
			return session.UserPatch{}, lerr
		}
	}

	u.str(&rec.Name, patch.Name, "name", &u.echo.Name)
	u.str(&rec.Email, patch.Email, "email", &u.echo.Email)
	u.str(&rec.Phone, patch.Phone, "phone", &u.echo.Phone)
	u.str(&rec.Address, patch.Address, "address", &u.echo.Address)

	switch session.Role(rec.Role) {
	case session.RoleCustomer:
		if patch.Preferences != nil {
			prefs := &session.PreferencesPatch{}
			if u.list(&rec.DietaryRestrictions, patch.Preferences.DietaryRestrictions, "dietary_restrictions") {
				prefs.DietaryRestrictions = nonNil(rec.DietaryRestrictions)
			}
			if patch.Preferences.SpiceLevel != nil && string(*patch.Preferences.SpiceLevel) != rec.SpiceLevel {
				rec.SpiceLevel = string(*patch.Preferences.SpiceLevel)
				u.columns = append(u.columns, "spice_level")
				level := session.SpiceLevel(rec.SpiceLevel)
				prefs.SpiceLevel = &level
			}
			if prefs.DietaryRestrictions != nil || prefs.SpiceLevel != nil {
				u.echo.Preferences = prefs
			}
		}
	case session.RoleChef:
		u.str(&rec.KitchenName, patch.KitchenName, "kitchen_name", &u.echo.KitchenName)
		u.str(&rec.KitchenAddress, patch.KitchenAddress, "kitchen_address", &u.echo.KitchenAddress)
		if u.list(&rec.Specialties, patch.Specialties, "specialties") {
			u.echo.Specialties = nonNil(rec.Specialties)
		}
		u.num(&rec.Experience, patch.Experience, "experience", &u.echo.Experience)
		u.num(&rec.MaxOrdersPerDay, patch.MaxOrdersPerDay, "max_orders_per_day", &u.echo.MaxOrdersPerDay)
		u.num(&rec.DeliveryRadius, patch.DeliveryRadius, "delivery_radius", &u.echo.DeliveryRadius)
	}

	if len(u.columns) == 0 {
		return u.echo, nil
	}

	rec.UpdatedAt = s.now().UTC()
	u.columns = append(u.columns, "updated_at")
	updatedAt := rec.UpdatedAt
	u.echo.UpdatedAt = &updatedAt

	if err = s.users.UpdateColumns(ctx, rec, u.columns...); err != nil {
		return session.UserPatch{}, err
	}

	s.logger.Info("profile updated", "user_id", id, "columns", fmt.Sprint(u.columns))
	return u.echo, nil
}

// recordUpdate tracks changed columns and the fields to echo back
type recordUpdate struct {
	columns []string
	echo    session.UserPatch
}

func (u *recordUpdate) str(dst *string, v *string, column string, echo **string) {
	if v == nil || *v == *dst {
		return
	}
	*dst = *v
	u.columns = append(u.columns, column)
	changed := *v
	*echo = &changed
}

func (u *recordUpdate) num(dst **float64, v *float64, column string, echo **float64) {
	if v == nil || (*dst != nil && **dst == *v) {
		return
	}
	val := *v
	*dst = &val
	u.columns = append(u.columns, column)
	changed := val
	*echo = &changed
}

func (u *recordUpdate) list(dst *[]string, v []string, column string) bool {
	if v == nil || slices.Equal(*dst, v) {
		return false
	}
	*dst = append([]string{}, v...)
	u.columns = append(u.columns, column)
	return true
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

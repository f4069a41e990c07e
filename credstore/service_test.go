package credstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-session"
)

func testConfig() *Config {
	return &Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "tiffin-credstore",
		JWTAudience:          []string{"tiffin"},
		TokenExpirationHours: 1,
		DatabaseDSN:          ":memory:",
		PhoneRegion:          "US",
		BcryptCost:           4,
	}
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *TokenService) {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig()

	db, err := Open(ctx, cfg.DatabaseDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens := NewTokenService(cfg, nil)
	service := NewService(NewUsers(db), NewBcryptHasher(cfg.BcryptCost), tokens, NewPhoneNormalizer(cfg.PhoneRegion), opts...)
	return service, tokens
}

func customerSignup() session.SignupRequest {
	return session.SignupRequest{
		Name:     "Ana",
		Email:    "Ana@Example.com ",
		Password: "secret",
		Phone:    "(415) 555-2671",
		Role:     session.RoleCustomer,
		Address:  "1 Main St",
		Preferences: &session.Preferences{
			DietaryRestrictions: []string{"vegan"},
			SpiceLevel:          session.SpiceMild,
		},
	}
}

func chefSignup() session.SignupRequest {
	return session.SignupRequest{
		Name:           "Ravi",
		Email:          "ravi@example.com",
		Password:       "secret",
		Phone:          "+14155552672",
		Role:           session.RoleChef,
		KitchenName:    "Ravi's Kitchen",
		KitchenAddress: "2 Market St",
		Specialties:    []string{"thali"},
		Experience:     session.Ptr(5.0),
	}
}

func TestServiceSignupNormalizesAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	service, tokens := newTestService(t)

	res, err := service.Signup(ctx, customerSignup())
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	customer, ok := res.User.(*session.Customer)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", customer.Email)
	assert.Equal(t, "+14155552671", customer.Phone)
	assert.Equal(t, []string{"vegan"}, customer.Preferences.DietaryRestrictions)
	assert.Equal(t, session.SpiceMild, customer.Preferences.SpiceLevel)
	assert.NotEmpty(t, customer.ID)

	claims, err := tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, claims.UserID())
	assert.Equal(t, session.RoleCustomer, claims.Role())
}

func TestServiceSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.Signup(ctx, customerSignup())
	require.NoError(t, err)

	_, err = service.Signup(ctx, customerSignup())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestServiceSignupValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	req := chefSignup()
	req.Experience = nil
	_, err := service.Signup(ctx, req)
	require.Error(t, err)
	assert.True(t, session.IsValidationError(err))

	req = customerSignup()
	req.Phone = "123"
	_, err = service.Signup(ctx, req)
	require.Error(t, err)
	assert.True(t, session.IsValidationError(err))
}

func TestServiceSignupWithHashidIsDeterministic(t *testing.T) {
	ctx := context.Background()
	first, _ := newTestService(t, WithHashid(true))
	second, _ := newTestService(t, WithHashid(true))

	a, err := first.Signup(ctx, customerSignup())
	require.NoError(t, err)
	b, err := second.Signup(ctx, customerSignup())
	require.NoError(t, err)

	assert.Equal(t, session.UserID(a.User), session.UserID(b.User))
}

func TestServiceLogin(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.Signup(ctx, chefSignup())
	require.NoError(t, err)

	res, err := service.Login(ctx, "RAVI@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, session.RoleChef, res.User.Role())
	assert.NotEmpty(t, res.Token)

	_, err = service.Login(ctx, "ravi@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "", "")
	assert.True(t, session.IsValidationError(err))
}

func TestServiceUpdateProfileEchoesChangedFields(t *testing.T) {
	ctx := context.Background()
	updatedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	service, _ := newTestService(t, WithClock(func() time.Time { return updatedAt }))

	res, err := service.Signup(ctx, chefSignup())
	require.NoError(t, err)
	id := session.UserID(res.User)

	echo, err := service.UpdateProfile(ctx, id, session.UserPatch{
		KitchenName:    session.Ptr("Ravi's Kitchen"),
		KitchenAddress: session.Ptr("3 Mill St"),
		Specialties:    []string{"thali", "dosa"},
		Experience:     session.Ptr(6.0),
		Permissions:    []string{"ignored"},
	})
	require.NoError(t, err)

	assert.Nil(t, echo.KitchenName, "unchanged fields are not echoed")
	require.NotNil(t, echo.KitchenAddress)
	assert.Equal(t, "3 Mill St", *echo.KitchenAddress)
	assert.Equal(t, []string{"thali", "dosa"}, echo.Specialties)
	require.NotNil(t, echo.Experience)
	assert.Equal(t, 6.0, *echo.Experience)
	assert.Nil(t, echo.Permissions)
	require.NotNil(t, echo.UpdatedAt)
	assert.True(t, updatedAt.Equal(*echo.UpdatedAt))

	u, err := service.Profile(ctx, id)
	require.NoError(t, err)
	chef := u.(*session.Chef)
	assert.Equal(t, "3 Mill St", chef.KitchenAddress)
	assert.Equal(t, []string{"thali", "dosa"}, chef.Specialties)
	assert.Equal(t, 6.0, *chef.Experience)
}

func TestServiceUpdateProfileWithoutChanges(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	res, err := service.Signup(ctx, customerSignup())
	require.NoError(t, err)

	echo, err := service.UpdateProfile(ctx, session.UserID(res.User), session.UserPatch{
		Name: session.Ptr("Ana"),
	})
	require.NoError(t, err)
	assert.True(t, echo.IsEmpty())
}

func TestServiceUpdateProfileCustomerPreferencesAndPhone(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	res, err := service.Signup(ctx, customerSignup())
	require.NoError(t, err)
	id := session.UserID(res.User)

	echo, err := service.UpdateProfile(ctx, id, session.UserPatch{
		Phone: session.Ptr("415 555 2672"),
		Preferences: &session.PreferencesPatch{
			SpiceLevel: session.Ptr(session.SpiceHot),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, echo.Phone)
	assert.Equal(t, "+14155552672", *echo.Phone)
	require.NotNil(t, echo.Preferences)
	assert.Equal(t, session.SpiceHot, *echo.Preferences.SpiceLevel)
	assert.Nil(t, echo.Preferences.DietaryRestrictions)

	_, err = service.UpdateProfile(ctx, id, session.UserPatch{Phone: session.Ptr("123")})
	assert.True(t, session.IsValidationError(err))
}

func TestServiceUpdateProfileEmailConflicts(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.Signup(ctx, chefSignup())
	require.NoError(t, err)
	res, err := service.Signup(ctx, customerSignup())
	require.NoError(t, err)

	_, err = service.UpdateProfile(ctx, session.UserID(res.User), session.UserPatch{Email: session.Ptr("ravi@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = service.UpdateProfile(ctx, session.UserID(res.User), session.UserPatch{Email: session.Ptr(" RAVI@example.com ")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = service.UpdateProfile(ctx, "not-a-uuid", session.UserPatch{Name: session.Ptr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestServiceTrimsEmailBeforeValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	req := customerSignup()
	req.Email = "  Ana@Example.com\t"
	res, err := service.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", res.User.GetAccount().Email)

	_, err = service.Login(ctx, " ANA@example.com ", req.Password)
	require.NoError(t, err)

	echo, err := service.UpdateProfile(ctx, session.UserID(res.User), session.UserPatch{
		Email: session.Ptr(" Ana.New@Example.com "),
	})
	require.NoError(t, err)
	require.NotNil(t, echo.Email)
	assert.Equal(t, "ana.new@example.com", *echo.Email)

	profile, err := service.Profile(ctx, session.UserID(res.User))
	require.NoError(t, err)
	assert.Equal(t, "ana.new@example.com", profile.GetAccount().Email)

	echo, err = service.UpdateProfile(ctx, session.UserID(res.User), session.UserPatch{
		Email: session.Ptr("ANA.NEW@example.com "),
	})
	require.NoError(t, err)
	assert.True(t, echo.IsEmpty())
}

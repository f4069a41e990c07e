package session_test

import (
	"encoding/json"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	session "github.com/goliatone/go-session"
)

func validCustomerSignup() session.SignupRequest {
	return session.SignupRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "secret",
		Phone:    "+14155552671",
		Role:     session.RoleCustomer,
	}
}

func errorFields(t *testing.T, err error) []string {
	t.Helper()
	verrs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	return fields
}

func TestSignupRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *session.SignupRequest)
		invalid []string
	}{
		{
			name:   "valid customer",
			mutate: func(r *session.SignupRequest) {},
		},
		{
			name:    "missing email and bad role",
			mutate:  func(r *session.SignupRequest) { r.Email = ""; r.Role = "waiter" },
			invalid: []string{"email", "role"},
		},
		{
			name:    "malformed email",
			mutate:  func(r *session.SignupRequest) { r.Email = "ana" },
			invalid: []string{"email"},
		},
		{
			name:    "negative delivery radius",
			mutate:  func(r *session.SignupRequest) { r.DeliveryRadius = session.Ptr(-1.0) },
			invalid: []string{"deliveryRadius"},
		},
		{
			name: "chef missing kitchen fields",
			mutate: func(r *session.SignupRequest) {
				r.Role = session.RoleChef
			},
			invalid: []string{"experience", "specialties", "kitchenAddress"},
		},
		{
			name: "complete chef with zero experience",
			mutate: func(r *session.SignupRequest) {
				r.Role = session.RoleChef
				r.Experience = session.Ptr(0.0)
				r.Specialties = []string{"thali"}
				r.KitchenAddress = "2 Market St"
			},
		},
		{
			name: "unknown spice level",
			mutate: func(r *session.SignupRequest) {
				r.Preferences = &session.Preferences{SpiceLevel: "volcanic"}
			},
			invalid: []string{"preferences"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCustomerSignup()
			tt.mutate(&req)

			err := req.Validate()
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ElementsMatch(t, tt.invalid, errorFields(t, err))
		})
	}
}

func TestSignupRequestUnmarshalFormEncodings(t *testing.T) {
	var req session.SignupRequest
	err := json.Unmarshal([]byte(`{
		"name": "Ravi",
		"email": "ravi@example.com",
		"password": "secret",
		"phone": "+14155552672",
		"role": "chef",
		"kitchenAddress": "2 Market St",
		"specialties": " thali, dosa ,, ",
		"experience": "4.5",
		"maxOrdersPerDay": 30
	}`), &req)
	require.NoError(t, err)

	assert.Equal(t, []string{"thali", "dosa"}, req.Specialties)
	require.NotNil(t, req.Experience)
	assert.Equal(t, 4.5, *req.Experience)
	require.NotNil(t, req.MaxOrdersPerDay)
	assert.Equal(t, 30.0, *req.MaxOrdersPerDay)
	assert.Nil(t, req.DeliveryRadius)
	assert.NoError(t, req.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"specialties":["a","b"]}`), &req))
	assert.Equal(t, []string{"a", "b"}, req.Specialties)

	assert.Error(t, json.Unmarshal([]byte(`{"experience":"many"}`), &session.SignupRequest{}))
}

func TestParseSpecialties(t *testing.T) {
	assert.Equal(t, []string{}, session.ParseSpecialties(""))
	assert.Equal(t, []string{"a", "b c"}, session.ParseSpecialties(" a , b c ,"))
}

func TestUserPatchValidate(t *testing.T) {
	assert.NoError(t, session.UserPatch{}.Validate())
	assert.NoError(t, session.UserPatch{Address: session.Ptr("")}.Validate(), "an address may be cleared")

	err := session.UserPatch{Name: session.Ptr("")}.Validate()
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"name"}, errorFields(t, err))

	err = session.UserPatch{
		Email:      session.Ptr("bad"),
		Experience: session.Ptr(-2.0),
	}.Validate()
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"email", "experience"}, errorFields(t, err))

	err = session.UserPatch{
		Preferences: &session.PreferencesPatch{SpiceLevel: session.Ptr(session.SpiceLevel("volcanic"))},
	}.Validate()
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"preferences"}, errorFields(t, err))
}

package session

// ProfileField names a field checked by the completeness rule
type ProfileField string

const (
	FieldAddress        ProfileField = "address"
	FieldPhone          ProfileField = "phone"
	FieldKitchenName    ProfileField = "kitchenName"
	FieldKitchenAddress ProfileField = "kitchenAddress"
	FieldSpecialties    ProfileField = "specialties"
	FieldExperience     ProfileField = "experience"
)

var customerRequired = []ProfileField{FieldAddress, FieldPhone}

var kitchenRequired = []ProfileField{
	FieldPhone,
	FieldKitchenName,
	FieldKitchenAddress,
	FieldSpecialties,
	FieldExperience,
}

// RequiredProfileFields returns the fields a role must fill in.
// Admins share the kitchen requirements.
func RequiredProfileFields(role Role) []ProfileField {
	var fields []ProfileField
	if role == RoleCustomer {
		fields = customerRequired
	} else {
		fields = kitchenRequired
	}
	out := make([]ProfileField, len(fields))
	copy(out, fields)
	return out
}

// MissingProfileFields lists the required fields of u that are absent,
// empty strings or empty sequences, in declaration order.
func MissingProfileFields(u User) []ProfileField {
	if isNilUser(u) {
		return nil
	}

	var missing []ProfileField
	for _, field := range RequiredProfileFields(u.Role()) {
		if !hasProfileField(u, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsProfileIncomplete reports whether any required field is missing.
// A nil user is not incomplete, there is no profile to complete.
func IsProfileIncomplete(u User) bool {
	return len(MissingProfileFields(u)) > 0
}

func hasProfileField(u User, field ProfileField) bool {
	account := u.GetAccount()
	chef, _ := u.(*Chef)

	switch field {
	case FieldAddress:
		return account.Address != ""
	case FieldPhone:
		return account.Phone != ""
	case FieldKitchenName:
		return chef != nil && chef.KitchenName != ""
	case FieldKitchenAddress:
		return chef != nil && chef.KitchenAddress != ""
	case FieldSpecialties:
		return chef != nil && len(chef.Specialties) > 0
	case FieldExperience:
		return chef != nil && chef.Experience != nil
	}
	return false
}

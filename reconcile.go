package session

// Reconcile computes the next session user after a successful profile update.
//
// Every field resolves independently to the first supplied value among the
// server response, the patch that was sent and the previous record. The id,
// role and creation time always come from previous. Patch and server fields
// that belong to another role are ignored. The result never shares slices or
// pointers with its inputs. A nil previous yields nil.
func Reconcile(previous User, patch, server UserPatch) User {
	if isNilUser(previous) {
		return nil
	}

	account := reconcileAccount(previous.GetAccount(), patch, server)

	switch prev := previous.(type) {
	case *Customer:
		return &Customer{
			Account:     account,
			Preferences: reconcilePreferences(prev.Preferences, patch.Preferences, server.Preferences),
		}
	case *Chef:
		return &Chef{
			Account:         account,
			KitchenName:     deref(first(server.KitchenName, patch.KitchenName, &prev.KitchenName)),
			KitchenAddress:  deref(first(server.KitchenAddress, patch.KitchenAddress, &prev.KitchenAddress)),
			Specialties:     cloneStrings(firstSlice(server.Specialties, patch.Specialties, prev.Specialties)),
			Experience:      cloneFloat(first(server.Experience, patch.Experience, prev.Experience)),
			MaxOrdersPerDay: cloneFloat(first(server.MaxOrdersPerDay, patch.MaxOrdersPerDay, prev.MaxOrdersPerDay)),
			DeliveryRadius:  cloneFloat(first(server.DeliveryRadius, patch.DeliveryRadius, prev.DeliveryRadius)),
			Rating:          prev.Rating,
			TotalOrders:     prev.TotalOrders,
			IsVerified:      prev.IsVerified,
		}
	case *Admin:
		return &Admin{
			Account:     account,
			Permissions: cloneStrings(firstSlice(server.Permissions, patch.Permissions, prev.Permissions)),
		}
	}

	return nil
}

func reconcileAccount(prev Account, patch, server UserPatch) Account {
	next := Account{
		ID:        prev.ID,
		CreatedAt: prev.CreatedAt,
	}
	next.Name = deref(first(server.Name, patch.Name, &prev.Name))
	next.Email = deref(first(server.Email, patch.Email, &prev.Email))
	next.Phone = deref(first(server.Phone, patch.Phone, &prev.Phone))
	next.Address = deref(first(server.Address, patch.Address, &prev.Address))
	next.UpdatedAt = deref(first(server.UpdatedAt, patch.UpdatedAt, &prev.UpdatedAt))
	return next
}

func reconcilePreferences(prev Preferences, patch, server *PreferencesPatch) Preferences {
	var serverRestrictions, patchRestrictions []string
	var serverLevel, patchLevel *SpiceLevel
	if server != nil {
		serverRestrictions = server.DietaryRestrictions
		serverLevel = server.SpiceLevel
	}
	if patch != nil {
		patchRestrictions = patch.DietaryRestrictions
		patchLevel = patch.SpiceLevel
	}

	restrictions := cloneStrings(firstSlice(serverRestrictions, patchRestrictions, prev.DietaryRestrictions))
	if restrictions == nil {
		restrictions = []string{}
	}

	var level SpiceLevel
	for _, candidate := range []*SpiceLevel{serverLevel, patchLevel, &prev.SpiceLevel} {
		if candidate != nil && *candidate != "" {
			level = *candidate
			break
		}
	}

	return Preferences{DietaryRestrictions: restrictions, SpiceLevel: level}
}

func first[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstSlice[T any](values ...[]T) []T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

package model

// AdminRegistry holds the two authorization tiers. Both tiers may run the
// announcement flow; super-admin membership is what startup validation
// requires at least one of.
type AdminRegistry struct {
	superAdmins map[int64]struct{}
	admins      map[int64]struct{}
}

func NewAdminRegistry(superAdminIDs, adminIDs []int64) *AdminRegistry {
	r := &AdminRegistry{
		superAdmins: make(map[int64]struct{}, len(superAdminIDs)),
		admins:      make(map[int64]struct{}, len(adminIDs)),
	}
	for _, id := range superAdminIDs {
		r.superAdmins[id] = struct{}{}
	}
	for _, id := range adminIDs {
		r.admins[id] = struct{}{}
	}
	return r
}

// IsAuthorized reports whether the user may compose and send announcements.
func (r *AdminRegistry) IsAuthorized(userID int64) bool {
	if _, ok := r.superAdmins[userID]; ok {
		return true
	}
	_, ok := r.admins[userID]
	return ok
}

func (r *AdminRegistry) SuperAdminCount() int { return len(r.superAdmins) }

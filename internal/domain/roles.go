package domain

type Role string

const (
	// User is the default role for every account after the first.
	RoleUser Role = "user"
	// Admin is granted to the first account ever registered and may revoke sessions.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleUser):
		return 1
	case string(RoleAdmin):
		return 2
	default:
		return 0
	}
}

// RoleForNewUser picks the role of an account being created given how many exist.
func RoleForNewUser(existing int64) Role {
	if existing == 0 {
		return RoleAdmin
	}
	return RoleUser
}

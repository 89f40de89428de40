package auth

const (
	RoleEmployee      = "Employee"
	RoleManager       = "Manager"
	RoleAdministrator = "Administrator"
)

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleAdministrator:
		return true
	}
	return false
}

// CanApprove reports whether a role may appear on the approval side of an
// attendance or leave decision at all. Per-subject authority is decided by
// CanActOn.
func CanApprove(role string) bool {
	return role == RoleManager || role == RoleAdministrator
}

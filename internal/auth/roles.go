package auth

// Role represents a user role.
type Role string

const (
	// RoleViewer may read session state, series and archived roasts.
	RoleViewer Role = "viewer"
	// RoleOperator may additionally run sessions and record readings.
	RoleOperator Role = "operator"
	// RoleAdmin may do everything, including bulk exports.
	RoleAdmin Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleOperator, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies the required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleOperator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

package auth

// IsValidRole checks if the role is one of the predefined roles
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole resolves the role carried by a token. A missing role means the
// session belongs to a regular user.
func ParseRole(raw string) (UserRole, bool) {
	if raw == "" {
		return RoleUser, true
	}
	return raw, IsValidRole(raw)
}

// GetAllRoles returns all predefined roles in privilege order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RoleAdmin,
	}
}

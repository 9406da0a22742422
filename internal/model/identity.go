package model

// Identity is the verified caller of a request, decoded from its token
type Identity struct {
	UserID   uint
	Email    string
	Role     Role
	TenantID uint
}

// IsAdmin reports whether the caller holds the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

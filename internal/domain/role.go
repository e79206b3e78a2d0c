package domain

// Role constants define the allowed user roles.
const (
	RoleCustomer = "CUSTOMER"
	RoleVendor   = "VENDOR"
	RoleAdmin    = "ADMIN"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleCustomer, RoleVendor, RoleAdmin}
}

// IsValidRole checks whether the given string is a valid user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

package domain

// Role constants define the closed set of user roles.
const (
	RoleAdmin    = "admin"
	RoleSeller   = "seller"
	RoleCustomer = "customer"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []string {
	return []string{RoleAdmin, RoleSeller, RoleCustomer}
}

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

package domain

// Role is the closed set of roles an account can hold.
type Role string

const (
	RoleAgent         Role = "Agent"
	RoleManager       Role = "Manager"
	RoleHR            Role = "HR"
	RoleAdminSecurity Role = "AdminSecurity"
)

var knownRoles = map[Role]struct{}{
	RoleAgent:         {},
	RoleManager:       {},
	RoleHR:            {},
	RoleAdminSecurity: {},
}

// ParseRole converts s to a Role. Matching is exact; "hr" is not "HR".
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

func (r Role) String() string { return string(r) }

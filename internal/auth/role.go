package auth

import "fmt"

// Role is the closed set of privilege levels a user can hold. Unknown role
// strings are rejected at write time, never silently accepted.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCompanyOwner Role = "company_owner"
	RoleAgent        Role = "agent"
)

// ParseRole converts a raw role string into a Role, rejecting anything
// outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCompanyOwner, RoleAgent:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

func (r Role) String() string {
	return string(r)
}

package auth

import "fmt"

// Capability identifies an operation class from the authorization table.
type Capability int

const (
	// ManageCompanies covers company create/list/update/delete.
	ManageCompanies Capability = iota
	// ManageUsers covers user create/list/update/delete.
	ManageUsers
	// ManageFarmers covers farmer create/list/update/delete.
	ManageFarmers
	// RecordTransactions covers seed distribution and harvest entries.
	RecordTransactions
	// ManageReceipts covers receipt generation and viewing.
	ManageReceipts
)

// Allowed reports whether a role qualifies for the capability. The roles
// are not a linear hierarchy; each operation class lists its roles
// explicitly.
func (c Capability) Allowed(r Role) bool {
	switch c {
	case ManageCompanies, ManageUsers:
		return r == RoleAdmin
	case ManageFarmers, RecordTransactions, ManageReceipts:
		return r == RoleAdmin || r == RoleCompanyOwner || r == RoleAgent
	}
	return false
}

// Caller is the authenticated identity a policy decision is made for.
type Caller struct {
	Role      Role
	CompanyID uint
}

// IsAdmin reports whether the caller bypasses tenancy restrictions.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Authorize gates an operation: first the role check for the capability,
// then, for non-admin callers, the tenancy check against the target
// company. Admin acts across all companies.
func Authorize(caller Caller, capability Capability, targetCompanyID uint) error {
	if !capability.Allowed(caller.Role) {
		return fmt.Errorf("%w: role %q lacks required privileges", ErrForbidden, caller.Role)
	}
	if caller.IsAdmin() {
		return nil
	}
	if caller.CompanyID != targetCompanyID {
		return fmt.Errorf("%w: company %d is outside the caller's company", ErrForbidden, targetCompanyID)
	}
	return nil
}

// AuthorizeRole runs only the role check, for operations that are not
// scoped to a single company (company management, cross-company listings).
func AuthorizeRole(caller Caller, capability Capability) error {
	if !capability.Allowed(caller.Role) {
		return fmt.Errorf("%w: role %q lacks required privileges", ErrForbidden, caller.Role)
	}
	return nil
}

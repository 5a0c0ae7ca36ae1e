// Package security provides the role model and authorization capabilities
// checked at the request boundary.
package security

import (
	"fmt"

	"pharmaledger/internal/core/apperror"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	case "":
		return RoleAdmin, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown role %q", s)).WithDetail("field", "role")
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// Capability names an action guarded by role.
type Capability string

const (
	// CapManageUsers covers registering and listing users.
	CapManageUsers Capability = "users.manage"
	// CapArchiveCompanies covers archive/restore of shared company records.
	CapArchiveCompanies Capability = "companies.archive"
	// CapLedger covers every owner-scoped ledger operation.
	CapLedger Capability = "ledger"
)

// Authorizer decides whether a role may perform a capability.
type Authorizer interface {
	Allow(role Role, capability Capability) error
}

// RoleAuthorizer is the static role -> capability table.
type RoleAuthorizer struct {
	grants map[Role]map[Capability]bool
}

// NewRoleAuthorizer returns the default grants: admins run the ledger,
// superadmins can do everything.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{
		grants: map[Role]map[Capability]bool{
			RoleAdmin: {
				CapLedger: true,
			},
			RoleSuperAdmin: {
				CapLedger:           true,
				CapManageUsers:      true,
				CapArchiveCompanies: true,
			},
		},
	}
}

// Allow returns a Forbidden error when role lacks capability.
func (a *RoleAuthorizer) Allow(role Role, capability Capability) error {
	if a.grants[role][capability] {
		return nil
	}
	return apperror.NewForbidden("insufficient role").
		WithDetail("role", string(role)).
		WithDetail("capability", string(capability))
}

// Package policy holds the authorization rules shared by the HTTP handlers
// and the domain services. Rules are pure functions over the authenticated
// user; they never touch storage.
package policy

import (
	"errors"

	"taskdeck/internal/identity"
)

// ErrForbidden is returned when an authenticated caller lacks the rights for
// an operation. Handlers map it to 403.
var ErrForbidden = errors.New("insufficient permissions")

// CanAccess reports whether user may read or mutate a resource owned by
// ownerID. Admins may access any resource; everyone else only their own.
// Auditors get no implicit resource access, only the read-only audit
// surfaces gated by RequireAuditRead.
func CanAccess(user *identity.User, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.Role == identity.RoleAdmin || user.ID == ownerID
}

// RequireOwnership returns ErrForbidden unless CanAccess allows it.
func RequireOwnership(user *identity.User, ownerID string) error {
	if !CanAccess(user, ownerID) {
		return ErrForbidden
	}
	return nil
}

// RequireRole returns ErrForbidden unless the user's role is one of roles.
func RequireRole(user *identity.User, roles ...identity.Role) error {
	if user == nil {
		return ErrForbidden
	}
	for _, r := range roles {
		if user.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireAdmin is shorthand for the admin-only surfaces.
func RequireAdmin(user *identity.User) error {
	return RequireRole(user, identity.RoleAdmin)
}

// RequireAuditRead admits admins and auditors to the read-only audit
// surfaces.
func RequireAuditRead(user *identity.User) error {
	return RequireRole(user, identity.RoleAdmin, identity.RoleAuditor)
}

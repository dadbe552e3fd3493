// Package auth holds the request-scoped identity type, the role predicates
// consulted by every domain handler, and the session issuing logic that
// keeps access tokens, refresh tokens and cookies in lockstep.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/ailuckly/SmartPropertyManagement/internal/model"
)

// principalKey is the echo context key under which the resolved Principal is
// stored for the lifetime of a single request.
const principalKey = "principal"

// Principal is the resolved identity attached to an authenticated request:
// the user id, the username the token was issued for, and the current role
// set. Roles are looked up fresh at resolution time rather than trusted
// from token claims, so a role change takes effect without reissuing tokens.
type Principal struct {
	ID       uint64
	Username string
	Roles    []string
}

// HasRole reports whether the principal carries the named role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the principal has unrestricted visibility.
func (p Principal) IsAdmin() bool { return p.HasRole(model.RoleAdmin) }

// IsOwner reports whether the principal manages properties.
func (p Principal) IsOwner() bool { return p.HasRole(model.RoleOwner) }

// IsTenant reports whether the principal rents a property.
func (p Principal) IsTenant() bool { return p.HasRole(model.RoleTenant) }

// OwnsOrIsAdmin reports whether the principal may act on a resource owned by
// resourceOwnerID. Admins always may; everyone else only on their own rows.
func (p Principal) OwnsOrIsAdmin(resourceOwnerID uint64) bool {
	return p.IsAdmin() || p.ID == resourceOwnerID
}

// SetPrincipal attaches the resolved principal to the request context.
// Called by the identity middleware once per authenticated request.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// FromContext returns the principal resolved for this request, if any.
// The second return is false for anonymous requests.
func FromContext(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

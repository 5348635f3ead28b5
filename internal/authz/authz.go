// Package authz is the single decision point for role-based access. Handlers
// and middleware ask Allowed instead of comparing role strings inline.
package authz

import "github.com/eima40x4c/CampusCard/internal/domain"

// Tier is the access level a resource demands.
type Tier string

const (
	// TierPublic resources need no authentication at all.
	TierPublic Tier = "public"
	// TierAuthenticated resources need any valid session.
	TierAuthenticated Tier = "authenticated"
	// TierAdmin resources need an admin role.
	TierAdmin Tier = "admin"
)

// Allowed reports whether a caller with the given role may access a resource
// of the given tier. An empty role means the caller is unauthenticated.
func Allowed(role domain.Role, tier Tier) bool {
	switch tier {
	case TierPublic:
		return true
	case TierAuthenticated:
		return role == domain.RoleStudent || role == domain.RoleAdmin
	case TierAdmin:
		return role == domain.RoleAdmin
	default:
		return false
	}
}

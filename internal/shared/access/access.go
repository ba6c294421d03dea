// Package access resolves what an authenticated caller may see.
package access

import (
	"crm_backend/platform/httpkit"

	"github.com/google/uuid"
)

// RoleAdmin sees every lead, campaign and conversation.
const RoleAdmin = "admin"

// Actor is the caller of a CRM operation.
type Actor struct {
	ProfileID uuid.UUID
	Roles     []string
}

// FromIdentity converts the request identity into an Actor.
func FromIdentity(id httpkit.Identity) Actor {
	return Actor{ProfileID: id.ProfileID(), Roles: id.Roles()}
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// CanSee reports whether the actor may read a record owned by ownerID.
// Records without an owner are visible to admins only.
func (a Actor) CanSee(ownerID *uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == a.ProfileID
}

// OwnerFilter returns the profile ID to filter by, or nil for admins.
func (a Actor) OwnerFilter() *uuid.UUID {
	if a.IsAdmin() {
		return nil
	}
	id := a.ProfileID
	return &id
}

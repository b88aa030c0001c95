package model

// Role is a member's position inside a single restaurant.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
	RoleBar     Role = "bar"
)

// RoleAll is the broadcast sentinel stored in to_role. It is not a membership role.
const RoleAll = "all"

// Roles lists every membership role in display order.
var Roles = []Role{RoleOwner, RoleManager, RoleWaiter, RoleKitchen, RoleBar}

// Valid reports whether r is one of the membership roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleWaiter, RoleKitchen, RoleBar:
		return true
	}
	return false
}

// Joinable reports whether r can be chosen when joining with an invite code.
// The owner role is only ever assigned to a restaurant's creator.
func (r Role) Joinable() bool {
	return r.Valid() && r != RoleOwner
}

package model

// TargetKind tells how a notification is addressed.
type TargetKind int

const (
	TargetDirect TargetKind = iota + 1
	TargetRole
	TargetBroadcast
)

func (k TargetKind) String() string {
	switch k {
	case TargetDirect:
		return "direct"
	case TargetRole:
		return "role"
	case TargetBroadcast:
		return "broadcast"
	}
	return "invalid"
}

// Target addresses a notification to exactly one user, one role, or everyone in
// the restaurant. The zero value is invalid; build one with Direct, ForRole or
// Broadcast.
type Target struct {
	kind   TargetKind
	userID string
	role   Role
}

// Direct addresses a single user.
func Direct(userID string) Target {
	return Target{kind: TargetDirect, userID: userID}
}

// ForRole addresses every member holding role.
func ForRole(role Role) Target {
	return Target{kind: TargetRole, role: role}
}

// Broadcast addresses every member of the restaurant.
func Broadcast() Target {
	return Target{kind: TargetBroadcast}
}

func (t Target) Kind() TargetKind { return t.kind }
func (t Target) UserID() string   { return t.userID }
func (t Target) Role() Role       { return t.role }

// Valid reports whether t was built through one of the constructors with usable values.
func (t Target) Valid() bool {
	switch t.kind {
	case TargetDirect:
		return t.userID != ""
	case TargetRole:
		return t.role.Valid()
	case TargetBroadcast:
		return true
	}
	return false
}

// Matches reports whether a member with the given id and role is addressed by t.
func (t Target) Matches(userID string, role Role) bool {
	switch t.kind {
	case TargetDirect:
		return t.userID == userID
	case TargetRole:
		return t.role == role
	case TargetBroadcast:
		return true
	}
	return false
}

// ParseTarget builds a Target from the two optional wire fields. Exactly one of
// them must be set; toRole "all" means Broadcast.
func ParseTarget(toUserID, toRole string) (Target, bool) {
	switch {
	case toUserID != "" && toRole != "":
		return Target{}, false
	case toUserID != "":
		return Direct(toUserID), true
	case toRole == RoleAll:
		return Broadcast(), true
	case Role(toRole).Valid():
		return ForRole(Role(toRole)), true
	}
	return Target{}, false
}

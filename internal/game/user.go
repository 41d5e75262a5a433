package game

// Role grants a user game-level privileges. One LEADER typically gates phase
// transitions.
type Role int

const (
	RoleUser Role = iota
	RoleLeader
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleLeader:
		return "LEADER"
	default:
		return "UNKNOWN"
	}
}

// User is a registered session participant. Users are immutable once created;
// a new State value carries any change (the engine never edits a User that an
// older State still references).
type User struct {
	ID       UserID `json:"user_id"`
	Name     string `json:"name"`
	Authcode int64  `json:"-"` // secret, proves identity; never serialized
	Role     Role   `json:"role"`
}

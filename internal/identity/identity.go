package identity

// Role is the authority level attached to a resolved identity.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleHost      Role = "host"
)

// Identity is the resolved principal behind a connection.
type Identity struct {
	ID          string
	DisplayName string
	AvatarRef   string
	Role        Role
}

// IsAnonymous reports whether the identity is the unauthenticated fallback.
func (i Identity) IsAnonymous() bool {
	return i.Role == RoleAnonymous
}

// CanModerate is the single capability check for moderation actions.
// Role strings never get compared anywhere else.
func CanModerate(role Role) bool {
	return role == RoleModerator || role == RoleHost
}

package models

// RoleKind is a capability tag, optionally scoped to an object such as a
// franchise.
type RoleKind string

const (
	RoleAdmin      RoleKind = "admin"
	RoleFranchisee RoleKind = "franchisee"
	RoleDiner      RoleKind = "diner"
)

// Role is a tagged assignment of a capability to a user. Object carries the
// scoping name (e.g. a franchise name) when the kind requires one; ObjectID
// is the resolved id, zero when unresolved or unscoped.
type Role struct {
	Role     RoleKind `json:"role"`
	Object   string   `json:"object,omitempty"`
	ObjectID int64    `json:"objectId,omitempty"`
}

// User represents a registered account. Password holds the plaintext only
// on the way into AddUser; it is never serialized and never returned.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Roles    []Role `json:"roles"`
}

// IsRole reports whether the user holds the given role kind, independent of
// scoping.
func (u *User) IsRole(kind RoleKind) bool {
	for _, r := range u.Roles {
		if r.Role == kind {
			return true
		}
	}
	return false
}

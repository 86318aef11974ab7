package auth

import (
	"github.com/google/uuid"
)

// User is the account record returned by GET /auth/me and cached by the
// TokenStore for fast restarts.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email,omitempty"`
	FullName        string     `json:"full_name,omitempty"`
	Role            Role       `json:"role"`
	ApprovalGroupID *uuid.UUID `json:"approval_group_id,omitempty"`
	IsActive        bool       `json:"is_active"`
}

// UserPatch carries the fields a profile edit may change locally. Nil fields
// are left untouched by Apply.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// Apply merges the patch into a copy of the user and returns it.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	return u
}

// HasRole is the exact membership primitive: no hierarchy is applied here.
// Policy checks that want hierarchy go through RoleAtLeast.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks the user's role against the minimum required role.
func (u *User) IsAtLeast(minRole Role) bool {
	if u == nil {
		return false
	}
	return RoleAtLeast(u.Role, minRole)
}

// Can checks a permission through the single ordered-role policy.
func (u *User) Can(perm Permission) bool {
	if u == nil {
		return false
	}
	return RoleHasPermission(u.Role, perm)
}

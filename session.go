package auth

import (
	"fmt"
)

// Session is the snapshot of the current authentication state. Invariant:
// Authenticated implies Token is non-empty, User is non-nil, and the token
// was valid when the snapshot settled.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	User          *User  `json:"user,omitempty"`
	Token         string `json:"-"`
	Err           error  `json:"-"`
}

// HasRole is the exact membership test against the session user's role.
func (s Session) HasRole(roles ...Role) bool {
	if !s.Authenticated {
		return false
	}
	return s.User.HasRole(roles...)
}

// IsAtLeast checks the session user's role through the ordered-role policy.
func (s Session) IsAtLeast(minRole Role) bool {
	if !s.Authenticated {
		return false
	}
	return s.User.IsAtLeast(minRole)
}

// Can checks a permission for the session user.
func (s Session) Can(perm Permission) bool {
	if !s.Authenticated {
		return false
	}
	return s.User.Can(perm)
}

func (s Session) String() string {
	username := "<nil>"
	if s.User != nil {
		username = s.User.Username
	}
	return fmt.Sprintf(
		"authenticated=%t loading=%t user=%s err=%v",
		s.Authenticated,
		s.Loading,
		username,
		s.Err,
	)
}

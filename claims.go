package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the structured payload decoded from a token's middle
// segment. Claims are derived on demand and never persisted separately from
// the raw token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	UserRole Role   `json:"role,omitempty"`
}

// SubjectID returns the subject claim, the user's identifier.
func (c *TokenClaims) SubjectID() string {
	return c.RegisteredClaims.Subject
}

// Role returns the role claim.
func (c *TokenClaims) Role() Role {
	return c.UserRole
}

// Expires returns the expiration time, or the zero time when the token
// carries no exp claim.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued-at time, or the zero time when absent.
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiresIn returns the remaining lifetime relative to now. Tokens without
// an exp claim report zero; callers should check HasExpiry first.
func (c *TokenClaims) ExpiresIn(now time.Time) time.Duration {
	if c.RegisteredClaims.ExpiresAt == nil {
		return 0
	}
	return c.RegisteredClaims.ExpiresAt.Time.Sub(now)
}

// HasExpiry reports whether the token carries an exp claim.
func (c *TokenClaims) HasExpiry() bool {
	return c.RegisteredClaims.ExpiresAt != nil
}

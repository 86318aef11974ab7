package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// tokenParser decodes without verifying the signature. Signature checks are
// the backend's job; the client only reads the payload.
var tokenParser = jwt.NewParser()

// DecodeToken splits a compact token into its claims. A token that does not
// have exactly three segments, or whose payload segment is not valid
// base64url JSON, yields ErrTokenMalformed. Decoding never panics and never
// touches storage.
func DecodeToken(raw string) (*TokenClaims, error) {
	if raw == "" {
		return nil, ErrTokenMalformed
	}

	claims := &TokenClaims{}
	if _, _, err := tokenParser.ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	return claims, nil
}

// IsTokenValid reports whether the token decodes and its exp claim, when
// present, is strictly in the future. A token without an exp claim is not
// invalid by itself; the backend decides when such tokens stop working.
func IsTokenValid(raw string) bool {
	return isTokenValidAt(raw, time.Now())
}

func isTokenValidAt(raw string, now time.Time) bool {
	claims, err := DecodeToken(raw)
	if err != nil {
		return false
	}
	if !claims.HasExpiry() {
		return true
	}
	return claims.Expires().After(now)
}

// TokenRemaining returns the token's remaining lifetime at now. The second
// return is false for malformed tokens and for tokens without an exp claim;
// such tokens have no bounded lifetime to report. Expired tokens report zero.
func TokenRemaining(raw string, now time.Time) (time.Duration, bool) {
	claims, err := DecodeToken(raw)
	if err != nil || !claims.HasExpiry() {
		return 0, false
	}
	remaining := claims.ExpiresIn(now)
	if remaining < 0 {
		return 0, true
	}
	return remaining, true
}

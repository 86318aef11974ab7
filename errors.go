package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed   = "token_malformed"
	TextCodeTokenExpired     = "token_expired"
	TextCodeInvalidCreds     = "invalid_credentials"
	TextCodeUnauthorized     = "unauthorized"
	TextCodeForbidden        = "forbidden"
	TextCodeNetworkFailure   = "network_unreachable"
	TextCodeStorageCorrupted = "storage_corrupted"
	TextCodeNoSession        = "no_active_session"
)

// ErrTokenMalformed is returned when a token does not have the compact
// three-segment structure or its payload cannot be decoded.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryBadInput).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned when the exp claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is returned when the backend no longer accepts the token.
var ErrUnauthorized = errors.New("session is no longer authorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden is returned when the backend accepts the token but refuses
// the operation.
var ErrForbidden = errors.New("operation not permitted for this account", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrNoSession is returned by operations that require an authenticated
// session when none is active.
var ErrNoSession = errors.New("no active session", errors.CategoryAuth).
	WithTextCode(TextCodeNoSession).
	WithCode(errors.CodeUnauthorized)

// ErrStorageCorrupted marks locally persisted state that failed shape
// validation. Callers recover by purging; it never reaches the UI.
var ErrStorageCorrupted = errors.New("persisted session state is corrupted", errors.CategoryInternal).
	WithTextCode(TextCodeStorageCorrupted).
	WithCode(errors.CodeInternal)

// TextCodeOf extracts the machine-readable text code carried by a
// structured error, or "" when the error carries none.
func TextCodeOf(err error) string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

// StatusCode extracts the HTTP-style status code carried by a structured
// error, or 0 when the error carries none.
func StatusCode(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return 0
	}
	return richErr.Code
}

// IsUnauthorizedError reports whether err represents a 401 rejection.
func IsUnauthorizedError(err error) bool {
	return StatusCode(err) == errors.CodeUnauthorized
}

// IsForbiddenError reports whether err represents a 403 rejection.
func IsForbiddenError(err error) bool {
	return StatusCode(err) == errors.CodeForbidden
}

// IsAuthRejection reports whether err means the backend no longer trusts the
// session (401 or 403), which forces the unauthenticated state with no retry.
func IsAuthRejection(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth || richErr.Category == errors.CategoryAuthz
}

package auth_test

import (
	"fmt"
	"net/http"
	"testing"

	auth "github.com/ekrsw/knowledge-app-sub000"
	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestSentinelStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "malformed token", err: auth.ErrTokenMalformed, want: http.StatusBadRequest},
		{name: "expired token", err: auth.ErrTokenExpired, want: http.StatusUnauthorized},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "unauthorized", err: auth.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "forbidden", err: auth.ErrForbidden, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.StatusCode(tt.err))
		})
	}
}

func TestStatusCodeUnknownError(t *testing.T) {
	assert.Zero(t, auth.StatusCode(fmt.Errorf("plain failure")))
	assert.Zero(t, auth.StatusCode(nil))
}

func TestTextCodeOf(t *testing.T) {
	assert.Equal(t, auth.TextCodeTokenExpired, auth.TextCodeOf(auth.ErrTokenExpired))
	assert.Equal(t, auth.TextCodeNoSession, auth.TextCodeOf(auth.ErrNoSession))
	assert.Empty(t, auth.TextCodeOf(fmt.Errorf("plain failure")))
	assert.Empty(t, auth.TextCodeOf(nil))
}

func TestTextCodeSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("restoring session: %w", auth.ErrTokenExpired)
	assert.Equal(t, auth.TextCodeTokenExpired, auth.TextCodeOf(wrapped))
	assert.Equal(t, http.StatusUnauthorized, auth.StatusCode(wrapped))
}

func TestAuthRejectionPredicates(t *testing.T) {
	assert.True(t, auth.IsUnauthorizedError(auth.ErrUnauthorized))
	assert.True(t, auth.IsUnauthorizedError(auth.ErrInvalidCredentials))
	assert.False(t, auth.IsUnauthorizedError(auth.ErrForbidden))

	assert.True(t, auth.IsForbiddenError(auth.ErrForbidden))
	assert.False(t, auth.IsForbiddenError(auth.ErrUnauthorized))

	assert.True(t, auth.IsAuthRejection(auth.ErrUnauthorized))
	assert.True(t, auth.IsAuthRejection(auth.ErrForbidden))
	assert.True(t, auth.IsAuthRejection(auth.ErrTokenExpired))

	network := errors.New("backend unreachable", errors.CategoryOperation).
		WithTextCode(auth.TextCodeNetworkFailure)
	assert.False(t, auth.IsAuthRejection(network),
		"transport failures are not auth rejections")
}

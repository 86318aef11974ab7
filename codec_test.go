package auth_test

import (
	"encoding/base64"
	"testing"
	"time"

	auth "github.com/ekrsw/knowledge-app-sub000"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTokenMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "single segment", token: "abcdef"},
		{name: "two segments", token: "header.payload"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "payload not base64", token: "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.sig"},
		{name: "payload not json", token: "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := auth.DecodeToken(tt.token)
			assert.Nil(t, claims)
			require.Error(t, err)
			assert.Equal(t, auth.TextCodeTokenMalformed, auth.TextCodeOf(err))
			assert.False(t, auth.IsTokenValid(tt.token))
		})
	}
}

func TestDecodeTokenClaims(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	raw := mintToken(t, &auth.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: "mwatson",
		UserRole: auth.RoleApprover,
	})

	claims, err := auth.DecodeToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID())
	assert.Equal(t, "mwatson", claims.Username)
	assert.Equal(t, auth.RoleApprover, claims.Role())
	assert.True(t, claims.HasExpiry())
	assert.Equal(t, expires.Unix(), claims.Expires().Unix())
	assert.Equal(t, issued.Unix(), claims.IssuedAt().Unix())
}

func TestDecodeTokenNoPadding(t *testing.T) {
	// base64url payloads come unpadded on the wire; decode must tolerate it.
	raw := mintTokenExpiring(t, time.Now().Add(time.Hour))
	claims, err := auth.DecodeToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "tester", claims.Username)
}

func TestIsTokenValid(t *testing.T) {
	t.Run("expired token is invalid", func(t *testing.T) {
		raw := mintTokenExpiring(t, time.Now().Add(-10*time.Second))
		assert.False(t, auth.IsTokenValid(raw))
	})

	t.Run("future expiry is valid", func(t *testing.T) {
		raw := mintTokenExpiring(t, time.Now().Add(time.Hour))
		assert.True(t, auth.IsTokenValid(raw))
	})

	t.Run("missing expiry does not invalidate", func(t *testing.T) {
		raw := mintToken(t, &auth.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			Username:         "noexp",
			UserRole:         auth.RoleUser,
		})
		assert.True(t, auth.IsTokenValid(raw))
	})

	t.Run("malformed token is invalid", func(t *testing.T) {
		assert.False(t, auth.IsTokenValid("nope"))
	})
}

func TestTokenRemaining(t *testing.T) {
	now := time.Now()

	t.Run("future expiry reports remaining", func(t *testing.T) {
		raw := mintTokenExpiring(t, now.Add(10*time.Minute))
		remaining, bounded := auth.TokenRemaining(raw, now)
		assert.True(t, bounded)
		assert.InDelta(t, (10 * time.Minute).Seconds(), remaining.Seconds(), 1.5)
	})

	t.Run("expired token reports zero", func(t *testing.T) {
		raw := mintTokenExpiring(t, now.Add(-time.Minute))
		remaining, bounded := auth.TokenRemaining(raw, now)
		assert.True(t, bounded)
		assert.Equal(t, time.Duration(0), remaining)
	})

	t.Run("unbounded token reports no lifetime", func(t *testing.T) {
		raw := mintToken(t, &auth.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		})
		_, bounded := auth.TokenRemaining(raw, now)
		assert.False(t, bounded)
	})

	t.Run("malformed token reports no lifetime", func(t *testing.T) {
		_, bounded := auth.TokenRemaining("garbage", now)
		assert.False(t, bounded)
	})
}

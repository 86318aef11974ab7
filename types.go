package auth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore persists the current bearer token, its optional absolute
// expiration, and a cached user record in durable local storage. All
// operations are local I/O only; no implementation may reach the network.
type TokenStore interface {
	// SetToken writes the token. When a positive TTL is supplied an absolute
	// expiration timestamp is persisted alongside it.
	SetToken(ctx context.Context, token string, ttl ...time.Duration) error
	// GetToken returns the stored token, or "" when absent or when a
	// persisted expiration has lapsed (in which case the token is purged).
	GetToken(ctx context.Context) (string, error)
	// ClearToken removes token, expiration record, and cached user together.
	ClearToken(ctx context.Context) error
	// SetUser caches the user record so it survives a restart.
	SetUser(ctx context.Context, user *User) error
	// GetUser returns the cached user, or nil when absent. A record that no
	// longer parses is purged and reported as absent.
	GetUser(ctx context.Context) (*User, error)
}

// Gateway is the network boundary to the backend auth endpoints.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	CurrentUser(ctx context.Context, token string) (*User, error)
}

// LoginResult is the response shape of POST /auth/login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	// ExpiresIn is the token TTL in seconds. Zero means the backend did not
	// report one and expiry is governed by the token's own exp claim.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

// Config holds the session engine options.
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetMonitorInterval() time.Duration
	GetRefreshThreshold() time.Duration
	GetStorageDSN() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

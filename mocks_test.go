package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	auth "github.com/ekrsw/knowledge-app-sub000"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

// MockGateway implements auth.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, creds auth.Credentials) (*auth.LoginResult, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResult), args.Error(1)
}

func (m *MockGateway) CurrentUser(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// memStore is an in-memory TokenStore: enough for state machine and monitor
// tests without opening a database, with injectable failures.
type memStore struct {
	mu        sync.Mutex
	token     string
	expiresAt *time.Time
	user      *auth.User
	now       func() time.Time

	getTokenErr error
	setTokenErr error
}

func newMemStore() *memStore {
	return &memStore{now: time.Now}
}

func (s *memStore) SetToken(ctx context.Context, token string, ttl ...time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setTokenErr != nil {
		return s.setTokenErr
	}
	s.token = token
	s.expiresAt = nil
	if len(ttl) > 0 {
		at := s.now().Add(ttl[0])
		s.expiresAt = &at
	}
	return nil
}

func (s *memStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getTokenErr != nil {
		return "", s.getTokenErr
	}
	if s.expiresAt != nil && !s.now().Before(*s.expiresAt) {
		s.token = ""
		s.expiresAt = nil
	}
	return s.token, nil
}

func (s *memStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = nil
	s.user = nil
	return nil
}

func (s *memStore) SetUser(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return nil
}

func (s *memStore) GetUser(ctx context.Context) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

// nopLogger keeps test output quiet.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func mintToken(t *testing.T, claims *auth.TokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return signed
}

func mintTokenExpiring(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	return mintToken(t, &auth.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: "tester",
		UserRole: auth.RoleUser,
	})
}

func testUser(role auth.Role) *auth.User {
	return &auth.User{
		ID:       uuid.New(),
		Username: "tester",
		Email:    "tester@example.com",
		FullName: "Test User",
		Role:     role,
		IsActive: true,
	}
}

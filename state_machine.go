package auth

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-print"
)

// SessionListener observes settled session snapshots. Listeners run
// synchronously after each transition, outside the manager's lock.
type SessionListener func(Session)

// SessionManager is the authentication state machine. All session mutation
// goes through its transition methods; the snapshot it holds is the single
// source of truth for the UI layer. Construct one per client and pass it by
// reference to whatever needs it; there is no ambient singleton.
type SessionManager struct {
	store   TokenStore
	gateway Gateway
	logger  Logger
	now     func() time.Time

	mu        sync.Mutex
	state     Session
	gen       uint64
	listeners []SessionListener
	onLogout  func()
}

// SessionManagerOption customizes manager construction.
type SessionManagerOption func(*SessionManager)

// WithManagerLogger overrides the default logger.
func WithManagerLogger(logger Logger) SessionManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock func() time.Time) SessionManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithSessionListener registers a listener for settled transitions.
func WithSessionListener(l SessionListener) SessionManagerOption {
	return func(m *SessionManager) {
		if l != nil {
			m.listeners = append(m.listeners, l)
		}
	}
}

// WithLogoutHook registers a callback invoked after logout settles. The UI
// layer owns navigation to the login surface; the manager only signals.
func WithLogoutHook(hook func()) SessionManagerOption {
	return func(m *SessionManager) {
		m.onLogout = hook
	}
}

// NewSessionManager wires the state machine to its storage and gateway.
func NewSessionManager(store TokenStore, gateway Gateway, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		store:   store,
		gateway: gateway,
		logger:  defLogger{},
		now:     time.Now,
		state:   Session{Loading: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Current returns the latest settled snapshot.
func (m *SessionManager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HasRole is the exact membership primitive over the current session.
func (m *SessionManager) HasRole(roles ...Role) bool {
	return m.Current().HasRole(roles...)
}

// Subscribe registers a listener after construction.
func (m *SessionManager) Subscribe(l SessionListener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Initialize restores the session from local storage. With no valid stored
// token it settles unauthenticated without touching the network. With a
// valid token it prefers the cached user and falls back to the gateway; a
// rejected fetch purges storage and settles unauthenticated with the error.
func (m *SessionManager) Initialize(ctx context.Context) error {
	gen := m.beginTransition()

	token, err := m.store.GetToken(ctx)
	if err != nil {
		m.logger.Error("initialize failed to read token storage: %v", err)
		m.settle(gen, Session{})
		return err
	}

	if token == "" {
		m.settle(gen, Session{})
		return nil
	}

	if !isTokenValidAt(token, m.now()) {
		// Malformed or expired stored tokens are recovered locally: purge
		// and settle unauthenticated with no user-visible error.
		m.logger.Info("stored token no longer valid, purging")
		m.purge(ctx)
		m.settle(gen, Session{})
		return nil
	}

	user, err := m.resolveUser(ctx, token)
	if err != nil {
		m.logger.Warn("initialize failed to resolve user: %v", err)
		m.purge(ctx)
		m.settle(gen, Session{Err: err})
		return err
	}

	m.settle(gen, Session{Authenticated: true, User: user, Token: token})
	return nil
}

// Refresh re-runs the initialize path against current storage.
func (m *SessionManager) Refresh(ctx context.Context) error {
	return m.Initialize(ctx)
}

// Login exchanges credentials for a token, persists it, and resolves the
// user. A rejected exchange settles unauthenticated with the translated
// error and returns it so the calling form can display it; when a previous
// session was still authenticated it is restored instead, since a failed
// re-login says nothing about the token already in storage. A logout or
// newer login that settles first wins; this result is then discarded.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) error {
	prior := m.Current()
	gen := m.beginTransition()

	result, err := m.gateway.Login(ctx, creds)
	if err != nil {
		m.logger.Info("login rejected: %v", err)
		if prior.Authenticated {
			prior.Err = err
			m.settle(gen, prior)
			return err
		}
		m.purge(ctx)
		m.settle(gen, Session{Err: err})
		return err
	}

	if result.ExpiresIn > 0 {
		err = m.store.SetToken(ctx, result.AccessToken, time.Duration(result.ExpiresIn)*time.Second)
	} else {
		err = m.store.SetToken(ctx, result.AccessToken)
	}
	if err != nil {
		m.logger.Error("login failed to persist token: %v", err)
		m.purge(ctx)
		m.settle(gen, Session{Err: err})
		return err
	}

	user, err := m.resolveUser(ctx, result.AccessToken)
	if err != nil {
		m.logger.Warn("login failed to resolve user: %v", err)
		m.purge(ctx)
		m.settle(gen, Session{Err: err})
		return err
	}

	m.settle(gen, Session{Authenticated: true, User: user, Token: result.AccessToken})
	return nil
}

// Logout purges storage and settles unauthenticated with no error. It wins
// over any in-flight login.
func (m *SessionManager) Logout(ctx context.Context) {
	gen := m.beginTransition()
	m.purge(ctx)
	settled := m.settle(gen, Session{})
	if settled && m.onLogout != nil {
		m.onLogout()
	}
}

// UpdateUser merges a profile edit into the current session and the local
// cache. It does not re-validate the token.
func (m *SessionManager) UpdateUser(ctx context.Context, patch UserPatch) error {
	m.mu.Lock()
	if !m.state.Authenticated || m.state.User == nil {
		m.mu.Unlock()
		return ErrNoSession
	}

	updated := patch.Apply(*m.state.User)
	m.state.User = &updated
	snapshot := m.state
	listeners := append([]SessionListener(nil), m.listeners...)
	m.mu.Unlock()

	if err := m.store.SetUser(ctx, &updated); err != nil {
		m.logger.Warn("failed to persist updated user cache: %v", err)
	}

	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// resolveUser prefers the cached record and falls back to the gateway,
// refreshing the cache after a successful fetch.
func (m *SessionManager) resolveUser(ctx context.Context, token string) (*User, error) {
	if cached, err := m.store.GetUser(ctx); err == nil && cached != nil {
		return cached, nil
	}

	user, err := m.gateway.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := m.store.SetUser(ctx, user); err != nil {
		m.logger.Warn("failed to cache user record: %v", err)
	}

	return user, nil
}

func (m *SessionManager) purge(ctx context.Context) {
	if err := m.store.ClearToken(ctx); err != nil {
		m.logger.Error("failed to purge token storage: %v", err)
	}
}

// beginTransition marks the session as loading and returns the generation
// this transition must still hold when it settles.
func (m *SessionManager) beginTransition() uint64 {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state.Loading = true
	m.state.Err = nil
	snapshot := m.state
	listeners := append([]SessionListener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
	return gen
}

// settle applies the result of a transition unless a newer one has started
// since, in which case the stale result is discarded.
func (m *SessionManager) settle(gen uint64, next Session) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		m.logger.Debug("discarding stale session transition")
		return false
	}
	next.Loading = false
	m.state = next
	snapshot := m.state
	listeners := append([]SessionListener(nil), m.listeners...)
	m.mu.Unlock()

	m.logger.Debug("session settled: %s", print.MaybePrettyJSON(snapshot))

	for _, l := range listeners {
		l(snapshot)
	}
	return true
}

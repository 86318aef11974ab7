package auth

import (
	"net/url"
)

// IsAdmin reports whether the session user is an admin.
func (s Session) IsAdmin() bool {
	return s.IsAtLeast(RoleAdmin)
}

// IsApprover reports whether the session user can act on revisions. Admins
// satisfy this through the role ordering; there is no separate policy.
func (s Session) IsApprover() bool {
	return s.IsAtLeast(RoleApprover)
}

// GuardAction tells a page wrapper what to do with a navigation.
type GuardAction string

const (
	// GuardWait means the session is still settling; render a placeholder.
	GuardWait GuardAction = "wait"
	// GuardAllow means the guarded content may render.
	GuardAllow GuardAction = "allow"
	// GuardRedirectLogin means the visitor must authenticate first.
	GuardRedirectLogin GuardAction = "redirect_login"
	// GuardRedirectUnauthorized means the user lacks the required role.
	GuardRedirectUnauthorized GuardAction = "redirect_unauthorized"
)

// GuardDecision is the outcome of evaluating a navigation.
type GuardDecision struct {
	Action GuardAction
	// RedirectTo carries the target for the redirect actions, including the
	// return path parameter on login redirects.
	RedirectTo string
}

// RouteGuard evaluates navigations against the session. It decides; the
// page wrapper renders or redirects.
type RouteGuard struct {
	manager          *SessionManager
	loginPath        string
	unauthorizedPath string
	returnParam      string
}

// RouteGuardOption customizes guard construction.
type RouteGuardOption func(*RouteGuard)

// WithLoginPath overrides the login surface path.
func WithLoginPath(path string) RouteGuardOption {
	return func(g *RouteGuard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithUnauthorizedPath overrides the unauthorized surface path.
func WithUnauthorizedPath(path string) RouteGuardOption {
	return func(g *RouteGuard) {
		if path != "" {
			g.unauthorizedPath = path
		}
	}
}

// WithReturnParam overrides the query parameter carrying the return path.
func WithReturnParam(param string) RouteGuardOption {
	return func(g *RouteGuard) {
		if param != "" {
			g.returnParam = param
		}
	}
}

// NewRouteGuard returns a guard over the given session manager.
func NewRouteGuard(manager *SessionManager, opts ...RouteGuardOption) *RouteGuard {
	g := &RouteGuard{
		manager:          manager,
		loginPath:        "/login",
		unauthorizedPath: "/unauthorized",
		returnParam:      "return_to",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Evaluate decides what to do with a navigation to path. When minRole is
// supplied, the session user must satisfy it through the role ordering, so
// an admin passes an approver-gated route.
func (g *RouteGuard) Evaluate(path string, minRole ...Role) GuardDecision {
	session := g.manager.Current()

	if session.Loading {
		return GuardDecision{Action: GuardWait}
	}

	if !session.Authenticated {
		target := g.loginPath
		if path != "" {
			target += "?" + g.returnParam + "=" + url.QueryEscape(path)
		}
		return GuardDecision{Action: GuardRedirectLogin, RedirectTo: target}
	}

	if len(minRole) > 0 && minRole[0] != "" && !session.IsAtLeast(minRole[0]) {
		return GuardDecision{Action: GuardRedirectUnauthorized, RedirectTo: g.unauthorizedPath}
	}

	return GuardDecision{Action: GuardAllow}
}

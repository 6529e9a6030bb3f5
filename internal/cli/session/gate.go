package session

import (
	"context"

	"github.com/podiumhq/podium/internal/i18n"
)

// Redirect targets signaled by the gate.
const (
	RedirectLogin     = "login"
	RedirectDashboard = "dashboard"
)

// GateResult is the typed outcome of an access check: whether to proceed,
// and where to send the user with what message when not.
type GateResult struct {
	Allowed  bool
	Redirect string
	Message  string
}

// AccessGate decides whether protected views may be entered. It only reads
// session state; the manager does all mutation.
type AccessGate struct {
	session *Manager
}

// NewAccessGate creates a gate over the given session manager.
func NewAccessGate(session *Manager) *AccessGate {
	return &AccessGate{session: session}
}

// RequireAuthenticated gates auth-required views. Without a token it signals
// a redirect to the entry screen; with one it verifies against the server
// and signals the same redirect when verification fails.
func (g *AccessGate) RequireAuthenticated(ctx context.Context, lang string) GateResult {
	if !g.session.IsAuthenticated() {
		return GateResult{
			Redirect: RedirectLogin,
			Message:  i18n.T(lang, "notLoggedIn"),
		}
	}

	ok, err := g.session.Verify(ctx)
	if err != nil {
		// Another session operation is in flight; the token was not
		// rejected, so no redirect.
		return GateResult{Message: i18n.T(lang, "operationInProgress")}
	}
	if !ok {
		return GateResult{
			Redirect: RedirectLogin,
			Message:  i18n.T(lang, "sessionExpired"),
		}
	}

	return GateResult{Allowed: true}
}

// RequireAdmin gates admin-only views. A caller that passes authentication
// but is not an admin is sent to the dashboard with a localized warning.
func (g *AccessGate) RequireAdmin(ctx context.Context, lang string) GateResult {
	result := g.RequireAuthenticated(ctx, lang)
	if !result.Allowed {
		return result
	}

	if !g.session.CheckAdmin() {
		return GateResult{
			Redirect: RedirectDashboard,
			Message:  i18n.T(lang, "adminAccessRequired"),
		}
	}

	return GateResult{Allowed: true}
}

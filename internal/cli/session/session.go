package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/podiumhq/podium/internal/cli/client"
)

// ErrOperationInProgress is returned when a session-mutating call is made
// while another one is still in flight.
var ErrOperationInProgress = errors.New("session operation already in progress")

// AuthError is a non-success response from the auth endpoints, carrying the
// server's message when one was provided.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// authError converts a client error into an AuthError. Network failures have
// no status code.
func authError(err error) *AuthError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return &AuthError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return &AuthError{Message: err.Error()}
}

// AuthAPI is the slice of the API client the manager needs.
type AuthAPI interface {
	Signup(ctx context.Context, email, password string) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*client.AuthResult, error)
}

// Manager owns the in-memory session and is the only writer of the token
// store. Constructed explicitly and passed to whatever needs it; there is no
// package-level instance.
//
// At most one session-mutating operation (Signup, Login, Logout, Verify) may
// be in flight at a time; overlapping calls fail with
// ErrOperationInProgress.
type Manager struct {
	api    AuthAPI
	store  TokenStore
	logger zerolog.Logger

	// op serializes session-mutating operations.
	op sync.Mutex

	// mu guards the session fields below.
	mu      sync.RWMutex
	token   string
	user    *client.User
	isAdmin bool
}

// NewManager creates a session manager over the given API and store.
func NewManager(api AuthAPI, store TokenStore, logger zerolog.Logger) *Manager {
	return &Manager{api: api, store: store, logger: logger}
}

// Restore loads the persisted token and profile into memory. The admin flag
// always starts false; it is only trusted after a Verify or Login round
// trip.
func (m *Manager) Restore() {
	token, userJSON := m.store.Load()
	if token == "" {
		return
	}

	var user *client.User
	if userJSON != "" {
		var parsed client.User
		if err := json.Unmarshal([]byte(userJSON), &parsed); err == nil {
			user = &parsed
		}
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.isAdmin = false
	m.mu.Unlock()
}

// Signup registers a new account. When the server returns a session it is
// established with the admin flag false; signup never asserts a role.
func (m *Manager) Signup(ctx context.Context, email, password string) (*client.AuthResult, error) {
	if !m.op.TryLock() {
		return nil, ErrOperationInProgress
	}
	defer m.op.Unlock()

	result, err := m.api.Signup(ctx, email, password)
	if err != nil {
		return nil, authError(err)
	}

	if result.Session != nil && result.Session.AccessToken != "" {
		m.setSession(result.Session.AccessToken, result.User, false)
	}

	return result, nil
}

// Login authenticates and establishes a session with the server-provided
// admin flag.
func (m *Manager) Login(ctx context.Context, email, password string) (*client.AuthResult, error) {
	if !m.op.TryLock() {
		return nil, ErrOperationInProgress
	}
	defer m.op.Unlock()

	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, authError(err)
	}

	var token string
	if result.Session != nil {
		token = result.Session.AccessToken
	}
	m.setSession(token, result.User, result.IsAdmin)

	return result, nil
}

// Logout notifies the server and clears the local session. The notification
// is best-effort: failures are logged, never surfaced, and the local clear
// runs on every exit path.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrOperationInProgress
	}
	defer m.op.Unlock()

	defer m.clearSession()

	if token := m.Token(); token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.logger.Warn().Err(err).Msg("Server logout notification failed")
		}
	}

	return nil
}

// Verify validates the held token against the server. With no token it is a
// no-op returning false. On success the profile and admin flag are refreshed
// from the response and only the profile is re-persisted. Any verification
// failure clears the session: a rejected token and an unreachable server are
// deliberately treated the same, though logged differently. A concurrent
// session operation returns ErrOperationInProgress without touching the
// session; contention is not a verification outcome.
func (m *Manager) Verify(ctx context.Context) (bool, error) {
	if !m.op.TryLock() {
		return false, ErrOperationInProgress
	}
	defer m.op.Unlock()

	token := m.Token()
	if token == "" {
		return false, nil
	}

	result, err := m.api.Verify(ctx, token)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			m.logger.Debug().Int("status", apiErr.StatusCode).Msg("Token rejected by server")
		} else {
			m.logger.Debug().Err(err).Msg("Auth service unreachable during verify")
		}
		m.clearSession()
		return false, nil
	}

	m.mu.Lock()
	m.user = result.User
	m.isAdmin = result.IsAdmin
	m.mu.Unlock()

	if err := m.store.Save(token, marshalUser(result.User)); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to persist session")
	}

	return true, nil
}

// SetSession establishes the in-memory session and persists the token and
// profile. The admin flag stays memory-only.
func (m *Manager) SetSession(token string, user *client.User, isAdmin bool) {
	m.setSession(token, user, isAdmin)
}

// ClearSession resets the in-memory session and clears the store.
func (m *Manager) ClearSession() {
	m.clearSession()
}

func (m *Manager) setSession(token string, user *client.User, isAdmin bool) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.isAdmin = isAdmin
	m.mu.Unlock()

	if err := m.store.Save(token, marshalUser(user)); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to persist session")
	}
}

func (m *Manager) clearSession() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.isAdmin = false
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to clear stored session")
	}
}

// IsAuthenticated reports token presence. It says nothing about token
// validity; use Verify for that.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

// Token returns the held bearer token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns the current profile, nil when unauthenticated.
func (m *Manager) User() *client.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// CheckAdmin returns the in-memory admin flag. It may be stale (false) until
// a Login or Verify round trip confirms it.
func (m *Manager) CheckAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isAdmin
}

// AuthHeaders builds the headers for authenticated requests. With no token
// the bearer value is empty rather than the call failing.
func (m *Manager) AuthHeaders() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + m.Token(),
	}
}

func marshalUser(user *client.User) string {
	if user == nil {
		return ""
	}
	data, err := json.Marshal(user)
	if err != nil {
		return ""
	}
	return string(data)
}

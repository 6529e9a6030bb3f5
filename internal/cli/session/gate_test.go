package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumhq/podium/internal/cli/client"
)

func TestGateRequireAuthenticatedWithoutToken(t *testing.T) {
	manager := NewManager(nil, &MemoryStore{}, zerolog.Nop())
	gate := NewAccessGate(manager)

	result := gate.RequireAuthenticated(context.Background(), "en")
	assert.False(t, result.Allowed)
	assert.Equal(t, RedirectLogin, result.Redirect)
	assert.NotEmpty(t, result.Message)
}

func TestGateRequireAuthenticatedVerifies(t *testing.T) {
	a := &authServer{verifyStatus: http.StatusOK, verifyBody: okUserBody}
	manager, _, _ := newManagerAgainst(t, a)
	manager.SetSession("abc", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	result := gate.RequireAuthenticated(context.Background(), "en")
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Redirect)
}

func TestGateRequireAuthenticatedClearsOnRejection(t *testing.T) {
	manager, store, _ := newManagerAgainst(t, &authServer{
		verifyStatus: http.StatusUnauthorized,
		verifyBody:   `{"error":"Invalid or expired token"}`,
	})
	manager.SetSession("stale", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	result := gate.RequireAuthenticated(context.Background(), "en")
	assert.False(t, result.Allowed)
	assert.Equal(t, RedirectLogin, result.Redirect)

	assert.False(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Empty(t, token)
}

// Contention with an in-flight session operation is not a failed
// verification: no redirect, session kept.
func TestGateContentionDoesNotRedirect(t *testing.T) {
	block := make(chan struct{})
	inFlight := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/verify", func(w http.ResponseWriter, r *http.Request) {
		close(inFlight)
		<-block
		w.Write([]byte(okUserBody))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryStore{}
	manager := NewManager(client.New(srv.URL), store, zerolog.Nop())
	manager.SetSession("abc", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	done := make(chan struct{})
	go func() {
		manager.Verify(context.Background())
		close(done)
	}()

	<-inFlight
	result := gate.RequireAuthenticated(context.Background(), "en")
	assert.False(t, result.Allowed)
	assert.Empty(t, result.Redirect)
	assert.Equal(t, "Another session operation is in progress, please try again", result.Message)

	assert.True(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Equal(t, "abc", token)

	close(block)
	<-done
}

func TestGateRequireAdminForNonAdmin(t *testing.T) {
	// Verify succeeds but reports a non-admin user.
	a := &authServer{
		verifyStatus: http.StatusOK,
		verifyBody:   `{"user":{"id":"1","email":"judge@example.com"},"is_admin":false}`,
	}
	manager, store, _ := newManagerAgainst(t, a)
	manager.SetSession("abc", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	result := gate.RequireAdmin(context.Background(), "en")
	assert.False(t, result.Allowed)
	assert.Equal(t, RedirectDashboard, result.Redirect)
	assert.Equal(t, "Admin access required", result.Message)

	// The session itself is untouched beyond the redirect signal.
	assert.True(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Equal(t, "abc", token)
}

func TestGateRequireAdminLocalizedWarning(t *testing.T) {
	a := &authServer{
		verifyStatus: http.StatusOK,
		verifyBody:   `{"user":{"id":"1","email":"judge@example.com"},"is_admin":false}`,
	}
	manager, _, _ := newManagerAgainst(t, a)
	manager.SetSession("abc", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	result := gate.RequireAdmin(context.Background(), "ne")
	require.False(t, result.Allowed)
	assert.Equal(t, "प्रशासक पहुँच आवश्यक छ", result.Message)
}

func TestGateRequireAdminForAdmin(t *testing.T) {
	a := &authServer{verifyStatus: http.StatusOK, verifyBody: okUserBody}
	manager, _, _ := newManagerAgainst(t, a)
	manager.SetSession("abc", &client.User{ID: "1"}, false)

	gate := NewAccessGate(manager)

	result := gate.RequireAdmin(context.Background(), "en")
	assert.True(t, result.Allowed)
}

func TestGateRequireAdminPropagatesAuthFailure(t *testing.T) {
	manager := NewManager(nil, &MemoryStore{}, zerolog.Nop())
	gate := NewAccessGate(manager)

	result := gate.RequireAdmin(context.Background(), "en")
	assert.False(t, result.Allowed)
	assert.Equal(t, RedirectLogin, result.Redirect)
}

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podiumhq/podium/internal/cli/client"
)

// authServer is a configurable fake of the auth endpoints.
type authServer struct {
	t *testing.T

	loginStatus  int
	loginBody    string
	signupStatus int
	signupBody   string
	verifyStatus int
	verifyBody   string
	logoutStatus int

	mu          sync.Mutex
	logoutCalls int
	verifyAuth  string
}

func (a *authServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(a.loginStatus)
		w.Write([]byte(a.loginBody))
	})
	mux.HandleFunc("POST /auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(a.signupStatus)
		w.Write([]byte(a.signupBody))
	})
	mux.HandleFunc("GET /auth/verify", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.verifyAuth = r.Header.Get("Authorization")
		a.mu.Unlock()
		w.WriteHeader(a.verifyStatus)
		w.Write([]byte(a.verifyBody))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.logoutCalls++
		a.mu.Unlock()
		w.WriteHeader(a.logoutStatus)
		w.Write([]byte(`{"message":"Logged out"}`))
	})
	return mux
}

func newManagerAgainst(t *testing.T, a *authServer) (*Manager, *MemoryStore, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(a.handler())
	t.Cleanup(srv.Close)

	store := &MemoryStore{}
	manager := NewManager(client.New(srv.URL), store, zerolog.Nop())
	return manager, store, srv
}

const (
	okLoginBody = `{"user":{"id":"1","email":"admin@example.com"},"session":{"access_token":"abc"},"is_admin":true}`
	okUserBody  = `{"user":{"id":"1","email":"admin@example.com"},"is_admin":true}`
)

func TestLoginEstablishesSession(t *testing.T) {
	manager, store, _ := newManagerAgainst(t, &authServer{
		loginStatus: http.StatusOK,
		loginBody:   okLoginBody,
	})

	result, err := manager.Login(context.Background(), "admin@example.com", "password123")
	require.NoError(t, err)

	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, "abc", manager.Token())
	assert.Equal(t, "abc", result.Session.AccessToken)
	assert.True(t, manager.CheckAdmin())

	// Storage has the token and profile, never the admin flag.
	token, userJSON := store.Load()
	assert.Equal(t, "abc", token)
	assert.Contains(t, userJSON, "admin@example.com")
	assert.NotContains(t, userJSON, "is_admin")
	assert.NotContains(t, userJSON, "admin\":")
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	manager, store, _ := newManagerAgainst(t, &authServer{
		loginStatus: http.StatusUnauthorized,
		loginBody:   `{"error":"Invalid email or password"}`,
	})

	_, err := manager.Login(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid email or password", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)

	assert.False(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestLoginNetworkFailureIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // unreachable from here on

	manager := NewManager(client.New(url), &MemoryStore{}, zerolog.Nop())

	_, err := manager.Login(context.Background(), "a@b.com", "pw")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, authErr.StatusCode)
	assert.NotEmpty(t, authErr.Error())
}

func TestSignupNeverAssertsAdmin(t *testing.T) {
	// Server wrongly claims is_admin at signup; the client must ignore it.
	manager, _, _ := newManagerAgainst(t, &authServer{
		signupStatus: http.StatusCreated,
		signupBody:   `{"user":{"id":"2","email":"new@example.com"},"session":{"access_token":"tok"},"is_admin":true}`,
	})

	_, err := manager.Signup(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)

	assert.True(t, manager.IsAuthenticated())
	assert.False(t, manager.CheckAdmin())
}

func TestSignupWithoutSessionLeavesStateEmpty(t *testing.T) {
	manager, store, _ := newManagerAgainst(t, &authServer{
		signupStatus: http.StatusCreated,
		signupBody:   `{"user":{"id":"2","email":"new@example.com"}}`,
	})

	_, err := manager.Signup(context.Background(), "new@example.com", "password123")
	require.NoError(t, err)

	assert.False(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestVerifyWithoutTokenIsNoop(t *testing.T) {
	a := &authServer{verifyStatus: http.StatusOK, verifyBody: okUserBody}
	manager, _, _ := newManagerAgainst(t, a)

	ok, err := manager.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Empty(t, a.verifyAuth) // no request was made
}

func TestVerifySuccessRefreshesAdminFlag(t *testing.T) {
	a := &authServer{verifyStatus: http.StatusOK, verifyBody: okUserBody}
	manager, store, _ := newManagerAgainst(t, a)

	manager.SetSession("abc", &client.User{ID: "1", Email: "admin@example.com"}, false)
	assert.False(t, manager.CheckAdmin())

	ok, err := manager.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, manager.CheckAdmin())

	a.mu.Lock()
	assert.Equal(t, "Bearer abc", a.verifyAuth)
	a.mu.Unlock()

	_, userJSON := store.Load()
	assert.NotContains(t, userJSON, "is_admin")
}

func TestVerifyRejectionClearsSession(t *testing.T) {
	manager, store, _ := newManagerAgainst(t, &authServer{
		verifyStatus: http.StatusUnauthorized,
		verifyBody:   `{"error":"Invalid or expired token"}`,
	})

	manager.SetSession("stale", &client.User{ID: "1"}, true)

	ok, err := manager.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, manager.IsAuthenticated())
	assert.False(t, manager.CheckAdmin())

	token, userJSON := store.Load()
	assert.Empty(t, token)
	assert.Empty(t, userJSON)
}

func TestVerifyNetworkFailureClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := &MemoryStore{}
	manager := NewManager(client.New(url), store, zerolog.Nop())
	manager.SetSession("abc", &client.User{ID: "1"}, true)

	// Unreachable server is treated the same as a rejected token.
	ok, err := manager.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Empty(t, token)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	a := &authServer{logoutStatus: http.StatusInternalServerError}
	manager, store, _ := newManagerAgainst(t, a)

	manager.SetSession("abc", &client.User{ID: "1"}, true)

	require.NoError(t, manager.Logout(context.Background()))

	a.mu.Lock()
	assert.Equal(t, 1, a.logoutCalls)
	a.mu.Unlock()

	assert.False(t, manager.IsAuthenticated())
	assert.False(t, manager.CheckAdmin())
	token, userJSON := store.Load()
	assert.Empty(t, token)
	assert.Empty(t, userJSON)
}

func TestLogoutWithoutTokenSkipsServerCall(t *testing.T) {
	a := &authServer{logoutStatus: http.StatusOK}
	manager, _, _ := newManagerAgainst(t, a)

	require.NoError(t, manager.Logout(context.Background()))

	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Zero(t, a.logoutCalls)
}

func TestSetSessionWithFalseAdminOverridesPriorState(t *testing.T) {
	manager := NewManager(nil, &MemoryStore{}, zerolog.Nop())

	manager.SetSession("t1", &client.User{ID: "1"}, true)
	require.True(t, manager.CheckAdmin())

	manager.SetSession("t2", &client.User{ID: "1"}, false)
	assert.False(t, manager.CheckAdmin())
}

func TestClearSessionEmptiesEverything(t *testing.T) {
	store := &MemoryStore{}
	manager := NewManager(nil, store, zerolog.Nop())

	manager.SetSession("abc", &client.User{ID: "1", Email: "a@b.com"}, true)
	manager.ClearSession()

	assert.False(t, manager.IsAuthenticated())
	assert.False(t, manager.CheckAdmin())
	assert.Nil(t, manager.User())

	token, userJSON := store.Load()
	assert.Empty(t, token)
	assert.Empty(t, userJSON)
}

func TestAuthHeaders(t *testing.T) {
	manager := NewManager(nil, &MemoryStore{}, zerolog.Nop())

	// No token: headers still come back, with an empty bearer value.
	headers := manager.AuthHeaders()
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "Bearer ", headers["Authorization"])

	manager.SetSession("abc", nil, false)
	headers = manager.AuthHeaders()
	assert.Equal(t, "Bearer abc", headers["Authorization"])
}

func TestStoreRoundTrip(t *testing.T) {
	store := &MemoryStore{}
	manager := NewManager(nil, store, zerolog.Nop())

	user := &client.User{ID: "7", Email: "round@trip.com"}
	manager.SetSession("tok-7", user, true)

	token, userJSON := store.Load()
	assert.Equal(t, "tok-7", token)

	var loaded client.User
	require.NoError(t, json.Unmarshal([]byte(userJSON), &loaded))
	assert.Equal(t, "7", loaded.ID)
	assert.Equal(t, "round@trip.com", loaded.Email)

	// The stored profile never contains a role field.
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(userJSON), &raw))
	for key := range raw {
		assert.False(t, strings.Contains(strings.ToLower(key), "admin"),
			"stored profile must not contain %q", key)
	}
}

func TestRestoreNeverRestoresAdmin(t *testing.T) {
	store := &MemoryStore{Token: "persisted", UserJSON: `{"id":"1","email":"a@b.com"}`}
	manager := NewManager(nil, store, zerolog.Nop())

	manager.Restore()

	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, "persisted", manager.Token())
	require.NotNil(t, manager.User())
	assert.False(t, manager.CheckAdmin()) // untrusted until a round trip
}

func TestUnavailableStorageFailsSilently(t *testing.T) {
	store := &MemoryStore{FailAll: true}
	manager := NewManager(nil, store, zerolog.Nop())

	// No panics, no errors surfaced; memory is the source of truth.
	manager.SetSession("abc", &client.User{ID: "1"}, true)
	assert.True(t, manager.IsAuthenticated())
	assert.True(t, manager.CheckAdmin())

	manager.ClearSession()
	assert.False(t, manager.IsAuthenticated())
}

func TestConcurrentOperationRejected(t *testing.T) {
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

	manager := NewManager(client.New(srv.URL), &MemoryStore{}, zerolog.Nop())
	manager.SetSession("abc", nil, false)

	done := make(chan bool)
	go func() {
		ok, err := manager.Verify(context.Background())
		assert.NoError(t, err)
		done <- ok
	}()

	// Wait until Verify is blocked inside the network call, then attempt a
	// second mutating operation.
	<-inFlight
	_, err := manager.Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrOperationInProgress)

	close(block)
	assert.True(t, <-done)
}

// A Verify that loses the single-flight race reports contention, not a
// failed verification, and leaves the session intact.
func TestVerifyContentionKeepsSession(t *testing.T) {
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

	done := make(chan struct{})
	go func() {
		manager.Verify(context.Background())
		close(done)
	}()

	<-inFlight
	ok, err := manager.Verify(context.Background())
	assert.ErrorIs(t, err, ErrOperationInProgress)
	assert.False(t, ok)

	// Contention never clears state.
	assert.True(t, manager.IsAuthenticated())
	token, _ := store.Load()
	assert.Equal(t, "abc", token)

	close(block)
	<-done
}

package server

import (
	"bytes"
	"encoding/json"
	mrand "math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/podiumhq/podium/internal/audit"
	"github.com/podiumhq/podium/internal/auth"
	"github.com/podiumhq/podium/internal/config"
	"github.com/podiumhq/podium/internal/models"
)

// newTestServer builds a server on an in-memory database with auditing
// disabled.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, ensureJWTSecret(db, zerolog.Nop()))
	require.NoError(t, ensureDefaultEvents(db))

	registerValidators()

	cfg := &config.Config{}
	cfg.HTTP.CORSOrigins = []string{"http://localhost:5173"}

	s := &Server{
		db:     db,
		config: cfg,
		logger: zerolog.Nop(),
		audit:  audit.NopRecorder{},
		rng:    mrand.New(mrand.NewSource(42)),
	}
	s.setupRouter()

	return s
}

// createTestUser inserts a user and returns a valid bearer token for it.
func createTestUser(t *testing.T, s *Server, email string, isAdmin bool) (models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	require.NoError(t, s.db.Create(&user).Error)

	token, err := auth.GenerateToken(user.ID, user.Email, user.IsAdmin)
	require.NoError(t, err)

	return user, token
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "online", body["status"])
}

// A config without CORS origins must still produce a working router
// instead of panicking inside the CORS middleware.
func TestSetupRouterWithoutCORSOrigins(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, ensureJWTSecret(db, zerolog.Nop()))

	s := &Server{
		db:     db,
		config: &config.Config{},
		logger: zerolog.Nop(),
		audit:  audit.NopRecorder{},
		rng:    mrand.New(mrand.NewSource(1)),
	}
	require.NotPanics(t, func() { s.setupRouter() })

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupFirstAdmin(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/setup", "", jsonBody{
		"email":    "admin@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	decode(t, w, &resp)
	assert.True(t, resp.IsAdmin)
	assert.NotEmpty(t, resp.Session.AccessToken)
	assert.Equal(t, "admin@example.com", resp.User.Email)

	// Second setup attempt is rejected.
	w = doJSON(t, s, http.MethodPost, "/api/setup", "", jsonBody{
		"email":    "second@example.com",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/auth/signup", "", jsonBody{
		"email":    "judge@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var signupResp AuthResponse
	decode(t, w, &signupResp)
	assert.False(t, signupResp.IsAdmin)
	assert.NotEmpty(t, signupResp.Session.AccessToken)

	// Duplicate signup conflicts.
	w = doJSON(t, s, http.MethodPost, "/auth/signup", "", jsonBody{
		"email":    "judge@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, s, http.MethodPost, "/auth/login", "", jsonBody{
		"email":    "judge@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp AuthResponse
	decode(t, w, &loginResp)
	assert.False(t, loginResp.IsAdmin)
	assert.Equal(t, "judge@example.com", loginResp.User.Email)

	w = doJSON(t, s, http.MethodPost, "/auth/login", "", jsonBody{
		"email":    "judge@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyReflectsCurrentAdminStatus(t *testing.T) {
	s := newTestServer(t)
	user, token := createTestUser(t, s, "user@example.com", false)

	w := doJSON(t, s, http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	decode(t, w, &resp)
	assert.False(t, resp.IsAdmin)

	// Promote in the database; the same token now verifies as admin because
	// admin status is read from the users table on every request.
	require.NoError(t, s.db.Model(&user).Update("is_admin", true).Error)

	w = doJSON(t, s, http.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.True(t, resp.IsAdmin)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/auth/verify", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	_, userToken := createTestUser(t, s, "user@example.com", false)
	_, adminToken := createTestUser(t, s, "admin@example.com", true)

	w := doJSON(t, s, http.MethodGet, "/admin/api/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/admin/api/students", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, s, http.MethodGet, "/admin/api/students", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	_, token := createTestUser(t, s, "user@example.com", false)

	w := doJSON(t, s, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// jsonBody is shorthand for request payload literals.
type jsonBody = map[string]interface{}

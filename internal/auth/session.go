package auth

// SessionData represents the authenticated session context for a request.
// IsAdmin is always re-read from the database by the middleware, never
// trusted from the token alone.
type SessionData struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Package session owns the CLI's authentication state: the token store, the
// session manager and the access gate.
package session

import (
	"errors"

	"github.com/zalando/go-keyring"

	"github.com/podiumhq/podium/internal/cli/userconfig"
)

const (
	keyringService = "podium-cli"
	keyringKey     = "access_token"
)

// TokenStore persists the bearer token and serialized profile between runs.
// This is an interface so tests can use an in-memory store.
//
// Implementations are best-effort: when the underlying storage is
// unavailable the in-memory session remains the source of truth, so errors
// are returned for logging but callers never fail on them. Admin status is
// never stored.
type TokenStore interface {
	// Save writes the token and profile; after Save a Load returns both.
	Save(token, userJSON string) error
	// Load returns the stored token and profile, both empty when never set
	// or previously cleared.
	Load() (token, userJSON string)
	// Clear removes the token, the profile and the session-scoped UI
	// preferences (selected event, selected grade). The language preference
	// survives.
	Clear() error
}

// keyringStore keeps the token in the OS keychain and the profile in the
// user config file.
type keyringStore struct{}

// NewKeyringStore returns the production TokenStore.
func NewKeyringStore() TokenStore {
	return &keyringStore{}
}

func (s *keyringStore) Save(token, userJSON string) error {
	var firstErr error

	if err := keyring.Set(keyringService, keyringKey, token); err != nil {
		firstErr = err
	}

	cfg, err := userconfig.Load()
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	cfg.User = []byte(userJSON)
	if err := userconfig.Save(cfg); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (s *keyringStore) Load() (string, string) {
	token, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		token = ""
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return token, ""
	}

	return token, string(cfg.User)
}

func (s *keyringStore) Clear() error {
	var firstErr error

	if err := keyring.Delete(keyringService, keyringKey); err != nil &&
		!errors.Is(err, keyring.ErrNotFound) {
		firstErr = err
	}

	cfg, err := userconfig.Load()
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	cfg.User = nil
	cfg.SelectedEvent = ""
	cfg.SelectedGrade = nil
	if err := userconfig.Save(cfg); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// MemoryStore is an in-memory TokenStore for tests.
type MemoryStore struct {
	Token    string
	UserJSON string
	// FailAll simulates unavailable storage.
	FailAll bool
}

func (m *MemoryStore) Save(token, userJSON string) error {
	if m.FailAll {
		return errors.New("storage unavailable")
	}
	m.Token = token
	m.UserJSON = userJSON
	return nil
}

func (m *MemoryStore) Load() (string, string) {
	if m.FailAll {
		return "", ""
	}
	return m.Token, m.UserJSON
}

func (m *MemoryStore) Clear() error {
	if m.FailAll {
		return errors.New("storage unavailable")
	}
	m.Token = ""
	m.UserJSON = ""
	return nil
}

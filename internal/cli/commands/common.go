package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/podiumhq/podium/internal/cli/client"
	"github.com/podiumhq/podium/internal/cli/session"
	"github.com/podiumhq/podium/internal/cli/userconfig"
	"github.com/podiumhq/podium/internal/i18n"
)

const defaultServerURL = "http://localhost:8080"

// resolveServerURL picks the API base URL: PODIUM_SERVER env var first, then
// the saved config, then the local default.
func resolveServerURL() string {
	if url := os.Getenv("PODIUM_SERVER"); url != "" {
		return url
	}

	cfg, err := userconfig.Load()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}

	return defaultServerURL
}

// currentLanguage returns the preferred UI language, defaulting to English.
func currentLanguage() string {
	if lang := os.Getenv("PODIUM_LANG"); lang != "" {
		return i18n.Normalize(lang)
	}

	lang, err := userconfig.GetLanguage()
	if err != nil || lang == "" {
		return i18n.DefaultLang
	}
	return i18n.Normalize(lang)
}

// newSession builds the API client and a session manager restored from the
// keyring. Every command constructs its own; there is no shared instance.
func newSession() (*client.Client, *session.Manager) {
	api := client.New(resolveServerURL())

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	manager := session.NewManager(api, session.NewKeyringStore(), logger)
	manager.Restore()

	return api, manager
}

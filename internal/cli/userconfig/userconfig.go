package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "podium"
	configFileName = "config.json"
)

// UserConfig is the user's local state stored in ~/.config/podium/config.json.
// It holds the serialized profile and UI preferences. Admin status is never
// written here.
type UserConfig struct {
	ServerURL     string          `json:"server_url,omitempty"`
	User          json.RawMessage `json:"user,omitempty"`
	Language      string          `json:"language,omitempty"`
	SelectedEvent string          `json:"selected_event,omitempty"`
	SelectedGrade *int            `json:"selected_grade,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetLanguage updates the UI language preference and saves the config
func SetLanguage(lang string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.Language = lang
	return Save(cfg)
}

// GetLanguage returns the UI language preference, or empty string if not set
func GetLanguage() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.Language, nil
}

// SetServerURL updates the server URL and saves the config
func SetServerURL(url string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.ServerURL = url
	return Save(cfg)
}

// SetSelectedEvent updates the selected event preference
func SetSelectedEvent(eventID string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedEvent = eventID
	return Save(cfg)
}

// SetSelectedGrade updates the selected grade filter preference
func SetSelectedGrade(grade *int) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedGrade = grade
	return Save(cfg)
}

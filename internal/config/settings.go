package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General     GeneralSettings    `json:"general"`
	Connections ConnectionSettings `json:"connections"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	DefaultDownloadDir         string `json:"default_download_dir"`
	ConfirmDirOnStartup        bool   `json:"confirm_dir_on_startup"`
	OpenFolderAfterDownloadAll bool   `json:"open_folder_after_download_all"`
	WarnOnDuplicate            bool   `json:"warn_on_duplicate"`
	ClipboardPrefill           bool   `json:"clipboard_prefill"`
	MaxPathAttempts            int    `json:"max_path_attempts"`
	Theme                      int    `json:"theme"`
	LogRetentionCount          int    `json:"log_retention_count"`
}

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// ConnectionSettings contains network connection parameters.
type ConnectionSettings struct {
	UserAgent           string `json:"user_agent"`
	ProxyURL            string `json:"proxy_url"`
	SkipTLSVerification bool   `json:"skip_tls_verification"`
	RateLimit           int64  `json:"rate_limit"` // bytes per second, 0 = unlimited
}

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text
	Type        string // "string", "int", "int64", "bool"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "default_download_dir", Label: "Download Folder", Description: "Folder that holds every program file and downloads.json.", Type: "string"},
			{Key: "confirm_dir_on_startup", Label: "Confirm Folder on Startup", Description: "Ask whether to change the download folder when the TUI starts.", Type: "bool"},
			{Key: "open_folder_after_download_all", Label: "Open Folder After Download All", Description: "Open the download folder once every program has been downloaded.", Type: "bool"},
			{Key: "warn_on_duplicate", Label: "Warn on Duplicate", Description: "Warn when adding a program whose URL is already tracked.", Type: "bool"},
			{Key: "clipboard_prefill", Label: "Clipboard Prefill", Description: "Prefill the URL field with a URL found on the clipboard.", Type: "bool"},
			{Key: "max_path_attempts", Label: "Max Folder Attempts", Description: "How many times the folder picker is offered before giving up.", Type: "int"},
			{Key: "theme", Label: "App Theme", Description: "UI Theme (System, Light, Dark).", Type: "int"},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int"},
		},
		"Network": {
			{Key: "user_agent", Label: "User Agent", Description: "Custom User-Agent string for HTTP requests. Leave empty for default.", Type: "string"},
			{Key: "proxy_url", Label: "Proxy URL", Description: "HTTP/HTTPS or socks5 proxy URL. Leave empty to use system default.", Type: "string"},
			{Key: "skip_tls_verification", Label: "Skip TLS Verification", Description: "Accept invalid TLS certificates. Unsafe.", Type: "bool"},
			{Key: "rate_limit", Label: "Rate Limit", Description: "Maximum download speed in bytes per second (0 = unlimited).", Type: "int64"},
		},
	}
}

// CategoryOrder returns the order of categories for display.
func CategoryOrder() []string {
	return []string{"General", "Network"}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, "Downloads")

	return &Settings{
		General: GeneralSettings{
			DefaultDownloadDir:         defaultDir,
			ConfirmDirOnStartup:        true,
			OpenFolderAfterDownloadAll: true,
			WarnOnDuplicate:            true,
			ClipboardPrefill:           true,
			MaxPathAttempts:            3,
			Theme:                      ThemeAdaptive,
			LogRetentionCount:          5,
		},
		Connections: ConnectionSettings{
			UserAgent: "", // Empty means use default UA
		},
	}
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// LoadSettings loads settings from disk and applies environment overrides.
// Returns defaults if the file doesn't exist.
func LoadSettings() (*Settings, error) {
	settings, err := loadSettingsFile(GetSettingsPath())
	if err != nil {
		return nil, err
	}
	if err := ApplyEnvOverrides(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadStoredSettings loads settings from disk without environment overrides,
// for editing and writing back.
func LoadStoredSettings() (*Settings, error) {
	return loadSettingsFile(GetSettingsPath())
}

func loadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	return saveSettingsFile(GetSettingsPath(), s)
}

func saveSettingsFile(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// RuntimeConfig is the subset of settings the fetch engine needs.
type RuntimeConfig struct {
	UserAgent           string
	ProxyURL            string
	SkipTLSVerification bool
	RateLimit           int64
}

// ToRuntimeConfig creates a RuntimeConfig from user Settings
func (s *Settings) ToRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		UserAgent:           s.Connections.UserAgent,
		ProxyURL:            s.Connections.ProxyURL,
		SkipTLSVerification: s.Connections.SkipTLSVerification,
		RateLimit:           s.Connections.RateLimit,
	}
}

// SetDefaultDownloadDir records dir as the default download folder. Values
// coming from environment overrides are not written back.
func SetDefaultDownloadDir(dir string) error {
	settings, err := LoadStoredSettings()
	if err != nil {
		return err
	}
	settings.General.DefaultDownloadDir = dir
	return SaveSettings(settings)
}

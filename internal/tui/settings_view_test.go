package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/progkeep/progkeep/internal/config"
)

func openSettings(t *testing.T, saved **config.Settings, saveErr error) RootModel {
	t.Helper()
	opts := Options{
		Settings: config.DefaultSettings(),
		SaveSettings: func(s *config.Settings) error {
			*saved = s
			return saveErr
		},
	}
	m := newTestModel(t, &fakeService{dir: "/downloads"}, opts)
	for i, e := range m.mainMenu {
		if e.local == localSettings {
			m.cursor = i
		}
	}
	m = step(t, m, keyMsg("enter"))
	if m.state != SettingsState {
		t.Fatalf("state = %v, want SettingsState", m.state)
	}
	return m
}

// selectSetting moves the cursor to the row holding settingKey.
func selectSetting(t *testing.T, m RootModel, settingKey string) RootModel {
	t.Helper()
	for i, cat := range config.CategoryOrder() {
		for row, meta := range config.GetSettingsMetadata()[cat] {
			if meta.Key == settingKey {
				m.SettingsActiveTab = i
				m.SettingsSelectedRow = row
				return m
			}
		}
	}
	t.Fatalf("unknown setting %q", settingKey)
	return m
}

func TestSettings_ToggleAndSave(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)

	m = selectSetting(t, m, "warn_on_duplicate")
	m = step(t, m, keyMsg("enter"))
	if m.Settings.General.WarnOnDuplicate {
		t.Error("warn_on_duplicate not toggled")
	}

	m = step(t, m, keyMsg("esc"))
	if m.state != MainMenuState {
		t.Errorf("state = %v, want MainMenuState", m.state)
	}
	if saved == nil || saved.General.WarnOnDuplicate {
		t.Fatalf("saved = %+v", saved)
	}
	if m.notification != "Settings saved." {
		t.Errorf("notification = %q", m.notification)
	}
}

func TestSettings_EditRateLimit(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)

	m = selectSetting(t, m, "rate_limit")
	m = step(t, m, keyMsg("enter"))
	if !m.SettingsIsEditing {
		t.Fatal("not editing")
	}
	m.SettingsInput.SetValue("2048")
	m = step(t, m, keyMsg("enter"))
	if m.SettingsIsEditing {
		t.Error("still editing after submit")
	}
	if m.Settings.Connections.RateLimit != 2048 {
		t.Errorf("rate_limit = %d, want 2048", m.Settings.Connections.RateLimit)
	}
}

func TestSettings_InvalidNumberKeepsEditing(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)

	m = selectSetting(t, m, "max_path_attempts")
	m = step(t, m, keyMsg("enter"))
	m.SettingsInput.SetValue("zero")
	m = step(t, m, keyMsg("enter"))
	if !m.SettingsIsEditing || !m.notifyErr {
		t.Errorf("editing = %v notifyErr = %v", m.SettingsIsEditing, m.notifyErr)
	}
	if m.Settings.General.MaxPathAttempts != 3 {
		t.Errorf("max_path_attempts = %d, want unchanged", m.Settings.General.MaxPathAttempts)
	}
}

func TestSettings_DownloadDirIsReadOnly(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)

	m = selectSetting(t, m, "default_download_dir")
	m = step(t, m, keyMsg("enter"))
	if m.SettingsIsEditing {
		t.Error("download folder opened for editing")
	}
}

func TestSettings_ThemeCyclesAndResets(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)

	m = selectSetting(t, m, "theme")
	m = step(t, m, keyMsg("enter"))
	m = step(t, m, keyMsg("enter"))
	if m.Settings.General.Theme != config.ThemeDark {
		t.Errorf("theme = %d, want dark", m.Settings.General.Theme)
	}
	m = step(t, m, keyMsg("r"))
	if m.Settings.General.Theme != config.ThemeAdaptive {
		t.Errorf("theme = %d after reset, want adaptive", m.Settings.General.Theme)
	}
}

func TestSettings_SaveError(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, errors.New("read-only"))
	m = step(t, m, keyMsg("esc"))
	if !m.notifyErr || !strings.Contains(m.notification, "read-only") {
		t.Errorf("notification = %q (err=%v)", m.notification, m.notifyErr)
	}
}

func TestSettings_TabSwitchesCategory(t *testing.T) {
	var saved *config.Settings
	m := openSettings(t, &saved, nil)
	m.SettingsSelectedRow = 3

	m = step(t, m, keyMsg("tab"))
	if m.SettingsActiveTab != 1 || m.SettingsSelectedRow != 0 {
		t.Errorf("tab = %d row = %d", m.SettingsActiveTab, m.SettingsSelectedRow)
	}
	m = step(t, m, keyMsg("1"))
	if m.SettingsActiveTab != 0 {
		t.Errorf("tab = %d, want 0", m.SettingsActiveTab)
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"warn_on_duplicate", true, "True"},
		{"theme", config.ThemeLight, "Light"},
		{"rate_limit", int64(0), "Unlimited"},
		{"user_agent", "", "(default)"},
		{"max_path_attempts", 3, "3"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%s, %v) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/progkeep/progkeep/internal/config"
	"github.com/progkeep/progkeep/internal/utils"
)

var themeNames = []string{"System", "Light", "Dark"}

// viewSettings renders the Btop-style settings page
func (m RootModel) viewSettings() string {
	width := 76
	height := 18
	if m.width < width+4 {
		width = m.width - 4
	}
	if m.height < height+4 {
		height = m.height - 4
	}

	categories := config.CategoryOrder()
	metadata := config.GetSettingsMetadata()

	// === TAB BAR ===
	var tabItems []string
	for i, cat := range categories {
		label := fmt.Sprintf("[%d] %s", i+1, cat)
		if i == m.SettingsActiveTab {
			tabItems = append(tabItems, ActiveTabStyle.Render(label))
		} else {
			tabItems = append(tabItems, TabStyle.Render(label))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Left, tabItems...)

	currentCategory := categories[m.SettingsActiveTab]
	settingsMeta := metadata[currentCategory]
	values := m.getSettingsValues(currentCategory)

	leftWidth := 32
	rightWidth := width - leftWidth - 5

	// === LEFT COLUMN: names ===
	var listLines []string
	for i, meta := range settingsMeta {
		if i == m.SettingsSelectedRow {
			listLines = append(listLines, SelectedItemStyle.Render("> "+meta.Label))
		} else {
			listLines = append(listLines, ItemStyle.Render("  "+meta.Label))
		}
	}
	listBox := lipgloss.NewStyle().Width(leftWidth).Render(lipgloss.JoinVertical(lipgloss.Left, listLines...))

	separator := lipgloss.NewStyle().
		Foreground(ColorGray).
		Render(strings.TrimSuffix(strings.Repeat("│\n", len(settingsMeta)), "\n"))

	// === RIGHT COLUMN: value + description ===
	var rightContent string
	if m.SettingsSelectedRow < len(settingsMeta) {
		meta := settingsMeta[m.SettingsSelectedRow]
		valueStr := formatSettingValue(meta.Key, values[meta.Key])
		if m.SettingsIsEditing {
			valueStr = m.SettingsInput.View()
		}

		valueLabel := "Value: "
		if meta.Key == "default_download_dir" {
			valueLabel = "Current: "
		}

		valueDisplay := lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Bold(true).
			Render(valueLabel + valueStr)

		desc := meta.Description
		if meta.Key == "default_download_dir" {
			desc += " Change it with \"Set downloads folder\"."
		}
		descDisplay := lipgloss.NewStyle().
			Foreground(ColorGray).
			Width(rightWidth - 2).
			Render(desc)

		rightContent = valueDisplay + "\n\n" + descDisplay
	}
	rightBox := lipgloss.NewStyle().Width(rightWidth).PaddingLeft(1).Render(rightContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listBox, separator, rightBox)

	fullContent := lipgloss.JoinVertical(lipgloss.Left,
		tabBar,
		"",
		content,
		"",
		m.help.View(SettingsKeys),
	)

	box := renderBtopBox("Settings", fullContent, width, height, ColorNeonPink, false)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m RootModel) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	categories := config.CategoryOrder()
	category := categories[m.SettingsActiveTab]

	if m.SettingsIsEditing {
		switch {
		case key.Matches(msg, InputKeys.Submit):
			if err := m.setSettingValue(category, m.getCurrentSettingKey(), strings.TrimSpace(m.SettingsInput.Value())); err != nil {
				m.notify(err.Error(), true)
				return m, nil
			}
			m.SettingsIsEditing = false
			m.SettingsInput.Blur()
			m.notify("", false)
		case key.Matches(msg, InputKeys.Cancel):
			m.SettingsIsEditing = false
			m.SettingsInput.Blur()
		default:
			var cmd tea.Cmd
			m.SettingsInput, cmd = m.SettingsInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, SettingsKeys.Close):
		ApplyTheme(m.Settings.General.Theme)
		m.opts.ClipboardPrefill = m.Settings.General.ClipboardPrefill
		if err := m.opts.SaveSettings(m.Settings); err != nil {
			m.notify(fmt.Sprintf("Failed to save settings: %v", err), true)
		} else {
			m.notify("Settings saved.", false)
		}
		m.state = MainMenuState

	case key.Matches(msg, SettingsKeys.Tab):
		switch msg.String() {
		case "1", "2":
			idx := int(msg.String()[0] - '1')
			if idx < len(categories) {
				m.SettingsActiveTab = idx
			}
		default:
			m.SettingsActiveTab = (m.SettingsActiveTab + 1) % len(categories)
		}
		m.SettingsSelectedRow = 0

	case key.Matches(msg, SettingsKeys.Up):
		m.SettingsSelectedRow = wrap(m.SettingsSelectedRow-1, m.getSettingsCount())

	case key.Matches(msg, SettingsKeys.Down):
		m.SettingsSelectedRow = wrap(m.SettingsSelectedRow+1, m.getSettingsCount())

	case key.Matches(msg, SettingsKeys.Reset):
		m.resetSettingToDefault(category, m.getCurrentSettingKey(), config.DefaultSettings())

	case key.Matches(msg, SettingsKeys.Edit):
		settingKey := m.getCurrentSettingKey()
		if m.getCurrentSettingType() == "bool" {
			m.toggleSetting(settingKey)
			return m, nil
		}
		if settingKey == "default_download_dir" {
			return m, nil
		}
		if settingKey == "theme" {
			m.Settings.General.Theme = (m.Settings.General.Theme + 1) % len(themeNames)
			return m, nil
		}
		m.SettingsIsEditing = true
		m.SettingsInput.SetValue(fmt.Sprint(m.getSettingsValues(category)[settingKey]))
		m.SettingsInput.CursorEnd()
		cmd := m.SettingsInput.Focus()
		return m, cmd
	}
	return m, nil
}

// getSettingsValues returns a map of setting key -> value for a category
func (m RootModel) getSettingsValues(category string) map[string]any {
	values := make(map[string]any)
	g, c := m.Settings.General, m.Settings.Connections

	switch category {
	case "General":
		values["default_download_dir"] = m.downloadDir
		values["confirm_dir_on_startup"] = g.ConfirmDirOnStartup
		values["open_folder_after_download_all"] = g.OpenFolderAfterDownloadAll
		values["warn_on_duplicate"] = g.WarnOnDuplicate
		values["clipboard_prefill"] = g.ClipboardPrefill
		values["max_path_attempts"] = g.MaxPathAttempts
		values["theme"] = g.Theme
		values["log_retention_count"] = g.LogRetentionCount
	case "Network":
		values["user_agent"] = c.UserAgent
		values["proxy_url"] = c.ProxyURL
		values["skip_tls_verification"] = c.SkipTLSVerification
		values["rate_limit"] = c.RateLimit
	}
	return values
}

func (m *RootModel) toggleSetting(settingKey string) {
	g := &m.Settings.General
	switch settingKey {
	case "confirm_dir_on_startup":
		g.ConfirmDirOnStartup = !g.ConfirmDirOnStartup
	case "open_folder_after_download_all":
		g.OpenFolderAfterDownloadAll = !g.OpenFolderAfterDownloadAll
	case "warn_on_duplicate":
		g.WarnOnDuplicate = !g.WarnOnDuplicate
	case "clipboard_prefill":
		g.ClipboardPrefill = !g.ClipboardPrefill
	case "skip_tls_verification":
		m.Settings.Connections.SkipTLSVerification = !m.Settings.Connections.SkipTLSVerification
	}
}

// setSettingValue sets a setting value from string input
func (m *RootModel) setSettingValue(category, settingKey, value string) error {
	switch category {
	case "General":
		return m.setGeneralSetting(settingKey, value)
	case "Network":
		return m.setNetworkSetting(settingKey, value)
	}
	return nil
}

func (m *RootModel) setGeneralSetting(settingKey, value string) error {
	switch settingKey {
	case "max_path_attempts", "log_retention_count":
		v, err := strconv.Atoi(value)
		if err != nil || v < 1 {
			return fmt.Errorf("%q is not a positive number", value)
		}
		if settingKey == "max_path_attempts" {
			m.Settings.General.MaxPathAttempts = v
		} else {
			m.Settings.General.LogRetentionCount = v
		}
	}
	return nil
}

func (m *RootModel) setNetworkSetting(settingKey, value string) error {
	switch settingKey {
	case "user_agent":
		m.Settings.Connections.UserAgent = value
	case "proxy_url":
		if value != "" {
			if err := utils.ValidateURL(value); err != nil && !strings.HasPrefix(value, "socks5://") {
				return err
			}
		}
		m.Settings.Connections.ProxyURL = value
	case "rate_limit":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%q is not a valid rate", value)
		}
		m.Settings.Connections.RateLimit = v
	}
	return nil
}

// resetSettingToDefault resets a specific setting to its default value
func (m *RootModel) resetSettingToDefault(category, settingKey string, defaults *config.Settings) {
	g, dg := &m.Settings.General, defaults.General
	c, dc := &m.Settings.Connections, defaults.Connections

	switch category {
	case "General":
		switch settingKey {
		case "confirm_dir_on_startup":
			g.ConfirmDirOnStartup = dg.ConfirmDirOnStartup
		case "open_folder_after_download_all":
			g.OpenFolderAfterDownloadAll = dg.OpenFolderAfterDownloadAll
		case "warn_on_duplicate":
			g.WarnOnDuplicate = dg.WarnOnDuplicate
		case "clipboard_prefill":
			g.ClipboardPrefill = dg.ClipboardPrefill
		case "max_path_attempts":
			g.MaxPathAttempts = dg.MaxPathAttempts
		case "theme":
			g.Theme = dg.Theme
		case "log_retention_count":
			g.LogRetentionCount = dg.LogRetentionCount
		}
	case "Network":
		switch settingKey {
		case "user_agent":
			c.UserAgent = dc.UserAgent
		case "proxy_url":
			c.ProxyURL = dc.ProxyURL
		case "skip_tls_verification":
			c.SkipTLSVerification = dc.SkipTLSVerification
		case "rate_limit":
			c.RateLimit = dc.RateLimit
		}
	}
}

// getCurrentSettingKey returns the key of the currently selected setting
func (m RootModel) getCurrentSettingKey() string {
	if meta, ok := m.currentSettingMeta(); ok {
		return meta.Key
	}
	return ""
}

// getCurrentSettingType returns the type of the currently selected setting
func (m RootModel) getCurrentSettingType() string {
	if meta, ok := m.currentSettingMeta(); ok {
		return meta.Type
	}
	return ""
}

func (m RootModel) currentSettingMeta() (config.SettingMeta, bool) {
	category := config.CategoryOrder()[m.SettingsActiveTab]
	metas := config.GetSettingsMetadata()[category]
	if m.SettingsSelectedRow < len(metas) {
		return metas[m.SettingsSelectedRow], true
	}
	return config.SettingMeta{}, false
}

// getSettingsCount returns the number of settings in the current category
func (m RootModel) getSettingsCount() int {
	category := config.CategoryOrder()[m.SettingsActiveTab]
	return len(config.GetSettingsMetadata()[category])
}

// formatSettingValue formats a setting value for display
func formatSettingValue(settingKey string, value any) string {
	if value == nil {
		return "-"
	}
	if settingKey == "theme" {
		if v, ok := value.(int); ok && v >= 0 && v < len(themeNames) {
			return themeNames[v]
		}
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		if settingKey == "rate_limit" {
			if v == 0 {
				return "Unlimited"
			}
			return utils.ConvertBytesToHumanReadable(v) + "/s"
		}
		return strconv.FormatInt(v, 10)
	case string:
		if v == "" {
			return "(default)"
		}
		if len(v) > 36 {
			return v[:33] + "..."
		}
		return v
	}
	return fmt.Sprint(value)
}

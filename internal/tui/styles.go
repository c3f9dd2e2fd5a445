package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/progkeep/progkeep/internal/config"
)

var (
	// Colors
	ColorNeonPurple = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#bd93f9"} // Dracula Purple
	ColorNeonPink   = lipgloss.AdaptiveColor{Light: "#c026d3", Dark: "#ff79c6"} // Dracula Pink
	ColorNeonCyan   = lipgloss.AdaptiveColor{Light: "#0e7490", Dark: "#8be9fd"} // Dracula Cyan
	ColorSuccess    = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#50fa7b"} // Dracula Green
	ColorError      = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#ff5555"} // Dracula Red
	ColorWarning    = lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#ffb86c"} // Dracula Orange
	ColorText       = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#f8f8f2"} // Dracula Foreground
	ColorLightGray  = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#a0a8cd"}
	ColorGray       = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#6272a4"} // Dracula Comment

	// Program status colors
	ColorStatePending     = ColorLightGray
	ColorStateDownloading = ColorNeonCyan
	ColorStateDone        = ColorSuccess
	ColorStateRemoved     = ColorWarning
	ColorStateError       = ColorError

	// Styles
	AppStyle = lipgloss.NewStyle().
			Padding(DefaultPaddingY, DefaultPaddingX).
			Foreground(ColorText)

	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPurple).
			Bold(true)

	// Menu Styles
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorNeonPink).
				Bold(true)

	ItemStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray)

	// Tabs (settings)
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPink).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	// Detail pane
	StatsLabelStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Width(14)

	StatsValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	// Footer
	NotificationStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	ErrorNotificationStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// ApplyTheme fixes the background lipgloss assumes when picking adaptive
// colors. The adaptive theme asks the terminal.
func ApplyTheme(theme int) {
	switch theme {
	case config.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case config.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}

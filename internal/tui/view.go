package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/progkeep/progkeep/internal/program"
)

const logoText = `
█▀█ █▀█ █▀█ █▀▀ █▄▀ █▀▀ █▀▀ █▀█
█▀▀ █▀▄ █▄█ █▄█ █ █ ██▄ ██▄ █▀▀`

func (m RootModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case InputState:
		return m.viewInput()
	case ConfirmState:
		return m.viewConfirm()
	case FilePickerState:
		return m.viewFilePicker()
	case SettingsState:
		return m.viewSettings()
	}

	var body, title string
	helpView := m.help.View(MenuKeys)
	switch m.state {
	case BusyState:
		title = "Working"
		body = m.spinner.View() + " Please wait..."
		helpView = ""
	case MainMenuState:
		title = "Menu"
		labels := make([]string, len(m.mainMenu))
		for i, e := range m.mainMenu {
			labels[i] = e.Label
		}
		body = renderMenu(labels, m.cursor)
	case BrowseState:
		title = "Browse"
		body = m.list.View()
		helpView = m.help.View(MenuKeys) + "  " + HintStyle.Render("/ filter")
	case ProgramMenuState:
		title = m.selectedName()
		labels := make([]string, len(m.programMenu))
		for i, item := range m.programMenu {
			labels[i] = item.Label
		}
		body = statusLine(m.selected) + "\n\n" + renderMenu(labels, m.menuCursor)
	case UpdateMenuState:
		title = m.selectedName() + " / Update"
		labels := make([]string, len(m.updateMenu))
		for i, item := range m.updateMenu {
			labels[i] = item.Label
		}
		body = renderMenu(labels, m.updCursor)
	case DetailState:
		title = m.selectedName()
		body = renderDetail(m.detail)
	}

	width := MenuWidth
	if m.state == BrowseState || m.state == DetailState {
		width = DetailWidth
	}
	if width > m.width-4 {
		width = m.width - 4
	}
	boxed := renderBtopBox(title, lipgloss.NewStyle().Padding(1, 2).Render(body),
		width, lipgloss.Height(body)+4, ColorNeonPurple, false)

	header := lipgloss.JoinVertical(lipgloss.Left,
		LogoStyle.Render(logoText),
		HintStyle.Render(m.opts.Version),
		"",
		StatsLabelStyle.Render("Downloads")+StatsValueStyle.Render(m.downloadDir),
		StatsLabelStyle.Render("Programs")+StatsValueStyle.Render(fmt.Sprint(len(m.list.Items()))),
	)

	footer := m.viewNotification()
	if helpView != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, footer, "", helpView)
	}

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", boxed, "", footer))
}

func (m RootModel) viewInput() string {
	title := "Input"
	if m.pending != nil {
		title = m.pending.title
	}
	label := ""
	if m.pending != nil {
		label = m.pending.message
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		"",
		lipgloss.NewStyle().Foreground(ColorLightGray).Render(label),
		"",
		m.input.View(),
		"",
		"",
		m.help.View(InputKeys),
	)
	padded := lipgloss.NewStyle().Padding(0, 2).Render(content)
	box := renderBtopBox(title, padded, PopupWidth, InputPopupHeight, ColorNeonPink, false)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m RootModel) viewConfirm() string {
	title, message := "Confirm", ""
	if m.pending != nil {
		title, message = m.pending.title, m.pending.message
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true).Render(title),
		"",
		lipgloss.NewStyle().Foreground(ColorNeonPurple).Bold(true).Width(PopupWidth-10).Render(message),
		"",
		m.help.View(ConfirmKeys),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorNeonPink).
			Padding(PopupPaddingY, PopupPaddingX).
			Render(content),
	)
}

func (m RootModel) viewFilePicker() string {
	body := m.filepicker.View()
	helpView := m.help.View(FilePickerKeys)
	if m.typingPath {
		body = m.input.View()
		helpView = m.help.View(InputKeys)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		"",
		lipgloss.NewStyle().Foreground(ColorLightGray).Render(m.filepicker.CurrentDirectory),
		"",
		body,
		"",
		helpView,
	)
	padded := lipgloss.NewStyle().Padding(0, 2).Render(content)
	box := renderBtopBox("Select Directory", padded, PopupWidth, PickerPopupHeight, ColorNeonPink, false)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m RootModel) viewNotification() string {
	if m.notification == "" {
		return ""
	}
	if m.notifyErr {
		return ErrorNotificationStyle.Render("✖ " + m.notification)
	}
	return NotificationStyle.Render(m.notification)
}

func (m RootModel) selectedName() string {
	if m.selected == nil {
		return "Program"
	}
	return m.selected.Name
}

func renderMenu(labels []string, cursor int) string {
	lines := make([]string, len(labels))
	for i, label := range labels {
		if i == cursor {
			lines[i] = SelectedItemStyle.Render("> " + label)
		} else {
			lines[i] = ItemStyle.Render("  " + label)
		}
	}
	return strings.Join(lines, "\n")
}

// renderDetail styles the "[Label]: value" lines of a program description.
func renderDetail(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ": ")
		if !ok || !strings.HasPrefix(label, "[") {
			lines = append(lines, StatsValueStyle.Render(line))
			continue
		}
		label = strings.Trim(label, "[]")
		lines = append(lines, StatsLabelStyle.Render(label)+StatsValueStyle.Render(value))
	}
	return strings.Join(lines, "\n")
}

func statusLine(p *program.Program) string {
	if p == nil {
		return ""
	}
	return StatsLabelStyle.Render("Status") +
		lipgloss.NewStyle().Foreground(statusColor(p.Status)).Bold(true).Render(p.Status.Label())
}

func statusColor(s program.Status) lipgloss.TerminalColor {
	switch s {
	case program.StatusInProgress:
		return ColorStateDownloading
	case program.StatusDownloaded:
		return ColorStateDone
	case program.StatusRemoved:
		return ColorStateRemoved
	case program.StatusError:
		return ColorStateError
	default:
		return ColorStatePending
	}
}

// renderBtopBox draws a rounded box with the title embedded in the top border
func renderBtopBox(title string, content string, width, height int, borderColor lipgloss.TerminalColor, titleRight bool) string {
	const (
		topLeft     = "╭"
		topRight    = "╮"
		bottomLeft  = "╰"
		bottomRight = "╯"
		horizontal  = "─"
		vertical    = "│"
	)

	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}

	titleText := fmt.Sprintf(" %s ", title)
	remainingWidth := innerWidth - lipgloss.Width(titleText) - 1
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	border := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(ColorNeonCyan).Bold(true)

	var topBorder string
	if titleRight {
		topBorder = border.Render(topLeft+strings.Repeat(horizontal, remainingWidth)) +
			titleStyle.Render(titleText) +
			border.Render(horizontal+topRight)
	} else {
		topBorder = border.Render(topLeft+horizontal) +
			titleStyle.Render(titleText) +
			border.Render(strings.Repeat(horizontal, remainingWidth)+topRight)
	}

	bottomBorder := border.Render(bottomLeft + strings.Repeat(horizontal, innerWidth) + bottomRight)

	contentLines := strings.Split(content, "\n")
	innerHeight := height - 2

	wrapped := make([]string, 0, innerHeight)
	for i := 0; i < innerHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		} else if w > innerWidth {
			line = lipgloss.NewStyle().MaxWidth(innerWidth).Render(line)
		}
		wrapped = append(wrapped, border.Render(vertical)+line+border.Render(vertical))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		topBorder,
		strings.Join(wrapped, "\n"),
		bottomBorder,
	)
}

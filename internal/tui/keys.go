package tui

import "github.com/charmbracelet/bubbles/key"

// MenuKeyMap drives the main, program and update menus.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func (k MenuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

func (k MenuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// InputKeyMap drives free-text prompts.
type InputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

func (k InputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

func (k InputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ConfirmKeyMap drives yes/no prompts.
type ConfirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func (k ConfirmKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

func (k ConfirmKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// FilePickerKeyMap drives the directory picker.
type FilePickerKeyMap struct {
	Select  key.Binding
	UseHere key.Binding
	Type    key.Binding
	Cancel  key.Binding
}

func (k FilePickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.UseHere, k.Type, k.Cancel}
}

func (k FilePickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// SettingsKeyMap drives the settings page.
type SettingsKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Tab   key.Binding
	Edit  key.Binding
	Reset key.Binding
	Close key.Binding
}

func (k SettingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Edit, k.Reset, k.Close}
}

func (k SettingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

var MenuKeys = MenuKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var InputKeys = InputKeyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ok")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

var ConfirmKeys = ConfirmKeyMap{
	Yes: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "yes")),
	No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
}

var FilePickerKeys = FilePickerKeyMap{
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select folder")),
	UseHere: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "use current folder")),
	Type:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "type a path")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

var SettingsKeys = SettingsKeyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Tab:   key.NewBinding(key.WithKeys("tab", "1", "2"), key.WithHelp("tab", "category")),
	Edit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "save & close")),
}

package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/progkeep/progkeep/internal/config"
	"github.com/progkeep/progkeep/internal/core"
	"github.com/progkeep/progkeep/internal/program"
)

type UIState int

const (
	BusyState UIState = iota // A command is running; input is ignored
	MainMenuState
	BrowseState
	ProgramMenuState
	UpdateMenuState
	DetailState
	InputState
	ConfirmState
	FilePickerState
	SettingsState
)

// Options configures the TUI.
type Options struct {
	Version          string
	ConfirmDir       bool // ask to change the download folder on startup
	ClipboardPrefill bool // prefill URL prompts from the clipboard
	Theme            int

	// Settings shown on the settings page; nil hides the page.
	Settings     *config.Settings
	SaveSettings func(*config.Settings) error

	// OnDownloadDirChanged is called after the download folder changed.
	OnDownloadDirChanged func(dir string)
}

// menuEntry is a main-menu row. Rows without a command are handled locally.
type menuEntry struct {
	core.MenuItem
	local string
}

const (
	localSettings = "settings"
	localQuit     = "quit"
)

// startDoneMsg reports the end of the startup sequence
type startDoneMsg struct {
	res core.Result
	err error
}

// dispatchDoneMsg reports the end of a dispatched command
type dispatchDoneMsg struct {
	req core.Request
	res core.Result
	err error
}

// programItem adapts a program to the bubbles list
type programItem struct {
	p *program.Program
}

func (i programItem) Title() string       { return i.p.Name }
func (i programItem) Description() string { return i.p.Status.Label() + " · " + i.p.URL }
func (i programItem) FilterValue() string { return i.p.Name + " " + i.p.URL }

// inflight tracks service calls running off the UI goroutine. Once closed,
// new calls are refused so wait cannot miss one.
type inflight struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func (f *inflight) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

func (f *inflight) end() { f.wg.Done() }

func (f *inflight) wait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

type RootModel struct {
	ctx     context.Context
	cancel  context.CancelFunc
	work    *inflight
	Service core.ProgramService
	bridge  *PromptBridge
	opts    Options

	width  int
	height int
	state  UIState

	// Menus
	mainMenu    []menuEntry
	cursor      int
	programMenu []core.MenuItem
	menuCursor  int
	updateMenu  []core.UpdateItem
	updCursor   int

	// Browse
	list     list.Model
	selected *program.Program

	// Detail view text
	detail string

	// Pending prompt from the service
	pending    *promptRequestMsg
	input      textinput.Model
	filepicker filepicker.Model
	typingPath bool

	// Settings page
	Settings            *config.Settings
	SettingsActiveTab   int
	SettingsSelectedRow int
	SettingsIsEditing   bool
	SettingsInput       textinput.Model

	// downloadDir is the folder reported by the last finished command.
	// The service is only read off the UI goroutine while a command runs.
	downloadDir string

	// returnState is shown once the running command finishes
	returnState UIState

	spinner      spinner.Model
	help         help.Model
	notification string
	notifyErr    bool
	quitting     bool
}

// NewProgramList creates the browse list.
func NewProgramList(width, height int) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Programs"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = SelectedItemStyle
	return l
}

func InitialRootModel(ctx context.Context, svc core.ProgramService, bridge *PromptBridge, opts Options) RootModel {
	ApplyTheme(opts.Theme)

	input := textinput.New()
	input.Width = InputWidth
	input.Prompt = ""

	settingsInput := textinput.New()
	settingsInput.Width = 40
	settingsInput.Prompt = ""

	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = PickerHeight

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SelectedItemStyle

	if opts.SaveSettings == nil {
		opts.SaveSettings = config.SaveSettings
	}

	entries := make([]menuEntry, 0, len(core.MainMenu())+2)
	for _, item := range core.MainMenu() {
		entries = append(entries, menuEntry{MenuItem: item})
	}
	if opts.Settings != nil {
		entries = append(entries, menuEntry{MenuItem: core.MenuItem{Label: "Settings"}, local: localSettings})
	}
	entries = append(entries, menuEntry{MenuItem: core.MenuItem{Label: "Quit"}, local: localQuit})

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	return RootModel{
		ctx:           ctx,
		cancel:        cancel,
		work:          &inflight{},
		Service:       svc,
		bridge:        bridge,
		opts:          opts,
		state:         BusyState,
		mainMenu:      entries,
		updateMenu:    core.UpdateMenu(),
		list:          NewProgramList(DefaultListWidth, DefaultListHeight),
		input:         input,
		filepicker:    fp,
		Settings:      opts.Settings,
		SettingsInput: settingsInput,
		downloadDir:   svc.DownloadDir(),
		returnState:   MainMenuState,
		spinner:       sp,
		help:          help.New(),
	}
}

func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.bridge.listen(), m.spinner.Tick, m.startCmd())
}

// startCmd runs the startup sequence off the UI goroutine.
func (m RootModel) startCmd() tea.Cmd {
	svc, ctx, confirm, work := m.Service, m.ctx, m.opts.ConfirmDir, m.work
	return func() tea.Msg {
		if !work.begin() {
			return nil
		}
		defer work.end()
		res, err := svc.Start(ctx, confirm)
		return startDoneMsg{res: res, err: err}
	}
}

// dispatchCmd runs one command off the UI goroutine.
func (m RootModel) dispatchCmd(req core.Request) tea.Cmd {
	svc, ctx, work := m.Service, m.ctx, m.work
	return func() tea.Msg {
		if !work.begin() {
			return nil
		}
		defer work.end()
		res, err := svc.Dispatch(ctx, req)
		return dispatchDoneMsg{req: req, res: res, err: err}
	}
}

// Shutdown cancels the running command and waits for it to return. Call it
// after the program exits and before closing the service.
func (m RootModel) Shutdown() {
	m.cancel()
	m.work.wait()
}

// refreshList reloads the browse list from the service.
func (m *RootModel) refreshList() {
	programs := m.Service.Programs()
	items := make([]list.Item, 0, len(programs))
	for _, p := range programs {
		items = append(items, programItem{p: p})
	}
	m.list.SetItems(items)
}

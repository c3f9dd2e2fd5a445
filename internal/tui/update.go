package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/progkeep/progkeep/internal/core"
	"github.com/progkeep/progkeep/internal/engine/events"
	"github.com/progkeep/progkeep/internal/manager"
	"github.com/progkeep/progkeep/internal/utils"
)

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// Update handles messages and updates the model
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		w, h := msg.Width-8, msg.Height-12
		if w > DetailWidth {
			w = DetailWidth
		}
		if h < 5 {
			h = 5
		}
		m.list.SetSize(w, h)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startDoneMsg:
		m.state = MainMenuState
		m.refreshList()
		if msg.err != nil {
			m.notify(msg.err.Error(), true)
		} else {
			m.notify(msg.res.Message, false)
		}
		m.setDownloadDir(msg.res.DownloadDir)
		return m, nil

	case dispatchDoneMsg:
		return m.afterDispatch(msg)

	case promptRequestMsg:
		return m.showPrompt(msg)

	case events.DownloadStartedMsg:
		m.notify(fmt.Sprintf("Downloading %s...", msg.Name), false)
		return m, nil

	case events.DownloadCompleteMsg:
		m.notify(fmt.Sprintf("Downloaded %s (%s)", msg.Name, utils.ConvertBytesToHumanReadable(msg.Total)), false)
		return m, nil

	case events.AlreadyDownloadedMsg:
		m.notify(fmt.Sprintf("%s is already downloaded.", msg.Name), false)
		return m, nil

	case events.DownloadErrorMsg:
		m.notify(fmt.Sprintf("%s: %v", msg.Name, msg.Err), true)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		return m.handleKey(msg)
	}

	// Directory listings and blink ticks
	var cmd tea.Cmd
	switch m.state {
	case FilePickerState:
		m.filepicker, cmd = m.filepicker.Update(msg)
	case InputState:
		m.input, cmd = m.input.Update(msg)
	case BrowseState:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case MainMenuState:
		switch {
		case key.Matches(msg, MenuKeys.Quit):
			return m.quit()
		case key.Matches(msg, MenuKeys.Up):
			m.cursor = wrap(m.cursor-1, len(m.mainMenu))
		case key.Matches(msg, MenuKeys.Down):
			m.cursor = wrap(m.cursor+1, len(m.mainMenu))
		case key.Matches(msg, MenuKeys.Select):
			entry := m.mainMenu[m.cursor]
			switch entry.local {
			case localQuit:
				return m.quit()
			case localSettings:
				m.state = SettingsState
				m.SettingsActiveTab = 0
				m.SettingsSelectedRow = 0
				m.SettingsIsEditing = false
				return m, nil
			}
			m.returnState = MainMenuState
			return m.run(core.Request{Command: entry.Command})
		}
		return m, nil

	case BrowseState:
		if m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, MenuKeys.Back) && m.list.FilterState() == list.Unfiltered:
			m.state = MainMenuState
			return m, nil
		case key.Matches(msg, MenuKeys.Select):
			item, ok := m.list.SelectedItem().(programItem)
			if !ok {
				return m, nil
			}
			m.selected = item.p
			m.programMenu = core.ProgramMenu(item.p)
			m.menuCursor = 0
			m.state = ProgramMenuState
			return m, nil
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case ProgramMenuState:
		switch {
		case key.Matches(msg, MenuKeys.Back):
			m.refreshList()
			m.state = BrowseState
		case key.Matches(msg, MenuKeys.Up):
			m.menuCursor = wrap(m.menuCursor-1, len(m.programMenu))
		case key.Matches(msg, MenuKeys.Down):
			m.menuCursor = wrap(m.menuCursor+1, len(m.programMenu))
		case key.Matches(msg, MenuKeys.Select):
			item := m.programMenu[m.menuCursor]
			if item.Command == core.CmdUpdate {
				m.updCursor = 0
				m.state = UpdateMenuState
				return m, nil
			}
			m.returnState = ProgramMenuState
			return m.run(core.Request{Command: item.Command, Program: m.selected})
		}
		return m, nil

	case UpdateMenuState:
		switch {
		case key.Matches(msg, MenuKeys.Back):
			m.state = ProgramMenuState
		case key.Matches(msg, MenuKeys.Up):
			m.updCursor = wrap(m.updCursor-1, len(m.updateMenu))
		case key.Matches(msg, MenuKeys.Down):
			m.updCursor = wrap(m.updCursor+1, len(m.updateMenu))
		case key.Matches(msg, MenuKeys.Select):
			m.returnState = UpdateMenuState
			return m.run(core.Request{
				Command: core.CmdUpdate,
				Program: m.selected,
				Field:   m.updateMenu[m.updCursor].Field,
			})
		}
		return m, nil

	case DetailState:
		if key.Matches(msg, MenuKeys.Back, MenuKeys.Select, MenuKeys.Quit) {
			m.state = ProgramMenuState
		}
		return m, nil

	case InputState:
		switch {
		case key.Matches(msg, InputKeys.Submit):
			return m.answer(promptReply{value: strings.TrimSpace(m.input.Value()), ok: true})
		case key.Matches(msg, InputKeys.Cancel):
			return m.answer(promptReply{})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ConfirmState:
		switch {
		case key.Matches(msg, ConfirmKeys.Yes):
			return m.answer(promptReply{ok: true})
		case key.Matches(msg, ConfirmKeys.No):
			return m.answer(promptReply{})
		}
		return m, nil

	case FilePickerState:
		return m.updateFilePicker(msg)

	case SettingsState:
		return m.updateSettings(msg)
	}

	return m, nil
}

func (m RootModel) updateFilePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.typingPath {
		switch {
		case key.Matches(msg, InputKeys.Submit):
			m.typingPath = false
			return m.answer(promptReply{value: utils.EnsureAbsPath(strings.TrimSpace(m.input.Value())), ok: true})
		case key.Matches(msg, InputKeys.Cancel):
			m.typingPath = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, FilePickerKeys.Cancel):
		return m.answer(promptReply{})
	case key.Matches(msg, FilePickerKeys.UseHere):
		return m.answer(promptReply{value: m.filepicker.CurrentDirectory, ok: true})
	case key.Matches(msg, FilePickerKeys.Type):
		m.typingPath = true
		m.input.SetValue(m.filepicker.CurrentDirectory)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)
	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		return m.answer(promptReply{value: path, ok: true})
	}
	return m, cmd
}

// showPrompt switches to the view matching a prompt from the service.
func (m RootModel) showPrompt(req promptRequestMsg) (tea.Model, tea.Cmd) {
	m.pending = &req
	listen := m.bridge.listen()

	switch req.kind {
	case promptDirectory:
		dir := req.initial
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			dir, _ = os.UserHomeDir()
		}
		m.filepicker.CurrentDirectory = dir
		m.filepicker.Path = ""
		m.typingPath = false
		m.state = FilePickerState
		return m, tea.Batch(listen, m.filepicker.Init())

	case promptConfirm:
		m.state = ConfirmState
		return m, listen

	default:
		value := req.initial
		if value == "" && m.opts.ClipboardPrefill && strings.HasSuffix(req.message, "URL") {
			value = clipboardURL()
		}
		m.input.SetValue(value)
		m.input.CursorEnd()
		m.state = InputState
		focus := m.input.Focus()
		return m, tea.Batch(listen, focus)
	}
}

// answer replies to the pending prompt and waits for the service again.
func (m RootModel) answer(r promptReply) (tea.Model, tea.Cmd) {
	if m.pending != nil {
		m.pending.reply <- r
		m.pending = nil
	}
	m.input.Blur()
	m.input.SetValue("")
	m.state = BusyState
	return m, nil
}

func (m RootModel) run(req core.Request) (tea.Model, tea.Cmd) {
	m.state = BusyState
	m.notification = ""
	return m, tea.Batch(m.dispatchCmd(req), m.spinner.Tick)
}

func (m RootModel) afterDispatch(msg dispatchDoneMsg) (tea.Model, tea.Cmd) {
	m.refreshList()

	err := msg.err
	switch {
	case err == nil:
		if msg.res.Message != "" {
			m.notify(msg.res.Message, false)
		}
	case errors.Is(err, manager.ErrCancelled):
		m.notify("Cancelled.", false)
	default:
		m.notify(err.Error(), true)
	}

	// A failed relocation can still have switched folders
	m.setDownloadDir(msg.res.DownloadDir)

	switch msg.req.Command {
	case core.CmdBrowse:
		m.state = BrowseState
	case core.CmdView:
		if err == nil {
			m.detail = msg.res.Text
			m.state = DetailState
		} else {
			m.state = ProgramMenuState
		}
	case core.CmdRemove:
		if err == nil {
			m.selected = nil
			m.state = BrowseState
		} else {
			m.state = ProgramMenuState
		}
	case core.CmdUpdate:
		m.state = UpdateMenuState
	default:
		if msg.req.Command.NeedsProgram() {
			m.programMenu = core.ProgramMenu(m.selected)
			if m.menuCursor >= len(m.programMenu) {
				m.menuCursor = 0
			}
		}
		m.state = m.returnState
	}
	return m, nil
}

// setDownloadDir records the folder reported by the service and persists
// it when it changed.
func (m *RootModel) setDownloadDir(dir string) {
	if dir == "" || dir == m.downloadDir {
		return
	}
	m.downloadDir = dir
	if m.opts.OnDownloadDirChanged != nil {
		m.opts.OnDownloadDirChanged(dir)
	}
}

// quit leaves the program. A running command is cancelled; Shutdown waits
// for it before the service is closed.
func (m RootModel) quit() (tea.Model, tea.Cmd) {
	if m.pending != nil {
		m.pending.reply <- promptReply{}
		m.pending = nil
	}
	m.cancel()
	m.quitting = true
	return m, tea.Quit
}

func (m *RootModel) notify(text string, isErr bool) {
	m.notification = text
	m.notifyErr = isErr
}

// clipboardURL returns the clipboard content when it holds a valid URL.
func clipboardURL() string {
	text, err := readClipboard()
	if err != nil {
		return ""
	}
	text = strings.TrimSpace(text)
	if utils.ValidateURL(text) != nil {
		return ""
	}
	return text
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}

// Package manager coordinates the program list, the download folder and the
// collaborators that fetch, open and prompt.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/progkeep/progkeep/internal/engine/types"
	"github.com/progkeep/progkeep/internal/program"
	"github.com/progkeep/progkeep/internal/utils"
)

// MinIDPrefix is the shortest ID prefix FindByID accepts.
const MinIDPrefix = 4

var ErrAmbiguousID = errors.New("ambiguous ID prefix")

// HistoryRecorder stores the outcome of a download attempt.
type HistoryRecorder interface {
	RecordDownload(ctx context.Context, entry *types.HistoryEntry) error
}

// Manager is the facade used by the CLI and TUI.
type Manager struct {
	cfg      Config
	paths    *PathManager
	programs *program.Collection
	fetcher  program.Fetcher
	launcher Launcher
	history  HistoryRecorder
	events   chan<- any
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

// WithHistory records every download attempt in h.
func WithHistory(h HistoryRecorder) Option {
	return func(m *Manager) {
		m.history = h
	}
}

// WithEvents routes program, collection and path events to ch.
func WithEvents(ch chan<- any) Option {
	return func(m *Manager) {
		m.events = ch
	}
}

func New(cfg Config, fetcher program.Fetcher, launcher Launcher, opts ...Option) *Manager {
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = DefaultConfig().DownloadDir
	}
	m := &Manager{
		cfg:      cfg,
		paths:    NewPathManager(cfg.DownloadDir, cfg.maxAttempts()),
		programs: program.NewCollection(),
		fetcher:  fetcher,
		launcher: launcher,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.programs.SetEvents(m.events)
	m.paths.events = m.events
	return m
}

func (m *Manager) Config() Config {
	return m.cfg
}

// SetOpenFolderAfterDownloadAll overrides the setting for this manager.
func (m *Manager) SetOpenFolderAfterDownloadAll(open bool) {
	m.cfg.OpenFolderAfterDownloadAll = open
}

func (m *Manager) Paths() *PathManager {
	return m.paths
}

// DownloadDir is the current download folder.
func (m *Manager) DownloadDir() string {
	return m.paths.Path()
}

// Programs returns the tracked programs in order.
func (m *Manager) Programs() []*program.Program {
	return m.programs.Programs()
}

// Add appends existing programs.
func (m *Manager) Add(programs ...*program.Program) {
	m.programs.Add(programs...)
}

// AddURL validates rawURL and tracks a new pending program in the current folder.
func (m *Manager) AddURL(rawURL, name, description string) (*program.Program, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := utils.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	if m.cfg.WarnOnDuplicate && m.FindByURL(rawURL) != nil {
		utils.Debug("Adding duplicate URL %s", rawURL)
	}
	p := program.New(rawURL, m.paths.Path(),
		program.WithName(name),
		program.WithDescription(description),
	)
	m.programs.Add(p)
	return p, nil
}

// IsDuplicate reports whether rawURL is already tracked.
func (m *Manager) IsDuplicate(rawURL string) bool {
	return m.FindByURL(strings.TrimSpace(rawURL)) != nil
}

// Download fetches one program and records the attempt.
func (m *Manager) Download(ctx context.Context, p *program.Program) error {
	start := time.Now()
	already := p.IsDownloaded()

	err := p.Download(ctx, m.fetcher)

	entry := &types.HistoryEntry{
		ProgramID:   p.ID,
		ProgramName: p.Name,
		URL:         p.URL,
		StartedAt:   start.Unix(),
		TimeTaken:   time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		entry.Outcome = types.OutcomeError
		entry.Error = err.Error()
	case already:
		entry.Outcome = types.OutcomeSkipped
		entry.DestPath = p.LocalPath
		entry.Filename = p.Filename
	default:
		entry.Outcome = types.OutcomeCompleted
		entry.DestPath = p.LocalPath
		entry.Filename = p.Filename
		if info, statErr := os.Stat(p.LocalPath); statErr == nil {
			entry.TotalSize = info.Size()
		}
	}
	m.record(ctx, entry)
	return err
}

func (m *Manager) record(ctx context.Context, entry *types.HistoryEntry) {
	if m.history == nil {
		return
	}
	if err := m.history.RecordDownload(ctx, entry); err != nil {
		utils.Debug("Failed to record history for %s: %v", entry.ProgramName, err)
	}
}

// DownloadAll downloads every program in order. A failed program does not
// stop the others; all failures are returned joined. The download folder is
// opened afterwards when configured.
func (m *Manager) DownloadAll(ctx context.Context) error {
	var errs []error
	for _, p := range m.programs.Programs() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := m.Download(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	utils.Debug("All downloads finished (%d failed)", len(errs))

	if m.cfg.OpenFolderAfterDownloadAll && ctx.Err() == nil {
		if err := m.OpenDownloadDir(); err != nil {
			utils.Debug("Failed to open download folder: %v", err)
		}
	}
	return errors.Join(errs...)
}

// Remove deletes the program's file, if any, and drops it from the list.
func (m *Manager) Remove(p *program.Program) error {
	return m.programs.Remove(p)
}

// Forget drops the program from the list and leaves its file alone.
func (m *Manager) Forget(p *program.Program) error {
	return m.programs.Forget(p)
}

// DeleteFile removes the downloaded file but keeps the entry.
func (m *Manager) DeleteFile(p *program.Program) error {
	return p.Delete()
}

// Execute opens the downloaded file.
func (m *Manager) Execute(p *program.Program) error {
	return p.Execute(m.launcher)
}

// OpenDownloadDir opens the download folder, creating it if needed.
func (m *Manager) OpenDownloadDir() error {
	dir := m.paths.Path()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("open download folder: %w", err)
	}
	return m.launcher.Open(dir)
}

// FindByURL returns the first program with the given URL, or nil.
func (m *Manager) FindByURL(rawURL string) *program.Program {
	for _, p := range m.programs.Programs() {
		if p.URL == rawURL {
			return p
		}
	}
	return nil
}

// FindByName returns the first program with exactly this name, or nil.
func (m *Manager) FindByName(name string) *program.Program {
	for _, p := range m.programs.Programs() {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindByStatus returns every program in status s, in order.
func (m *Manager) FindByStatus(s program.Status) []*program.Program {
	var out []*program.Program
	for _, p := range m.programs.Programs() {
		if p.Status == s {
			out = append(out, p)
		}
	}
	return out
}

// FindByID resolves a full ID or a unique prefix of at least MinIDPrefix characters.
func (m *Manager) FindByID(id string) (*program.Program, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, program.ErrProgramNotFound
	}

	var matches []*program.Program
	for _, p := range m.programs.Programs() {
		if p.ID == id {
			return p, nil
		}
		if len(id) >= MinIDPrefix && strings.HasPrefix(p.ID, id) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s: %w", id, program.ErrProgramNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w '%s' matches %d programs", ErrAmbiguousID, id, len(matches))
	}
}

// Describe renders the detail view of a program.
func (m *Manager) Describe(p *program.Program) string {
	return p.Info()
}

// UpdateFields holds optional edits; nil leaves a field unchanged.
type UpdateFields struct {
	Name        *string
	Description *string
	URL         *string
}

// Update applies the non-nil fields. A new URL must be valid.
func (m *Manager) Update(p *program.Program, f UpdateFields) error {
	if f.URL != nil {
		u := strings.TrimSpace(*f.URL)
		if err := utils.ValidateURL(u); err != nil {
			return err
		}
		p.URL = u
	}
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	utils.Debug("[%s] Updated", p.Name)
	return nil
}

// Export writes the list to downloads.json in the current folder.
func (m *Manager) Export() (string, error) {
	return m.programs.Save(m.paths.Path())
}

// Import replaces the list with downloads.json from the current folder.
func (m *Manager) Import() error {
	return m.programs.Load(m.paths.Path())
}

// SetDownloadPath runs the interactive folder change for every tracked program.
func (m *Manager) SetDownloadPath(ctx context.Context, prompt Prompter) error {
	return m.paths.SetDownloadPath(ctx, prompt, m.programs.Programs())
}

// Relocate changes the folder without prompting.
func (m *Manager) Relocate(newPath string) error {
	return m.paths.Relocate(newPath, m.programs.Programs())
}

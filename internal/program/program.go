package program

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/progkeep/progkeep/internal/engine/events"
	"github.com/progkeep/progkeep/internal/utils"
)

const (
	DefaultName        = "No name"
	DefaultDescription = "No description"
	// NotDownloadedFilename is the placeholder filename of a program that was never fetched.
	NotDownloadedFilename = "NotDownloaded.txt"
)

// Fetcher retrieves url into dir and returns the path of the written file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// Launcher opens a file or folder with the operating system's default handler.
type Launcher interface {
	Open(path string) error
}

// Program is one downloadable entry.
type Program struct {
	ID          string
	URL         string
	DownloadDir string
	Name        string
	Description string
	Status      Status
	LocalPath   string // empty when the file is absent
	Filename    string

	events chan<- any
}

// Option customises a Program created by New.
type Option func(*Program)

func WithName(name string) Option {
	return func(p *Program) {
		if name != "" {
			p.Name = name
		}
	}
}

func WithDescription(description string) Option {
	return func(p *Program) {
		if description != "" {
			p.Description = description
		}
	}
}

// WithEvents routes lifecycle events of the program to ch.
func WithEvents(ch chan<- any) Option {
	return func(p *Program) {
		p.events = ch
	}
}

// New creates a pending program for url that downloads into dir.
func New(url, dir string, opts ...Option) *Program {
	p := &Program{
		ID:          uuid.New().String(),
		URL:         url,
		DownloadDir: dir,
		Name:        DefaultName,
		Description: DefaultDescription,
		Status:      StatusPending,
		Filename:    NotDownloadedFilename,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetEvents replaces the event channel. A nil channel disables events.
func (p *Program) SetEvents(ch chan<- any) {
	p.events = ch
}

// IsDownloaded reports whether a file exists at the recorded local path.
func (p *Program) IsDownloaded() bool {
	return utils.FileExists(p.LocalPath)
}

// SetStatus assigns s unconditionally and reports the change.
func (p *Program) SetStatus(s Status) {
	prev := p.Status
	p.Status = s
	utils.Debug("[%s] Status changed: %s -> %s", p.Name, prev, s)
	events.Publish(p.events, events.StatusChangedMsg{
		ProgramID: p.ID,
		Name:      p.Name,
		From:      string(prev),
		To:        string(s),
	})
}

// Download fetches the program into DownloadDir unless it is already present.
// A failed fetch leaves the program in ERROR and returns a *DownloadError.
func (p *Program) Download(ctx context.Context, f Fetcher) error {
	if p.IsDownloaded() {
		utils.Debug("[%s] Already downloaded at %s", p.Name, p.LocalPath)
		events.Publish(p.events, events.AlreadyDownloadedMsg{
			ProgramID: p.ID,
			Name:      p.Name,
			DestPath:  p.LocalPath,
		})
		return nil
	}

	p.SetStatus(StatusInProgress)
	events.Publish(p.events, events.DownloadStartedMsg{
		ProgramID: p.ID,
		Name:      p.Name,
		URL:       p.URL,
	})

	start := time.Now()
	path, err := f.Fetch(ctx, p.URL, p.DownloadDir)
	if err == nil && path == "" {
		err = fmt.Errorf("fetcher returned no path")
	}
	if err != nil {
		p.LocalPath = ""
		p.SetStatus(StatusError)
		derr := &DownloadError{ProgramID: p.ID, Name: p.Name, URL: p.URL, Err: err}
		utils.Debug("[%s] %v", p.Name, derr)
		events.Publish(p.events, events.DownloadErrorMsg{
			ProgramID: p.ID,
			Name:      p.Name,
			Err:       derr,
		})
		return derr
	}

	p.LocalPath = filepath.Clean(path)
	p.Filename = filepath.Base(p.LocalPath)
	p.SetStatus(StatusDownloaded)

	var total int64 = -1
	if info, statErr := os.Stat(p.LocalPath); statErr == nil {
		total = info.Size()
	}
	utils.Debug("[%s] Downloaded %s", p.Name, p.LocalPath)
	events.Publish(p.events, events.DownloadCompleteMsg{
		ProgramID: p.ID,
		Name:      p.Name,
		Filename:  p.Filename,
		DestPath:  p.LocalPath,
		Elapsed:   time.Since(start),
		Total:     total,
	})
	return nil
}

// Execute opens the downloaded file with l.
func (p *Program) Execute(l Launcher) error {
	if !p.IsDownloaded() {
		return fmt.Errorf("execute %s: %w", p.Name, ErrFileNotFound)
	}
	if err := l.Open(p.LocalPath); err != nil {
		return fmt.Errorf("execute %s: %w", p.Name, err)
	}
	utils.Debug("[%s] Executed %s", p.Name, p.LocalPath)
	return nil
}

// Delete removes the downloaded file and marks the program REMOVED.
func (p *Program) Delete() error {
	if p.LocalPath == "" {
		return fmt.Errorf("delete %s: %w", p.Name, ErrFileNotFound)
	}
	if err := os.Remove(p.LocalPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %s: %w", p.Name, p.LocalPath, ErrFileNotFound)
		}
		return fmt.Errorf("delete %s: %w", p.Name, err)
	}

	removed := p.LocalPath
	p.LocalPath = ""
	p.SetStatus(StatusRemoved)
	events.Publish(p.events, events.FileDeletedMsg{
		ProgramID: p.ID,
		Name:      p.Name,
		Path:      removed,
	})
	return nil
}

// Relocate moves the downloaded file into newDir and returns the previous
// download directory. The previous directory is left in place.
func (p *Program) Relocate(newDir string) (string, error) {
	if !p.IsDownloaded() {
		return "", fmt.Errorf("move %s: %w", p.Name, ErrFileNotFound)
	}

	newDir = utils.EnsureAbsPath(newDir)
	prev := p.DownloadDir
	srcDir := filepath.Dir(p.LocalPath)

	if utils.SamePath(srcDir, newDir) {
		p.DownloadDir = newDir
		return prev, nil
	}

	if err := os.MkdirAll(newDir, 0o755); err != nil {
		return "", fmt.Errorf("move %s: %w", p.Name, err)
	}

	dst := filepath.Join(newDir, filepath.Base(p.LocalPath))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("move %s: %s: %w", p.Name, dst, os.ErrExist)
	}
	if err := utils.MoveFile(p.LocalPath, dst); err != nil {
		return "", fmt.Errorf("move %s: %w", p.Name, err)
	}

	from := p.LocalPath
	p.LocalPath = dst
	p.DownloadDir = newDir
	utils.Debug("[%s] Moved %s -> %s", p.Name, from, dst)
	events.Publish(p.events, events.ProgramMovedMsg{
		ProgramID: p.ID,
		Name:      p.Name,
		From:      from,
		To:        dst,
	})
	return prev, nil
}

// Move relocates the file into newDir and then removes the previous
// download directory entirely. Status is unchanged.
func (p *Program) Move(newDir string) error {
	if !p.IsDownloaded() {
		return fmt.Errorf("move %s: %w", p.Name, ErrFileNotFound)
	}
	if utils.SamePath(p.DownloadDir, newDir) {
		return nil
	}
	if p.DownloadDir != "" && utils.IsSubPath(p.DownloadDir, newDir) {
		return fmt.Errorf("move %s to %s: %w", p.Name, newDir, ErrNestedDirectory)
	}

	prev, err := p.Relocate(newDir)
	if err != nil {
		return err
	}
	if prev == "" || utils.SamePath(prev, newDir) || utils.IsSubPath(prev, newDir) {
		return nil
	}
	if err := os.RemoveAll(prev); err != nil {
		return fmt.Errorf("move %s: removing %s: %w", p.Name, prev, err)
	}
	return nil
}

// Info renders the "view data" block shown for a program.
func (p *Program) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Name]: %s\n", p.Name)
	fmt.Fprintf(&b, "[Description]: %s\n", p.Description)
	fmt.Fprintf(&b, "[URL]: %s\n", p.URL)
	fmt.Fprintf(&b, "[Folder]: %s\n", p.DownloadDir)
	fmt.Fprintf(&b, "[Status]: %s\n", p.Status.Label())

	executable := "None"
	if p.LocalPath != "" {
		executable = p.LocalPath
	}
	fmt.Fprintf(&b, "[Executable]: %s\n", executable)
	fmt.Fprintf(&b, "[Filename]: %s", p.Filename)

	if p.IsDownloaded() {
		if info, err := os.Stat(p.LocalPath); err == nil {
			fmt.Fprintf(&b, "\n[Size]: %s", utils.ConvertBytesToHumanReadable(info.Size()))
			fmt.Fprintf(&b, "\n[Modified]: %s", utils.RelativeTime(info.ModTime()))
		}
	}
	return b.String()
}

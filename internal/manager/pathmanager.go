package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/progkeep/progkeep/internal/engine/events"
	"github.com/progkeep/progkeep/internal/program"
	"github.com/progkeep/progkeep/internal/utils"
)

// PathManager owns the single authoritative download folder.
type PathManager struct {
	path        string
	maxAttempts int
	events      chan<- any
}

func NewPathManager(path string, maxAttempts int) *PathManager {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPathAttempts
	}
	return &PathManager{
		path:        utils.EnsureAbsPath(path),
		maxAttempts: maxAttempts,
	}
}

func (pm *PathManager) Path() string {
	return pm.path
}

// ConfigPath is the location of downloads.json in the current folder.
func (pm *PathManager) ConfigPath() string {
	return program.ConfigPath(pm.path)
}

// ConfigurationExists reports whether downloads.json is present in the current folder.
func (pm *PathManager) ConfigurationExists() bool {
	return utils.FileExists(pm.ConfigPath())
}

// Relocate makes newPath the download folder. Downloaded files of every
// program are moved there first; the folders they came from are removed
// afterwards. Programs without a file only have their folder updated.
// When a file cannot be moved the folder still changes, the old folders are
// kept, and the move errors are returned.
func (pm *PathManager) Relocate(newPath string, programs []*program.Program) error {
	newPath = utils.EnsureAbsPath(newPath)
	if newPath == "" {
		return fmt.Errorf("relocate: empty path")
	}
	if err := os.MkdirAll(newPath, 0o755); err != nil {
		return fmt.Errorf("relocate: %w", err)
	}

	var (
		prevDirs []string
		seen     = make(map[string]bool)
		errs     []error
	)
	for _, p := range programs {
		if !p.IsDownloaded() {
			p.DownloadDir = newPath
			continue
		}
		prev, err := p.Relocate(newPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev != "" && !seen[prev] {
			seen[prev] = true
			prevDirs = append(prevDirs, prev)
		}
	}

	old := pm.path
	pm.path = newPath
	utils.Debug("Download folder changed: %s -> %s", old, newPath)
	events.Publish(pm.events, events.DownloadPathChangedMsg{From: old, To: newPath})

	if len(errs) > 0 {
		return fmt.Errorf("relocate to %s: %w", newPath, errors.Join(errs...))
	}

	for _, dir := range prevDirs {
		if !removableDir(dir, newPath) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", dir, err))
			continue
		}
		utils.Debug("Removed previous download folder %s", dir)
	}
	return errors.Join(errs...)
}

// removableDir guards the cleanup step: newPath, its ancestors, the home
// directory and filesystem roots are never removed.
func removableDir(dir, newPath string) bool {
	if utils.SamePath(dir, newPath) || utils.IsSubPath(dir, newPath) {
		return false
	}
	abs := utils.EnsureAbsPath(dir)
	if abs == filepath.Dir(abs) {
		return false
	}
	if home, err := os.UserHomeDir(); err == nil && utils.SamePath(abs, home) {
		return false
	}
	return true
}

// SetDownloadPath asks for a folder, relocates every program into it and
// asks for confirmation, up to the configured number of attempts. A declined
// confirmation starts over from the picker. Cancelling the picker leaves the
// folder unchanged and returns ErrCancelled; running out of attempts returns
// ErrTooManyAttempts with the last relocation in effect.
func (pm *PathManager) SetDownloadPath(ctx context.Context, prompt Prompter, programs []*program.Program) error {
	for attempt := 1; attempt <= pm.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir, err := prompt.PickDirectory(ctx, pm.path)
		if err != nil {
			return fmt.Errorf("set download folder: %w", err)
		}
		if dir == "" {
			return fmt.Errorf("set download folder: %w", ErrCancelled)
		}

		if err := pm.Relocate(dir, programs); err != nil {
			return fmt.Errorf("set download folder: %w", err)
		}

		ok, err := prompt.Confirm(ctx, "Confirmation",
			fmt.Sprintf("Your files will be downloaded at '%s', is that okay?", pm.path))
		if err != nil {
			return fmt.Errorf("set download folder: %w", err)
		}
		if ok {
			return nil
		}
		utils.Debug("Download folder %s declined (attempt %d/%d)", pm.path, attempt, pm.maxAttempts)
	}
	return fmt.Errorf("set download folder after %d attempts: %w", pm.maxAttempts, ErrTooManyAttempts)
}

// Package platform opens files and folders with the operating system's
// default handler.
package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/progkeep/progkeep/internal/utils"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSFreeBSD = "freebsd"
	OSOpenBSD = "openbsd"
)

// Command constants
const (
	OpenCommand    = "open"
	XDGOpenCommand = "xdg-open"
	CmdCommand     = "cmd"
	StartCommand   = "start"
	WindowsCmdFlag = "/c"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported operating system")
	// ErrFileNotFound matches fs.ErrNotExist.
	ErrFileNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)
)

// Launcher starts the default handler for a path without waiting for it.
type Launcher struct {
	GOOS string
	// Start launches the command; defaults to exec.Cmd.Start with a
	// background Wait to reap the child.
	Start func(name string, args ...string) error
}

func NewLauncher() *Launcher {
	return &Launcher{GOOS: runtime.GOOS, Start: startDetached}
}

// Command returns the program and arguments that open path on goos.
func Command(goos, path string) (string, []string, error) {
	switch goos {
	case OSDarwin:
		return OpenCommand, []string{path}, nil
	case OSWindows:
		// The empty argument is the window title consumed by start.
		return CmdCommand, []string{WindowsCmdFlag, StartCommand, "", path}, nil
	case OSLinux, OSFreeBSD, OSOpenBSD:
		return XDGOpenCommand, []string{path}, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// Open opens a file or directory with the default application.
func (l *Launcher) Open(path string) error {
	if path == "" {
		return ErrFileNotFound
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", absPath, ErrFileNotFound)
		}
		return err
	}

	goos := l.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	name, args, err := Command(goos, absPath)
	if err != nil {
		return err
	}

	start := l.Start
	if start == nil {
		start = startDetached
	}
	utils.Debug("Opening %s with %s", absPath, name)
	if err := start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", absPath, err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			utils.Debug("%s exited: %v", name, err)
		}
	}()
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

package config

import (
	"os"
	"path/filepath"
)

const appName = "progkeep"

// GetAppDir returns the per-user application directory
// (e.g. ~/.config/progkeep on Linux).
func GetAppDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "."+appName)
	}
	return filepath.Join(base, appName)
}

// GetStateDir holds the download history database.
func GetStateDir() string {
	return filepath.Join(GetAppDir(), "state")
}

// GetLogsDir holds the debug log files.
func GetLogsDir() string {
	return filepath.Join(GetAppDir(), "logs")
}

// GetRuntimeDir holds the instance lock.
func GetRuntimeDir() string {
	return filepath.Join(GetAppDir(), "run")
}

// EnsureDirs creates every application directory.
func EnsureDirs() error {
	for _, dir := range []string{GetAppDir(), GetStateDir(), GetLogsDir(), GetRuntimeDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

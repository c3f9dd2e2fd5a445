package manager

import (
	"os"
	"path/filepath"
)

// DefaultMaxPathAttempts bounds the pick/confirm loop of SetDownloadPath.
const DefaultMaxPathAttempts = 3

// Config is the explicit configuration of a Manager.
type Config struct {
	DownloadDir                string
	MaxPathAttempts            int
	OpenFolderAfterDownloadAll bool
	WarnOnDuplicate            bool
}

// DefaultConfig downloads into <home>/Downloads.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DownloadDir:                filepath.Join(home, "Downloads"),
		MaxPathAttempts:            DefaultMaxPathAttempts,
		OpenFolderAfterDownloadAll: true,
		WarnOnDuplicate:            true,
	}
}

func (c Config) maxAttempts() int {
	if c.MaxPathAttempts <= 0 {
		return DefaultMaxPathAttempts
	}
	return c.MaxPathAttempts
}

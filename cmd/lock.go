package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/progkeep/progkeep/internal/config"
	"github.com/progkeep/progkeep/internal/utils"
)

const lockFileName = "progkeep.lock"

var ErrAlreadyRunning = errors.New("progkeep is already running")

var instanceLock *flock.Flock

// AcquireLock takes the process-wide instance lock. It reports false when
// another process holds it.
func AcquireLock() (bool, error) {
	dir := config.GetRuntimeDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating runtime dir: %w", err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquiring instance lock: %w", err)
	}
	if !locked {
		return false, nil
	}
	instanceLock = fl
	utils.Debug("Acquired instance lock %s", fl.Path())
	return true, nil
}

// ReleaseLock drops the instance lock taken by AcquireLock.
func ReleaseLock() {
	if instanceLock == nil {
		return
	}
	if err := instanceLock.Unlock(); err != nil {
		utils.Debug("Error releasing instance lock: %v", err)
	}
	instanceLock = nil
}

// lockInstance wraps AcquireLock for commands that change state.
func lockInstance() (func(), error) {
	ok, err := AcquireLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return ReleaseLock, nil
}

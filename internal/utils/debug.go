package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	debugMu   sync.Mutex
	debugFile *os.File
	logsDir   string
)

const logPrefix = "debug-"

// ConfigureDebug points the debug log at a fresh file inside dir.
// Until it is called, Debug discards its output.
func ConfigureDebug(dir string) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if debugFile != nil {
		_ = debugFile.Close()
		debugFile = nil
	}
	logsDir = dir
}

// Debug writes a message to the current debug log file
func Debug(format string, args ...any) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if logsDir == "" {
		return
	}
	if debugFile == nil {
		name := logPrefix + time.Now().Format("20060102-150405") + ".log"
		f, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		debugFile = f
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
	_ = debugFile.Sync()
}

// CleanupLogs keeps the newest retain log files and removes the rest.
func CleanupLogs(retain int) {
	debugMu.Lock()
	dir := logsDir
	debugMu.Unlock()

	if dir == "" || retain < 0 {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	var logs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), logPrefix) || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		logs = append(logs, e.Name())
	}
	if len(logs) <= retain {
		return
	}

	// Timestamped names sort chronologically
	sort.Strings(logs)
	for _, name := range logs[:len(logs)-retain] {
		_ = os.Remove(filepath.Join(dir, name))
	}
}

package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebug_WritesToConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	ConfigureDebug(dir)
	t.Cleanup(func() { ConfigureDebug("") })

	Debug("hello %s", "world")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "hello world"))
}

func TestDebug_UnconfiguredIsNoop(t *testing.T) {
	ConfigureDebug("")
	Debug("nothing should happen")
}

func TestCleanupLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"debug-20240101-000000.log",
		"debug-20240102-000000.log",
		"debug-20240103-000000.log",
		"debug-20240104-000000.log",
		"unrelated.txt",
	}
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}

	ConfigureDebug(dir)
	t.Cleanup(func() { ConfigureDebug("") })
	CleanupLogs(2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"debug-20240103-000000.log",
		"debug-20240104-000000.log",
		"unrelated.txt",
	}, left)
}

func TestConvertBytesToHumanReadable(t *testing.T) {
	assert.Equal(t, "0 B", ConvertBytesToHumanReadable(0))
	assert.Equal(t, "1.0 kB", ConvertBytesToHumanReadable(1000))
	assert.Equal(t, "-", ConvertBytesToHumanReadable(-1))
}

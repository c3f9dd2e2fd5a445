package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progkeep/progkeep/internal/program"
)

// scriptedPrompter answers PickDirectory and Confirm from queues.
type scriptedPrompter struct {
	dirs     []string
	dirErr   error
	answers  []bool
	picks    int
	confirms int
}

func (s *scriptedPrompter) PickDirectory(_ context.Context, _ string) (string, error) {
	s.picks++
	if s.dirErr != nil {
		return "", s.dirErr
	}
	if len(s.dirs) == 0 {
		return "", ErrCancelled
	}
	d := s.dirs[0]
	if len(s.dirs) > 1 {
		s.dirs = s.dirs[1:]
	}
	return d, nil
}

func (s *scriptedPrompter) Confirm(_ context.Context, _, _ string) (bool, error) {
	s.confirms++
	if len(s.answers) == 0 {
		return false, nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedPrompter) Ask(_ context.Context, _, _, initial string) (string, bool, error) {
	return initial, true, nil
}

func downloadedIn(t *testing.T, dir, url string) *program.Program {
	t.Helper()
	p := program.New(url, dir)
	require.NoError(t, p.Download(context.Background(), &fakeFetcher{}))
	return p
}

func TestPathManager_Relocate(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	newDir := filepath.Join(root, "new")

	a := downloadedIn(t, oldDir, "http://example.com/a.exe")
	b := downloadedIn(t, oldDir, "http://example.com/b.exe")
	pending := program.New("http://example.com/c.exe", oldDir)

	pm := NewPathManager(oldDir, 3)
	require.NoError(t, pm.Relocate(newDir, []*program.Program{a, b, pending}))

	assert.Equal(t, newDir, pm.Path())
	assert.FileExists(t, filepath.Join(newDir, "a.exe"))
	assert.FileExists(t, filepath.Join(newDir, "b.exe"))
	assert.NoDirExists(t, oldDir)
	assert.True(t, a.IsDownloaded())
	assert.True(t, b.IsDownloaded())
	assert.Equal(t, newDir, pending.DownloadDir)
	assert.False(t, pending.IsDownloaded())
}

func TestPathManager_RelocateIntoSubdirectoryKeepsAncestor(t *testing.T) {
	oldDir := t.TempDir()
	newDir := filepath.Join(oldDir, "nested")
	a := downloadedIn(t, oldDir, "http://example.com/a.exe")

	pm := NewPathManager(oldDir, 3)
	require.NoError(t, pm.Relocate(newDir, []*program.Program{a}))

	assert.DirExists(t, oldDir)
	assert.FileExists(t, filepath.Join(newDir, "a.exe"))
	assert.Equal(t, newDir, a.DownloadDir)
}

func TestPathManager_RelocateSamePath(t *testing.T) {
	dir := t.TempDir()
	a := downloadedIn(t, dir, "http://example.com/a.exe")

	pm := NewPathManager(dir, 3)
	require.NoError(t, pm.Relocate(dir, []*program.Program{a}))

	assert.DirExists(t, dir)
	assert.True(t, a.IsDownloaded())
}

func TestPathManager_RelocateFailureKeepsOldFolders(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	newDir := filepath.Join(root, "new")
	a := downloadedIn(t, oldDir, "http://example.com/a.exe")
	b := downloadedIn(t, filepath.Join(root, "other"), "http://example.com/b.exe")

	require.NoError(t, os.MkdirAll(newDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(newDir, "b.exe"), []byte("occupied"), 0o644))

	pm := NewPathManager(oldDir, 3)
	err := pm.Relocate(newDir, []*program.Program{a, b})

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, newDir, pm.Path())
	assert.DirExists(t, oldDir, "cleanup skipped after a failed move")
	assert.True(t, b.IsDownloaded())
}

func TestPathManager_ConfigurationExists(t *testing.T) {
	dir := t.TempDir()
	pm := NewPathManager(dir, 0)
	assert.Equal(t, filepath.Join(dir, program.ConfigFileName), pm.ConfigPath())
	assert.False(t, pm.ConfigurationExists())

	require.NoError(t, os.WriteFile(pm.ConfigPath(), []byte(`{"programs":[]}`), 0o644))
	assert.True(t, pm.ConfigurationExists())
}

func TestSetDownloadPath_Accepted(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	pm := NewPathManager(filepath.Join(root, "start"), 3)
	prompt := &scriptedPrompter{dirs: []string{target}, answers: []bool{true}}

	require.NoError(t, pm.SetDownloadPath(context.Background(), prompt, nil))

	assert.Equal(t, target, pm.Path())
	assert.Equal(t, 1, prompt.picks)
	assert.Equal(t, 1, prompt.confirms)
}

func TestSetDownloadPath_DeclineThenAccept(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	p := downloadedIn(t, filepath.Join(root, "start"), "http://example.com/tool.exe")

	pm := NewPathManager(filepath.Join(root, "start"), 3)
	prompt := &scriptedPrompter{dirs: []string{first, second}, answers: []bool{false, true}}

	require.NoError(t, pm.SetDownloadPath(context.Background(), prompt, []*program.Program{p}))

	assert.Equal(t, second, pm.Path())
	assert.Equal(t, 2, prompt.picks)
	assert.Equal(t, filepath.Join(second, "tool.exe"), p.LocalPath)
	assert.True(t, p.IsDownloaded())
}

func TestSetDownloadPath_Cancelled(t *testing.T) {
	start := t.TempDir()
	pm := NewPathManager(start, 3)
	prompt := &scriptedPrompter{}

	err := pm.SetDownloadPath(context.Background(), prompt, nil)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, start, pm.Path())
	assert.Equal(t, 0, prompt.confirms)
}

func TestSetDownloadPath_EmptySelectionIsCancel(t *testing.T) {
	start := t.TempDir()
	pm := NewPathManager(start, 3)

	err := pm.SetDownloadPath(context.Background(), &scriptedPrompter{dirs: []string{""}}, nil)

	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, start, pm.Path())
}

func TestSetDownloadPath_TooManyAttempts(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	pm := NewPathManager(root, 2)
	prompt := &scriptedPrompter{dirs: []string{target}}

	err := pm.SetDownloadPath(context.Background(), prompt, nil)

	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, 2, prompt.picks)
	assert.Equal(t, 2, prompt.confirms)
	assert.Equal(t, target, pm.Path(), "last relocation stays in effect")
}

func TestSetDownloadPath_PickerError(t *testing.T) {
	boom := errors.New("no display")
	pm := NewPathManager(t.TempDir(), 3)

	err := pm.SetDownloadPath(context.Background(), &scriptedPrompter{dirErr: boom}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSetDownloadPath_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prompt := &scriptedPrompter{dirs: []string{t.TempDir()}}

	err := NewPathManager(t.TempDir(), 3).SetDownloadPath(ctx, prompt, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, prompt.picks)
}

func TestManager_SetDownloadPath(t *testing.T) {
	root := t.TempDir()
	m, _, _, _ := newTestManager(t, filepath.Join(root, "a"))
	p, _ := m.AddURL("http://example.com/x.bin", "X", "")
	require.NoError(t, m.Download(context.Background(), p))

	prompt := &scriptedPrompter{dirs: []string{filepath.Join(root, "b")}, answers: []bool{true}}
	require.NoError(t, m.SetDownloadPath(context.Background(), prompt))

	assert.Equal(t, filepath.Join(root, "b"), m.DownloadDir())
	assert.FileExists(t, filepath.Join(root, "b", "x.bin"))
	assert.NoDirExists(t, filepath.Join(root, "a"))
}

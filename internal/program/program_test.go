package program

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progkeep/progkeep/internal/engine/events"
)

// stubFetcher writes a fixed file into the requested directory.
type stubFetcher struct {
	filename string
	content  string
	err      error
	calls    int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, dir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, f.filename)
	if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type stubLauncher struct {
	opened []string
	err    error
}

func (l *stubLauncher) Open(path string) error {
	l.opened = append(l.opened, path)
	return l.err
}

func downloaded(t *testing.T, dir string) (*Program, *stubFetcher) {
	t.Helper()
	f := &stubFetcher{filename: "a.txt", content: "hello"}
	p := New("http://example.com/a.txt", dir, WithName("A"))
	require.NoError(t, p.Download(context.Background(), f))
	return p, f
}

func TestNew_Defaults(t *testing.T) {
	p := New("http://example.com/x", "/tmp/dl")

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, DefaultDescription, p.Description)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, NotDownloadedFilename, p.Filename)
	assert.Empty(t, p.LocalPath)
	assert.False(t, p.IsDownloaded())
}

func TestNew_EmptyOptionsKeepDefaults(t *testing.T) {
	p := New("http://example.com/x", "/tmp/dl", WithName(""), WithDescription(""))
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, DefaultDescription, p.Description)
}

func TestDownload_Success(t *testing.T) {
	dir := t.TempDir()
	p, f := downloaded(t, dir)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, StatusDownloaded, p.Status)
	assert.Equal(t, "a.txt", p.Filename)
	assert.Equal(t, filepath.Join(dir, "a.txt"), p.LocalPath)
	assert.True(t, p.IsDownloaded())
}

func TestDownload_Idempotent(t *testing.T) {
	p, f := downloaded(t, t.TempDir())
	before := *p

	require.NoError(t, p.Download(context.Background(), f))

	assert.Equal(t, 1, f.calls, "second download must not fetch again")
	assert.Equal(t, before, *p)
}

func TestDownload_Failure(t *testing.T) {
	ch := make(chan any, 16)
	boom := errors.New("connection refused")
	p := New("http://example.com/a.txt", t.TempDir(), WithEvents(ch))

	err := p.Download(context.Background(), &stubFetcher{err: boom})

	require.Error(t, err)
	var derr *DownloadError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, p.ID, derr.ProgramID)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusError, p.Status)
	assert.False(t, p.IsDownloaded())

	var sawError bool
	for len(ch) > 0 {
		if _, ok := (<-ch).(events.DownloadErrorMsg); ok {
			sawError = true
		}
	}
	assert.True(t, sawError, "expected a DownloadErrorMsg")
}

func TestDownload_RefetchesWhenFileLost(t *testing.T) {
	p, f := downloaded(t, t.TempDir())
	require.NoError(t, os.Remove(p.LocalPath))
	assert.False(t, p.IsDownloaded())

	require.NoError(t, p.Download(context.Background(), f))
	assert.Equal(t, 2, f.calls)
	assert.True(t, p.IsDownloaded())
}

func TestSetStatus_EmitsEvent(t *testing.T) {
	ch := make(chan any, 4)
	p := New("http://example.com/a", "/tmp", WithEvents(ch))

	p.SetStatus(StatusError)
	p.SetStatus(StatusError)

	require.Len(t, ch, 2, "every assignment is reported")
	msg := (<-ch).(events.StatusChangedMsg)
	assert.Equal(t, "PENDING", msg.From)
	assert.Equal(t, "ERROR", msg.To)
}

func TestDelete(t *testing.T) {
	p, _ := downloaded(t, t.TempDir())
	path := p.LocalPath

	require.NoError(t, p.Delete())

	assert.Empty(t, p.LocalPath)
	assert.Equal(t, StatusRemoved, p.Status)
	assert.NoFileExists(t, path)
	assert.False(t, p.IsDownloaded())

	err := p.Delete()
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDelete_MissingFileKeepsState(t *testing.T) {
	p, _ := downloaded(t, t.TempDir())
	path := p.LocalPath
	require.NoError(t, os.Remove(path))

	err := p.Delete()

	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, path, p.LocalPath)
	assert.Equal(t, StatusDownloaded, p.Status)
}

func TestExecute(t *testing.T) {
	l := &stubLauncher{}

	notYet := New("http://example.com/a", t.TempDir())
	assert.ErrorIs(t, notYet.Execute(l), ErrFileNotFound)
	assert.Empty(t, l.opened)

	p, _ := downloaded(t, t.TempDir())
	require.NoError(t, p.Execute(l))
	assert.Equal(t, []string{p.LocalPath}, l.opened)

	l.err = errors.New("no handler")
	assert.ErrorIs(t, p.Execute(l), l.err)
}

func TestMove(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	newDir := filepath.Join(root, "new")
	p, _ := downloaded(t, oldDir)
	oldPath := p.LocalPath

	require.NoError(t, p.Move(newDir))

	assert.FileExists(t, filepath.Join(newDir, "a.txt"))
	assert.NoFileExists(t, oldPath)
	assert.NoDirExists(t, oldDir, "previous directory is removed")
	assert.Equal(t, newDir, p.DownloadDir)
	assert.Equal(t, filepath.Join(newDir, "a.txt"), p.LocalPath)
	assert.Equal(t, StatusDownloaded, p.Status)
	assert.True(t, p.IsDownloaded())
}

func TestMove_SameDirectoryIsNoop(t *testing.T) {
	dir := t.TempDir()
	p, _ := downloaded(t, dir)
	path := p.LocalPath

	require.NoError(t, p.Move(dir))

	assert.Equal(t, path, p.LocalPath)
	assert.DirExists(t, dir)
	assert.FileExists(t, path)
}

func TestMove_NestedDirectoryRejected(t *testing.T) {
	dir := t.TempDir()
	p, _ := downloaded(t, dir)
	path := p.LocalPath

	err := p.Move(filepath.Join(dir, "sub"))

	assert.ErrorIs(t, err, ErrNestedDirectory)
	assert.FileExists(t, path)
	assert.Equal(t, dir, p.DownloadDir)
}

func TestMove_NotDownloaded(t *testing.T) {
	p := New("http://example.com/a", t.TempDir())
	assert.ErrorIs(t, p.Move(t.TempDir()), ErrFileNotFound)
}

func TestMove_DestinationOccupied(t *testing.T) {
	root := t.TempDir()
	p, _ := downloaded(t, filepath.Join(root, "old"))
	newDir := filepath.Join(root, "new")
	require.NoError(t, os.MkdirAll(newDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(newDir, "a.txt"), []byte("other"), 0o644))

	err := p.Move(newDir)

	assert.ErrorIs(t, err, os.ErrExist)
	assert.True(t, p.IsDownloaded())
	assert.Equal(t, filepath.Join(root, "old", "a.txt"), p.LocalPath)
}

func TestRelocate_KeepsPreviousDirectory(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	p, _ := downloaded(t, oldDir)

	prev, err := p.Relocate(filepath.Join(root, "new"))

	require.NoError(t, err)
	assert.Equal(t, oldDir, prev)
	assert.DirExists(t, oldDir)
	assert.True(t, p.IsDownloaded())
}

// IsDownloaded must match the presence of the file after every operation.
func TestIsDownloaded_TracksFileAcrossOperations(t *testing.T) {
	root := t.TempDir()
	f := &stubFetcher{filename: "tool.exe", content: "bin"}
	p := New("http://example.com/tool.exe", filepath.Join(root, "a"))

	check := func(stage string) {
		t.Helper()
		exists := p.LocalPath != "" && fileExists(p.LocalPath)
		assert.Equal(t, exists, p.IsDownloaded(), stage)
	}

	check("new")
	require.NoError(t, p.Download(context.Background(), f))
	check("download")
	require.NoError(t, p.Move(filepath.Join(root, "b")))
	check("move")
	require.NoError(t, p.Delete())
	check("delete")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestInfo(t *testing.T) {
	p := New("http://example.com/a.txt", "/tmp/dl", WithName("A"), WithDescription("desc"))
	info := p.Info()

	assert.Contains(t, info, "[Name]: A")
	assert.Contains(t, info, "[Description]: desc")
	assert.Contains(t, info, "[URL]: http://example.com/a.txt")
	assert.Contains(t, info, "[Folder]: /tmp/dl")
	assert.Contains(t, info, "[Executable]: None")
	assert.Contains(t, info, "[Filename]: NotDownloaded.txt")
	assert.NotContains(t, info, "[Size]")

	d, _ := downloaded(t, t.TempDir())
	assert.Contains(t, d.Info(), "[Size]: 5 B")
}

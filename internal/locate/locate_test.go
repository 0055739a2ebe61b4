package locate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/transcribe-latest/internal/logging"
)

var exts = []string{".mp3", ".mp4", ".wav", ".flac", ".m4a", ".ogg", ".mov", ".avi"}

// touch creates a file and sets its modification time.
func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("media"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestLatestPicksNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "old.mp3"), base)
	touch(t, filepath.Join(dir, "middle.wav"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "newest.mov"), base.Add(2*time.Hour))
	touch(t, filepath.Join(dir, "ignored.txt"), base.Add(3*time.Hour))

	got, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, filepath.Join(dir, "newest.mov"), got.Path)
	assert.Equal(t, ".mov", got.Ext)
	assert.Equal(t, "newest.mov", got.Name())
	assert.True(t, got.ModTime.Equal(base.Add(2*time.Hour)))
}

func TestLatestEmptyDir(t *testing.T) {
	_, ok, err := Latest(t.TempDir(), exts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestNoRecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "notes.txt"), now)
	touch(t, filepath.Join(dir, "cover.jpg"), now)

	_, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestExtensionIsCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "LOUD.MP3"), time.Now())

	_, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AUDIOS")

	_, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLatestTieBreakIsLexicographic(t *testing.T) {
	dir := t.TempDir()
	same := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	touch(t, filepath.Join(dir, "b.wav"), same)
	touch(t, filepath.Join(dir, "a.mp3"), same)
	touch(t, filepath.Join(dir, "c.flac"), same)

	for range 5 {
		got, ok, err := Latest(dir, exts)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "a.mp3"), got.Path)
	}
}

func TestLatestIgnoresDirectoriesAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "real.mp3"), base)
	touch(t, filepath.Join(dir, ".hidden.mp3"), base.Add(time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp4"), 0o755))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "folder.mp4"), base.Add(2*time.Hour), base.Add(2*time.Hour)))

	got, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "real.mp3"), got.Path)
}

func TestLatestFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, filepath.Join(dir, "local.mp3"), base)
	target := filepath.Join(other, "linked.wav")
	touch(t, target, base.Add(time.Hour))
	if err := os.Symlink(target, filepath.Join(dir, "linked.wav")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(other, "gone.mp3"), filepath.Join(dir, "dangling.mp3")))

	got, ok, err := Latest(dir, exts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "linked.wav"), got.Path)
}

func TestLatestCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	base := time.Now()
	touch(t, filepath.Join(dir, "a.mp3"), base.Add(time.Hour))
	touch(t, filepath.Join(dir, "b.opus"), base)

	got, ok, err := Latest(dir, []string{".opus"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b.opus", got.Name())
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing")
	require.NoError(t, os.Mkdir(existing, 0o755))
	missing := filepath.Join(root, "nested", "missing")

	require.NoError(t, EnsureDirs(logging.Discard(), existing, missing))

	for _, dir := range []string{existing, missing} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirsFailsOnFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := EnsureDirs(logging.Discard(), filepath.Join(file, "child"))
	assert.Error(t, err)
}

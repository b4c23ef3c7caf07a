package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("cat|кот\n"), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestSweeper_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := writeFile(t, dir, "old.txt", time.Now().Add(-48*time.Hour))
	fresh := writeFile(t, dir, "new.txt", time.Now().Add(-time.Hour))

	New(dir, 24*time.Hour, zap.NewNop()).Sweep()

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}

func TestSweeper_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "keep")
	require.NoError(t, os.Mkdir(nested, 0o755))
	require.NoError(t, os.Chtimes(nested, time.Now().Add(-48*time.Hour), time.Now().Add(-48*time.Hour)))

	New(dir, 24*time.Hour, zap.NewNop()).Sweep()

	assert.DirExists(t, nested)
}

func TestSweeper_MissingDirectoryIsNotAnError(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"), 24*time.Hour, zap.NewNop())
	assert.NotPanics(t, s.Sweep)
}

func TestSweeper_BoundaryFileIsKept(t *testing.T) {
	dir := t.TempDir()
	// Just inside the retention window.
	kept := writeFile(t, dir, "edge.txt", time.Now().Add(-24*time.Hour+time.Minute))

	New(dir, 24*time.Hour, zap.NewNop()).Sweep()

	assert.FileExists(t, kept)
}

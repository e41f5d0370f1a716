package infra

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "app.asar"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("y"), 0644))
}

func TestFileSystem_Exists(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileSystemManager()

	assert.True(t, fs.Exists(dir))
	assert.False(t, fs.Exists(filepath.Join(dir, "missing")))
}

func TestFileSystem_ExistsDanglingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), link))

	assert.True(t, NewFileSystemManager().Exists(link))
}

func TestFileSystem_RemoveAll(t *testing.T) {
	root := filepath.Join(t.TempDir(), "release")
	makeTree(t, root)
	fs := NewFileSystemManager()

	require.NoError(t, fs.RemoveAll(root))
	assert.False(t, fs.Exists(root))

	// Absent path is a no-op success
	assert.NoError(t, fs.RemoveAll(root))
}

func TestFileSystem_RemoveAllPartial(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs unix permission semantics as non-root")
	}
	root := filepath.Join(t.TempDir(), "release")
	makeTree(t, root)
	locked := filepath.Join(root, "a")
	require.NoError(t, os.Chmod(locked, 0555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	err := NewFileSystemManager().RemoveAll(root)

	assert.Error(t, err)
	assert.DirExists(t, root)
}

func TestFileSystem_RenameAndGlob(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "dist")
	makeTree(t, root)
	fs := NewFileSystemManager()
	namer := NewTombstoneNamerWithClock(func() time.Time { return fixedTime })

	tombstone := namer.Name(root)
	require.NoError(t, fs.Rename(root, tombstone))
	assert.False(t, fs.Exists(root))
	assert.FileExists(t, filepath.Join(tombstone, "top.txt"))

	matches, err := fs.Glob(namer.Pattern(root))
	require.NoError(t, err)
	assert.Equal(t, []string{tombstone}, matches)
}

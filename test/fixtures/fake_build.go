// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FakeBuildTree creates packaging output directories mimicking an electron build.
type FakeBuildTree struct {
	Root string
}

// NewFakeBuildTree creates a new fake build tree generator rooted at root.
func NewFakeBuildTree(root string) *FakeBuildTree {
	return &FakeBuildTree{Root: root}
}

// Path returns the absolute path of an output directory.
func (f *FakeBuildTree) Path(dir string) string {
	return filepath.Join(f.Root, dir)
}

// Create creates each output directory with a typical unpacked layout.
func (f *FakeBuildTree) Create(dirs ...string) error {
	for _, dir := range dirs {
		if err := populate(f.Path(dir)); err != nil {
			return err
		}
	}
	return nil
}

// CreateTombstone creates a leftover from an earlier run next to dir.
func (f *FakeBuildTree) CreateTombstone(dir, suffix string) (string, error) {
	path := f.Path(dir) + ".reclaim-" + suffix
	return path, populate(path)
}

// Lock makes dir undeletable in place while leaving it renamable:
// its resources subdirectory becomes read-only, so its entries cannot be unlinked.
// Has no effect for root, which ignores permission bits.
func (f *FakeBuildTree) Lock(dir string) error {
	return os.Chmod(filepath.Join(f.Path(dir), "win-unpacked", "resources"), 0555)
}

// Unlock restores write permission on every directory under path.
func Unlock(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = os.Chmod(p, 0755)
		}
		return nil
	})
}

// Exists checks if an output directory exists.
func (f *FakeBuildTree) Exists(dir string) bool {
	_, err := os.Lstat(f.Path(dir))
	return err == nil
}

// Cleanup unlocks and removes everything under the root.
func (f *FakeBuildTree) Cleanup() error {
	_ = Unlock(f.Root)
	return os.RemoveAll(f.Root)
}

func populate(path string) error {
	files := map[string]string{
		"win-unpacked/resources/app.asar": "asar",
		"win-unpacked/MyApp.exe":          "MZ",
		"latest.yml":                      "version: 1.0.0\n",
		".marker":                         "test",
	}
	for name, content := range files {
		p := filepath.Join(path, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

package infra

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// FileSystemManagerImpl implements domain.FileSystemManager.
type FileSystemManagerImpl struct{}

// NewFileSystemManager creates a new filesystem manager.
func NewFileSystemManager() domain.FileSystemManager {
	return &FileSystemManagerImpl{}
}

// Exists checks if a path exists. Dangling symlinks count as present.
func (fm *FileSystemManagerImpl) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// RemoveAll removes a file or directory recursively.
// An absent path is a no-op success; any entry left behind is an error.
func (fm *FileSystemManagerImpl) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	if fm.Exists(path) {
		return domain.ErrStillPresent
	}
	return nil
}

// Rename moves oldPath to newPath.
func (fm *FileSystemManagerImpl) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Glob returns paths matching pattern.
func (fm *FileSystemManagerImpl) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// Ensure FileSystemManagerImpl implements domain.FileSystemManager.
var _ domain.FileSystemManager = (*FileSystemManagerImpl)(nil)

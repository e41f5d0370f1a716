//go:build windows

package daemon

import (
	"errors"
	"io/fs"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// scheduleRemovalAtReboot queues every entry under root for deletion at next boot.
// Children are queued before parents so directories are empty when their turn comes.
// Needs administrator rights; antivirus and indexers often hold handles otherwise.
func scheduleRemovalAtReboot(root string) error {
	var paths []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Keep queueing what we can reach
		}
		paths = append(paths, path)
		return nil
	})

	var errs []error
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	for i := len(paths) - 1; i >= 0; i-- {
		p, err := windows.UTF16PtrFromString(paths[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := windows.MoveFileEx(p, nil, windows.MOVEFILE_DELAY_UNTIL_REBOOT); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

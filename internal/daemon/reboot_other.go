//go:build !windows

package daemon

// scheduleRemovalAtReboot has no equivalent outside windows.
func scheduleRemovalAtReboot(root string) error {
	return ErrRebootUnsupported
}

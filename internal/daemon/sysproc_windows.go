//go:build windows

package daemon

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// detachedAttrs returns the process attributes for a detached child.
// CI runners kill their job object on step exit, so breaking away is tried first;
// jobs without JOB_OBJECT_LIMIT_BREAKAWAY_OK reject it and the plain variant is used.
func detachedAttrs() []*syscall.SysProcAttr {
	base := uint32(windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS)
	return []*syscall.SysProcAttr{
		{CreationFlags: base | windows.CREATE_BREAKAWAY_FROM_JOB, HideWindow: true},
		{CreationFlags: base, HideWindow: true},
	}
}

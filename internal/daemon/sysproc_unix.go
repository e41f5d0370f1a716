//go:build !windows

package daemon

import "syscall"

// detachedAttrs returns the process attributes for a detached child.
func detachedAttrs() []*syscall.SysProcAttr {
	return []*syscall.SysProcAttr{
		{Setsid: true}, // Create new session (detach from terminal and process group)
	}
}

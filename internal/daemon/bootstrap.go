// Package daemon implements the detached background removal task:
// spawning it independent of the caller, and the removal loop it runs.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// Spawner starts detached processes.
// The child gets its own session (unix) or process group (windows), no stdio,
// and a working directory that cannot be inside a reclaimed path.
type Spawner struct {
	workDir string
	attrs   func() []*syscall.SysProcAttr
}

// NewSpawner creates a spawner whose children run in workDir.
func NewSpawner(workDir string) *Spawner {
	return &Spawner{workDir: workDir, attrs: detachedAttrs}
}

// StartDetached launches name with args and returns immediately.
// Attribute variants are tried in order; windows job objects may refuse breakaway.
func (s *Spawner) StartDetached(name string, args ...string) (int, error) {
	var errs []error
	for _, attr := range s.attrs() {
		cmd := exec.Command(name, args...)
		cmd.SysProcAttr = attr
		cmd.Dir = s.workDir

		// No stdin/stdout/stderr - fully detached
		cmd.Stdin = nil
		cmd.Stdout = nil
		cmd.Stderr = nil

		if err := cmd.Start(); err != nil {
			errs = append(errs, err)
			continue
		}

		pid := cmd.Process.Pid
		// Never waited on; the child must outlive us
		_ = cmd.Process.Release()
		return pid, nil
	}
	return 0, fmt.Errorf("start %s: %w", name, errors.Join(errs...))
}

// SelfExecutable returns the path of the running binary for self-exec.
func SelfExecutable() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", err
	}
	return executable, nil
}

// SetProcessName changes argv[0] so the detached task is recognisable in logs.
// The Go runtime has no setproctitle, so ps output on macOS may not change.
func SetProcessName(name string) {
	if len(os.Args) > 0 {
		os.Args[0] = name
	}
}

// Ensure Spawner implements domain.DetachedSpawner.
var _ domain.DetachedSpawner = (*Spawner)(nil)

// Package infra implements infrastructure concerns (process, filesystem, platform commands).
package infra

import (
	"errors"
	"os"
	"path"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// maxAncestorDepth bounds the parent walk in case of PID reuse cycles.
const maxAncestorDepth = 64

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
// The current process and its ancestors are never reported by FindByName,
// so a pipeline running under a matching runtime host cannot kill itself.
type ProcessManagerImpl struct {
	protected map[int]bool
}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessManager {
	return &ProcessManagerImpl{protected: selfAndAncestors()}
}

// NewProcessManagerWithProtected creates a process manager that also skips the given PIDs (for testing).
func NewProcessManagerWithProtected(pids ...int) *ProcessManagerImpl {
	protected := selfAndAncestors()
	for _, pid := range pids {
		protected[pid] = true
	}
	return &ProcessManagerImpl{protected: protected}
}

// FindByName returns PIDs of processes whose name matches sig.
func (pm *ProcessManagerImpl) FindByName(sig domain.ProcessSignature) ([]int, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var found []int
	for _, p := range procs {
		pid := int(p.Pid)
		if pm.protected[pid] {
			continue
		}

		name, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}

		if MatchesSignature(name, sig) {
			found = append(found, pid)
		}
	}

	return found, nil
}

// Kill terminates a process by PID.
func (pm *ProcessManagerImpl) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return err
	}
	return p.Kill()
}

// IsRunning checks if a PID exists and is running.
func (pm *ProcessManagerImpl) IsRunning(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// MatchesSignature reports whether a process name matches a signature.
// Comparison is case-insensitive and ignores a trailing ".exe" on either side.
func MatchesSignature(processName string, sig domain.ProcessSignature) bool {
	want := normalizeProcessName(sig.Name)
	if want == "" {
		return false
	}
	name := normalizeProcessName(processName)

	if strings.ContainsAny(want, "*?[") {
		ok, err := path.Match(want, name)
		return err == nil && ok
	}
	return name == want
}

// IsProcessGone reports whether err means the process already exited.
func IsProcessGone(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH)
}

func normalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}

// selfAndAncestors returns the current PID and every parent up to init.
func selfAndAncestors() map[int]bool {
	protected := map[int]bool{os.Getpid(): true}

	pid := int32(os.Getppid())
	for i := 0; i < maxAncestorDepth && pid > 1; i++ {
		if protected[int(pid)] {
			break
		}
		protected[int(pid)] = true

		p, err := process.NewProcess(pid)
		if err != nil {
			break
		}
		ppid, err := p.Ppid()
		if err != nil {
			break
		}
		pid = ppid
	}
	return protected
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)

package domain

import (
	"context"
	"time"
)

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes matching the signature.
	FindByName(sig ProcessSignature) ([]int, error)

	// Kill terminates a process by PID (SIGKILL / TerminateProcess).
	Kill(pid int) error

	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool
}

// FileSystemManager handles filesystem operations.
type FileSystemManager interface {
	// Exists checks if a path exists (symlinks are not followed).
	Exists(path string) bool

	// RemoveAll removes a file or directory recursively.
	RemoveAll(path string) error

	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error

	// Glob returns paths matching pattern.
	Glob(pattern string) ([]string, error)
}

// ForcedRemovalStrategy is one OS-native forced recursive-delete command.
// Implementations: rm (unix), rd and Remove-Item (windows).
type ForcedRemovalStrategy interface {
	// Name returns the strategy name (e.g., "rm", "rd", "powershell").
	Name() string

	// IsAvailable returns true if the command can be used on this system.
	IsAvailable() bool

	// Remove deletes path recursively, ignoring open-handle prompts.
	Remove(ctx context.Context, path string) error
}

// DetachedSpawner starts processes whose lifetime is independent of the caller.
type DetachedSpawner interface {
	// StartDetached launches name with args and returns its PID without waiting.
	StartDetached(name string, args ...string) (int, error)
}

// PlatformAdapter is the capability set the reclamation core runs against.
// One variant is selected per host at construction time.
type PlatformAdapter interface {
	// TerminateProcessByName kills every process matching sig.
	// A signature with no running process is success with Terminated=false.
	TerminateProcessByName(ctx context.Context, sig ProcessSignature) TerminationResult

	// Exists checks whether path is present.
	Exists(path string) bool

	// RemoveDirectory runs the native recursive-delete primitive.
	// Partial removal is reported as failure.
	RemoveDirectory(path string) error

	// ForceRemoveDirectory runs the OS's own forced recursive-delete command.
	ForceRemoveDirectory(ctx context.Context, path string) error

	// RenamePath moves oldPath to newPath.
	RenamePath(oldPath, newPath string) error

	// Glob lists paths matching pattern (used to find stale tombstones).
	Glob(pattern string) ([]string, error)

	// ScheduleDetachedRemoval spawns a task that removes path after delay,
	// outliving the calling process.
	ScheduleDetachedRemoval(path string, delay time.Duration) error
}

// TombstoneNamer produces unique sibling names for rename-then-delete.
type TombstoneNamer interface {
	// Name returns a sibling path for path that does not collide with earlier runs.
	Name(path string) string

	// Pattern returns a glob matching every tombstone ever produced for path.
	Pattern(path string) string
}

// Waiter imposes the settle delay after termination requests.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Terminator stops known interfering processes by name.
type Terminator interface {
	TerminateKnownInterferers(ctx context.Context, sigs []ProcessSignature) []TerminationResult
}

// Scheduler hands paths to detached background removal.
type Scheduler interface {
	// Schedule returns nil when a detached task is (or already was) responsible for path.
	Schedule(path string, minDelay time.Duration) error
}

// Reclaimer runs the escalation chain for one target.
type Reclaimer interface {
	Reclaim(ctx context.Context, target TargetPath) ReclamationOutcome
}

// Recorder observes session events for metrics.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveAttempt(attempt RemovalAttempt)
	ObserveOutcome(outcome ReclamationOutcome)
	ObserveTermination(result TerminationResult)
	ObserveSession(report SessionReport)
}

// ProfileStore provides access to built-in target/signature profiles.
type ProfileStore interface {
	// GetByID resolves a profile into a session plan.
	GetByID(id string, opts ProfileOptions) (*SessionPlan, error)

	// List returns profile IDs.
	List() []string
}

// ProfileOptions are the project specifics a profile is resolved against.
type ProfileOptions struct {
	Root    string // Project root; relative target dirs are joined to it
	AppName string // Packaged application executable, killed as an interferer
}

// SessionPlan is what a profile resolves to: the inputs of one session.
type SessionPlan struct {
	ProfileID  string
	Targets    []TargetPath
	Signatures []ProcessSignature
}

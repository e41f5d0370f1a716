package infra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// DeferredRemoveCommand is the hidden CLI command the detached task runs.
const DeferredRemoveCommand = "deferred-remove"

// DeferredTaskOptions configures the detached removal task's own retry budget.
type DeferredTaskOptions struct {
	Executable string        // Binary to self-exec (usually os.Executable())
	Retries    int           // Removal rounds after the initial delay
	Interval   time.Duration // Pause between rounds
}

// PlatformAdapterImpl implements domain.PlatformAdapter on top of the
// process manager, filesystem manager, forced-delete strategies and a detached spawner.
type PlatformAdapterImpl struct {
	platform  *PlatformConfig
	processes domain.ProcessManager
	fs        domain.FileSystemManager
	forced    *ForcedRemover
	spawner   domain.DetachedSpawner
	deferred  DeferredTaskOptions
	logger    *zap.Logger
}

// NewPlatformAdapter creates the adapter variant for platform.
// Forced-delete strategies are resolved here, once.
func NewPlatformAdapter(
	platform *PlatformConfig,
	pm domain.ProcessManager,
	fs domain.FileSystemManager,
	runner CommandRunner,
	spawner domain.DetachedSpawner,
	deferred DeferredTaskOptions,
	logger *zap.Logger,
) *PlatformAdapterImpl {
	return &PlatformAdapterImpl{
		platform:  platform,
		processes: pm,
		fs:        fs,
		forced:    NewForcedRemover(logger, fs.Exists, platform.ForcedStrategies(runner)...),
		spawner:   spawner,
		deferred:  deferred,
		logger:    logger,
	}
}

// Platform returns the platform variant this adapter was built for.
func (a *PlatformAdapterImpl) Platform() *PlatformConfig {
	return a.platform
}

// ForcedRemover exposes the resolved forced-delete strategies.
func (a *PlatformAdapterImpl) ForcedRemover() *ForcedRemover {
	return a.forced
}

// TerminateProcessByName kills every process matching sig.
// Processes that exit on their own between lookup and kill are not errors.
func (a *PlatformAdapterImpl) TerminateProcessByName(ctx context.Context, sig domain.ProcessSignature) domain.TerminationResult {
	result := domain.TerminationResult{Signature: sig}

	pids, err := a.processes.FindByName(sig)
	if err != nil {
		result.Err = fmt.Errorf("find %q: %w", sig.Name, err)
		return result
	}

	var errs []error
	for _, pid := range pids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := a.processes.Kill(pid); err != nil {
			if IsProcessGone(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("kill %d: %w", pid, err))
			continue
		}
		result.PIDs = append(result.PIDs, pid)
	}

	for _, pid := range result.PIDs {
		if a.processes.IsRunning(pid) {
			a.logger.Warn("process still running after kill",
				zap.String("signature", sig.Name),
				zap.Int("pid", pid))
		}
	}

	result.Terminated = len(result.PIDs) > 0
	result.Err = errors.Join(errs...)
	return result
}

// Exists checks whether path is present.
func (a *PlatformAdapterImpl) Exists(path string) bool {
	return a.fs.Exists(path)
}

// RemoveDirectory runs os.RemoveAll; partial removal is reported as failure.
func (a *PlatformAdapterImpl) RemoveDirectory(path string) error {
	return a.fs.RemoveAll(path)
}

// ForceRemoveDirectory runs the platform's forced-delete commands.
func (a *PlatformAdapterImpl) ForceRemoveDirectory(ctx context.Context, path string) error {
	return a.forced.Remove(ctx, path)
}

// RenamePath moves oldPath to newPath.
func (a *PlatformAdapterImpl) RenamePath(oldPath, newPath string) error {
	return a.fs.Rename(oldPath, newPath)
}

// Glob lists paths matching pattern.
func (a *PlatformAdapterImpl) Glob(pattern string) ([]string, error) {
	return a.fs.Glob(pattern)
}

// ScheduleDetachedRemoval self-executes the hidden deferred-remove command detached.
func (a *PlatformAdapterImpl) ScheduleDetachedRemoval(path string, delay time.Duration) error {
	if a.spawner == nil || a.deferred.Executable == "" {
		return fmt.Errorf("%w: no executable configured", domain.ErrSpawnFailed)
	}

	args := DeferredRemoveArgs(path, delay, a.deferred, a.platform.DeferredLogPath)
	pid, err := a.spawner.StartDetached(a.deferred.Executable, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSpawnFailed, err)
	}

	a.logger.Info("spawned deferred removal task",
		zap.String("path", path),
		zap.Int("pid", pid),
		zap.Duration("delay", delay))
	return nil
}

// DeferredRemoveArgs builds the argument list of the hidden deferred-remove command.
func DeferredRemoveArgs(path string, delay time.Duration, opts DeferredTaskOptions, logPath string) []string {
	args := []string{
		DeferredRemoveCommand,
		"--path", path,
		"--delay", delay.String(),
		"--retries", strconv.Itoa(opts.Retries),
		"--interval", opts.Interval.String(),
	}
	if logPath != "" {
		args = append(args, "--log-file", logPath)
	}
	return args
}

// Ensure PlatformAdapterImpl implements domain.PlatformAdapter.
var _ domain.PlatformAdapter = (*PlatformAdapterImpl)(nil)

package daemon

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

var (
	// ErrBudgetExhausted means the path survived every removal round.
	ErrBudgetExhausted = errors.New("removal retry budget exhausted")

	// ErrRebootUnsupported means the platform cannot queue deletion for next boot.
	ErrRebootUnsupported = errors.New("delete-at-reboot not supported on this platform")
)

// ForcedRemover runs the platform's forced-delete commands.
type ForcedRemover interface {
	Remove(ctx context.Context, path string) error
}

// RemoverConfig holds the detached task's schedule.
type RemoverConfig struct {
	Path     string
	Delay    time.Duration // Initial sleep past the expected lock-release window
	Retries  int           // Removal rounds; at least one always runs
	Interval time.Duration // Pause between rounds
}

// DefaultRemoverConfig returns default detached task timing for path.
func DefaultRemoverConfig(path string) RemoverConfig {
	return RemoverConfig{
		Path:     path,
		Delay:    5 * time.Second,
		Retries:  5,
		Interval: 2 * time.Second,
	}
}

// Remover is the body of the detached removal task.
// It sleeps, retries direct then forced removal, and as a last resort
// queues the tree for deletion at reboot where the platform allows it.
type Remover struct {
	config RemoverConfig
	fs     domain.FileSystemManager
	forced ForcedRemover
	reboot func(path string) error
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

// NewRemover creates a remover for the current platform.
func NewRemover(config RemoverConfig, fs domain.FileSystemManager, forced ForcedRemover, logger *zap.Logger) *Remover {
	return NewRemoverWithDeps(config, fs, forced, scheduleRemovalAtReboot, sleepContext, logger)
}

// NewRemoverWithDeps creates a remover with injectable reboot and sleep hooks (for testing).
func NewRemoverWithDeps(
	config RemoverConfig,
	fs domain.FileSystemManager,
	forced ForcedRemover,
	reboot func(path string) error,
	sleep func(ctx context.Context, d time.Duration) error,
	logger *zap.Logger,
) *Remover {
	return &Remover{
		config: config,
		fs:     fs,
		forced: forced,
		reboot: reboot,
		sleep:  sleep,
		logger: logger,
	}
}

// Run removes the configured path, returning nil once it is absent.
// Callers in the detached process log and discard the error.
func (r *Remover) Run(ctx context.Context) error {
	path := r.config.Path
	r.logger.Info("deferred removal task started",
		zap.String("path", path),
		zap.Duration("delay", r.config.Delay),
		zap.Int("retries", r.config.Retries))

	if err := r.sleep(ctx, r.config.Delay); err != nil {
		return err
	}

	rounds := r.config.Retries
	if rounds < 1 {
		rounds = 1
	}

	for round := 1; round <= rounds; round++ {
		if r.removeOnce(ctx, path, round) {
			r.logger.Info("deferred removal complete",
				zap.String("path", path),
				zap.Int("round", round))
			return nil
		}

		if round < rounds {
			if err := r.sleep(ctx, r.config.Interval); err != nil {
				return err
			}
		}
	}

	if r.reboot != nil {
		if err := r.reboot(path); err != nil {
			r.logger.Warn("could not queue removal at reboot",
				zap.String("path", path),
				zap.Error(err))
		} else {
			r.logger.Info("queued removal at next reboot", zap.String("path", path))
		}
	}

	r.logger.Warn("deferred removal gave up", zap.String("path", path))
	return ErrBudgetExhausted
}

// removeOnce runs one direct-then-forced round and reports whether path is gone.
func (r *Remover) removeOnce(ctx context.Context, path string, round int) bool {
	if !r.fs.Exists(path) {
		return true
	}

	err := r.fs.RemoveAll(path)
	if err == nil {
		return true
	}
	r.logger.Debug("direct removal failed",
		zap.String("path", path),
		zap.Int("round", round),
		zap.Error(err))

	if r.forced == nil {
		return false
	}
	if err := r.forced.Remove(ctx, path); err != nil {
		r.logger.Debug("forced removal failed",
			zap.String("path", path),
			zap.Int("round", round),
			zap.Error(err))
		return false
	}
	return !r.fs.Exists(path)
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

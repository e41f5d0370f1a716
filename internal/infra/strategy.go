package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// RmStrategy handles forced removal with rm -rf (unix)
type RmStrategy struct {
	runner CommandRunner
	rmPath string
}

// NewRmStrategy creates a new rm strategy
func NewRmStrategy(runner CommandRunner) *RmStrategy {
	rmPath, err := runner.LookPath("rm")
	if err != nil {
		// Try the usual location
		if _, err := runner.LookPath("/bin/rm"); err == nil {
			rmPath = "/bin/rm"
		}
	}
	return &RmStrategy{runner: runner, rmPath: rmPath}
}

func (s *RmStrategy) Name() string {
	return "rm"
}

func (s *RmStrategy) IsAvailable() bool {
	return s.rmPath != ""
}

func (s *RmStrategy) Remove(ctx context.Context, path string) error {
	// "--" so a target named like a flag is never parsed as one
	return runOpaque(ctx, s.runner, s.rmPath, "-rf", "--", path)
}

// cmdMetaChars are characters cmd.exe interprets in an unquoted argument.
const cmdMetaChars = "&|^<>%\"!"

// ErrUnsafeShellPath means a path cannot be passed to cmd.exe safely.
var ErrUnsafeShellPath = errors.New("path contains cmd.exe metacharacters")

// RdStrategy handles forced removal with cmd.exe rd /S /Q (windows).
// rd exits 0 on some partial failures, so callers must verify absence.
type RdStrategy struct {
	runner  CommandRunner
	cmdPath string
}

// NewRdStrategy creates a new rd strategy
func NewRdStrategy(runner CommandRunner) *RdStrategy {
	cmdPath, _ := runner.LookPath("cmd")
	return &RdStrategy{runner: runner, cmdPath: cmdPath}
}

func (s *RdStrategy) Name() string {
	return "rd"
}

func (s *RdStrategy) IsAvailable() bool {
	return s.cmdPath != ""
}

// Remove refuses paths cmd.exe would parse as syntax. The command line only
// quotes arguments containing spaces, so "R&D" would otherwise split the command.
func (s *RdStrategy) Remove(ctx context.Context, path string) error {
	if strings.ContainsAny(path, cmdMetaChars) {
		return fmt.Errorf("%w: %q", ErrUnsafeShellPath, path)
	}
	return runOpaque(ctx, s.runner, s.cmdPath, "/C", "rd", "/S", "/Q", path)
}

// PowerShellStrategy handles forced removal with Remove-Item -Recurse -Force (windows)
type PowerShellStrategy struct {
	runner CommandRunner
	psPath string
}

// NewPowerShellStrategy creates a new PowerShell strategy
func NewPowerShellStrategy(runner CommandRunner) *PowerShellStrategy {
	psPath, err := runner.LookPath("powershell")
	if err != nil {
		psPath, _ = runner.LookPath("pwsh")
	}
	return &PowerShellStrategy{runner: runner, psPath: psPath}
}

func (s *PowerShellStrategy) Name() string {
	return "powershell"
}

func (s *PowerShellStrategy) IsAvailable() bool {
	return s.psPath != ""
}

func (s *PowerShellStrategy) Remove(ctx context.Context, path string) error {
	script := fmt.Sprintf("Remove-Item -LiteralPath %s -Recurse -Force -ErrorAction Stop", psQuote(path))
	return runOpaque(ctx, s.runner, s.psPath, "-NoProfile", "-NonInteractive", "-Command", script)
}

// psQuote wraps s in single quotes, doubling embedded quotes.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ForcedRemover tries the available forced-delete strategies in order
type ForcedRemover struct {
	strategies []domain.ForcedRemovalStrategy
	exists     func(path string) bool
	logger     *zap.Logger
}

// NewForcedRemover keeps only the strategies available on this host.
// exists is consulted after each strategy reports success.
func NewForcedRemover(logger *zap.Logger, exists func(path string) bool, candidates ...domain.ForcedRemovalStrategy) *ForcedRemover {
	fr := &ForcedRemover{
		strategies: make([]domain.ForcedRemovalStrategy, 0, len(candidates)),
		exists:     exists,
		logger:     logger,
	}
	for _, s := range candidates {
		if s.IsAvailable() {
			fr.strategies = append(fr.strategies, s)
		}
	}
	return fr
}

// GetStrategies returns all available strategies
func (fr *ForcedRemover) GetStrategies() []domain.ForcedRemovalStrategy {
	return fr.strategies
}

// Remove runs strategies until one succeeds.
// Returns the joined errors of every strategy when all fail.
func (fr *ForcedRemover) Remove(ctx context.Context, path string) error {
	if len(fr.strategies) == 0 {
		return domain.ErrNoForcedStrategy
	}

	var errs []error
	for _, strategy := range fr.strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := strategy.Remove(ctx, path)
		if err == nil && !fr.exists(path) {
			return nil
		}
		if err == nil {
			err = domain.ErrStillPresent
		}
		fr.logger.Debug("forced removal strategy failed",
			zap.String("strategy", strategy.Name()),
			zap.String("path", path),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
	}
	return errors.Join(errs...)
}

// Ensure implementations satisfy interfaces
var _ domain.ForcedRemovalStrategy = (*RmStrategy)(nil)
var _ domain.ForcedRemovalStrategy = (*RdStrategy)(nil)
var _ domain.ForcedRemovalStrategy = (*PowerShellStrategy)(nil)

package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// SessionConfig holds session-level settings.
type SessionConfig struct {
	Parallelism int // Targets reclaimed concurrently; <= 1 means sequential
}

// DefaultSessionConfig returns sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{Parallelism: 1}
}

// Session runs one reclamation: terminate interferers, wait, reclaim every target.
type Session struct {
	terminator domain.Terminator
	waiter     domain.Waiter
	reclaimer  domain.Reclaimer
	recorder   domain.Recorder
	config     SessionConfig
	newID      func() string
	logger     *zap.Logger
}

// NewSession creates a new session runner.
func NewSession(
	terminator domain.Terminator,
	waiter domain.Waiter,
	reclaimer domain.Reclaimer,
	recorder domain.Recorder,
	config SessionConfig,
	logger *zap.Logger,
) *Session {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Session{
		terminator: terminator,
		waiter:     waiter,
		reclaimer:  reclaimer,
		recorder:   recorder,
		config:     config,
		newID:      uuid.NewString,
		logger:     logger,
	}
}

// Run reclaims targets and reports one outcome per target, keyed by label.
// Only invalid input is returned as an error; per-target failures live in the report.
func (s *Session) Run(ctx context.Context, targets []domain.TargetPath, sigs []domain.ProcessSignature) (domain.SessionReport, error) {
	if err := ValidateTargets(targets); err != nil {
		return domain.SessionReport{}, err
	}

	report := domain.SessionReport{
		ID:        s.newID(),
		StartedAt: time.Now(),
		Outcomes:  make(map[string]domain.ReclamationOutcome, len(targets)),
	}
	log := s.logger.With(zap.String("session", report.ID))
	log.Info("reclamation session started", zap.Int("targets", len(targets)))

	report.Terminations = s.terminator.TerminateKnownInterferers(ctx, MergeSignatures(sigs, targets))

	if err := s.waiter.Wait(ctx); err != nil {
		log.Warn("quiescence wait interrupted", zap.Error(err))
	}

	outcomes := make([]domain.ReclamationOutcome, len(targets))
	g := new(errgroup.Group)
	g.SetLimit(max(1, s.config.Parallelism))
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			outcomes[i] = s.reclaimer.Reclaim(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	for _, outcome := range outcomes {
		report.Outcomes[outcome.Target.Label] = outcome

		fields := []zap.Field{
			zap.String("target", outcome.Target.Label),
			zap.String("status", string(outcome.Status)),
			zap.Int("attempts", len(outcome.Attempts)),
		}
		if last := outcome.LastAttempt(); last != nil {
			fields = append(fields, zap.Stringer("final_strategy", last.Strategy))
		}
		if outcome.DeferredPath != "" {
			fields = append(fields, zap.String("deferred_path", outcome.DeferredPath))
		}
		if outcome.Status == domain.StatusFailed {
			log.Warn("target not reclaimed", fields...)
		} else {
			log.Info("target reclaimed", fields...)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	s.recorder.ObserveSession(report)

	log.Info("reclamation session finished",
		zap.Int("removed", report.Count(domain.StatusRemoved)),
		zap.Int("deferred", report.Count(domain.StatusDeferredRemoved)),
		zap.Int("failed", report.Count(domain.StatusFailed)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// ValidateTargets rejects empty input, non-absolute paths, empty and duplicate
// labels. Two targets naming the same directory, or one inside the other, are
// rejected too: the inner target would be renamed away under the outer one.
func ValidateTargets(targets []domain.TargetPath) error {
	if len(targets) == 0 {
		return domain.ErrNoTargets
	}

	seen := make(map[string]bool, len(targets))
	cleaned := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.Label == "" {
			return fmt.Errorf("%w: empty label for %q", domain.ErrInvalidTarget, t.Path)
		}
		if t.Path == "" || !filepath.IsAbs(t.Path) {
			return fmt.Errorf("%w: %s: path %q is not absolute", domain.ErrInvalidTarget, t.Label, t.Path)
		}
		if seen[t.Label] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateLabel, t.Label)
		}
		seen[t.Label] = true

		path := filepath.Clean(t.Path)
		for i, other := range cleaned {
			if path == other || isWithin(path, other) || isWithin(other, path) {
				return fmt.Errorf("%w: %s (%s) and %s (%s)",
					domain.ErrOverlappingTargets, targets[i].Label, other, t.Label, path)
			}
		}
		cleaned = append(cleaned, path)
	}
	return nil
}

// isWithin reports whether child lies strictly below parent. Both are cleaned.
func isWithin(child, parent string) bool {
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}

// MergeSignatures combines explicit signatures with every target's holders,
// without duplicates, explicit ones first.
func MergeSignatures(sigs []domain.ProcessSignature, targets []domain.TargetPath) []domain.ProcessSignature {
	all := make([]domain.ProcessSignature, 0, len(sigs))
	all = append(all, sigs...)
	for _, t := range targets {
		all = append(all, t.Holders...)
	}
	return DedupeSignatures(all)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// ReclaimerConfig holds escalation chain settings.
type ReclaimerConfig struct {
	DeferredDelay time.Duration // Minimum delay before the detached task's first attempt
	SweepStale    bool          // Remove tombstones left by earlier runs
}

// DefaultReclaimerConfig returns sensible defaults.
func DefaultReclaimerConfig() ReclaimerConfig {
	return ReclaimerConfig{
		DeferredDelay: 5 * time.Second,
		SweepStale:    true,
	}
}

// ReclaimerImpl implements domain.Reclaimer.
//
// Strategies run strictly in order and each one is attempted only if every
// earlier one failed: direct, forced, rename (plus hand-off), scheduled.
// Success always means the path is confirmed absent afterwards, never just
// "the call returned cleanly".
type ReclaimerImpl struct {
	adapter   domain.PlatformAdapter
	namer     domain.TombstoneNamer
	scheduler domain.Scheduler
	recorder  domain.Recorder
	config    ReclaimerConfig
	logger    *zap.Logger
}

// NewReclaimer creates a new reclaimer.
func NewReclaimer(
	adapter domain.PlatformAdapter,
	namer domain.TombstoneNamer,
	scheduler domain.Scheduler,
	recorder domain.Recorder,
	config ReclaimerConfig,
	logger *zap.Logger,
) *ReclaimerImpl {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &ReclaimerImpl{
		adapter:   adapter,
		namer:     namer,
		scheduler: scheduler,
		recorder:  recorder,
		config:    config,
		logger:    logger,
	}
}

// step is one strategy of the chain. It returns diagnostic detail and an error.
type step struct {
	strategy domain.Strategy
	run      func(ctx context.Context, outcome *domain.ReclamationOutcome) (string, error)
	status   domain.OutcomeStatus
}

// Reclaim drives target through the escalation chain.
// It never returns an error: every failure is captured in the outcome.
func (r *ReclaimerImpl) Reclaim(ctx context.Context, target domain.TargetPath) domain.ReclamationOutcome {
	outcome := domain.ReclamationOutcome{Target: target}
	log := r.logger.With(zap.String("target", target.Label), zap.String("path", target.Path))

	if !r.adapter.Exists(target.Path) {
		log.Debug("target already absent")
		outcome.Status = domain.StatusRemoved
		r.sweepStale(log, &outcome)
		r.recorder.ObserveOutcome(outcome)
		return outcome
	}

	outcome.Status = domain.StatusFailed
	for _, s := range r.steps(target) {
		if err := ctx.Err(); err != nil {
			attempt := domain.RemovalAttempt{
				Strategy:  s.strategy,
				Err:       err,
				Detail:    "skipped: context cancelled",
				StartedAt: time.Now(),
			}
			outcome.Attempts = append(outcome.Attempts, attempt)
			r.recorder.ObserveAttempt(attempt)
			log.Warn("reclamation interrupted", zap.Stringer("strategy", s.strategy), zap.Error(err))
			break
		}

		attempt := r.try(ctx, s, &outcome)
		outcome.Attempts = append(outcome.Attempts, attempt)
		r.recorder.ObserveAttempt(attempt)

		if attempt.Success {
			log.Debug("removal strategy succeeded",
				zap.Stringer("strategy", s.strategy),
				zap.String("detail", attempt.Detail),
				zap.Duration("duration", attempt.Duration))
			outcome.Status = s.status
			break
		}

		log.Debug("removal strategy failed",
			zap.Stringer("strategy", s.strategy),
			zap.Error(attempt.Err))
	}

	if outcome.Status == domain.StatusFailed {
		log.Warn("all removal strategies exhausted", zap.Int("attempts", len(outcome.Attempts)))
	}

	r.sweepStale(log, &outcome)
	r.recorder.ObserveOutcome(outcome)
	return outcome
}

func (r *ReclaimerImpl) try(ctx context.Context, s step, outcome *domain.ReclamationOutcome) domain.RemovalAttempt {
	start := time.Now()
	detail, err := s.run(ctx, outcome)
	return domain.RemovalAttempt{
		Strategy:  s.strategy,
		Success:   err == nil,
		Err:       err,
		Detail:    detail,
		StartedAt: start,
		Duration:  time.Since(start),
	}
}

func (r *ReclaimerImpl) steps(target domain.TargetPath) []step {
	path := target.Path
	return []step{
		{
			strategy: domain.StrategyDirect,
			status:   domain.StatusRemoved,
			run: func(_ context.Context, _ *domain.ReclamationOutcome) (string, error) {
				if err := r.adapter.RemoveDirectory(path); err != nil {
					return "", err
				}
				return "", r.verifyAbsent(path)
			},
		},
		{
			strategy: domain.StrategyForced,
			status:   domain.StatusRemoved,
			run: func(ctx context.Context, _ *domain.ReclamationOutcome) (string, error) {
				if err := r.adapter.ForceRemoveDirectory(ctx, path); err != nil {
					return "", err
				}
				return "", r.verifyAbsent(path)
			},
		},
		{
			strategy: domain.StrategyRename,
			status:   domain.StatusDeferredRemoved,
			run: func(_ context.Context, outcome *domain.ReclamationOutcome) (string, error) {
				tombstone := r.namer.Name(path)
				if err := r.adapter.RenamePath(path, tombstone); err != nil {
					return "", err
				}
				if err := r.verifyAbsent(path); err != nil {
					return "", err
				}
				outcome.DeferredPath = tombstone

				// The original path is free at this point; a failed hand-off
				// only leaves the tombstone for a later sweep.
				if err := r.scheduler.Schedule(tombstone, r.config.DeferredDelay); err != nil {
					return fmt.Sprintf("renamed to %s; hand-off failed: %v", tombstone, err), nil
				}
				return fmt.Sprintf("renamed to %s", tombstone), nil
			},
		},
		{
			strategy: domain.StrategyScheduled,
			status:   domain.StatusDeferredRemoved,
			run: func(_ context.Context, outcome *domain.ReclamationOutcome) (string, error) {
				if err := r.scheduler.Schedule(path, r.config.DeferredDelay); err != nil {
					return "", err
				}
				outcome.DeferredPath = path
				return fmt.Sprintf("scheduled removal of %s", path), nil
			},
		},
	}
}

func (r *ReclaimerImpl) verifyAbsent(path string) error {
	if r.adapter.Exists(path) {
		return domain.ErrStillPresent
	}
	return nil
}

// sweepStale removes tombstones from earlier runs. It never changes the outcome status.
func (r *ReclaimerImpl) sweepStale(log *zap.Logger, outcome *domain.ReclamationOutcome) {
	if !r.config.SweepStale || r.namer == nil {
		return
	}

	matches, err := r.adapter.Glob(r.namer.Pattern(outcome.Target.Path))
	if err != nil {
		log.Debug("failed to list stale tombstones", zap.Error(err))
		return
	}

	for _, stale := range matches {
		if stale == outcome.DeferredPath {
			continue
		}
		if err := r.adapter.RemoveDirectory(stale); err != nil {
			log.Debug("stale tombstone still locked", zap.String("tombstone", stale), zap.Error(err))
			continue
		}
		log.Info("removed stale tombstone", zap.String("tombstone", stale))
		outcome.StaleRemoved = append(outcome.StaleRemoved, stale)
	}
}

// Ensure ReclaimerImpl implements domain.Reclaimer.
var _ domain.Reclaimer = (*ReclaimerImpl)(nil)

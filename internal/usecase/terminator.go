// Package usecase contains the reclamation logic: terminate, wait, reclaim, report.
package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// TerminatorImpl implements domain.Terminator.
// Termination is best effort: the reclaimer's escalation chain is the safety net.
type TerminatorImpl struct {
	adapter  domain.PlatformAdapter
	recorder domain.Recorder
	logger   *zap.Logger
}

// NewTerminator creates a new process terminator.
func NewTerminator(adapter domain.PlatformAdapter, recorder domain.Recorder, logger *zap.Logger) domain.Terminator {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &TerminatorImpl{
		adapter:  adapter,
		recorder: recorder,
		logger:   logger,
	}
}

// TerminateKnownInterferers attempts every signature once, in order.
// One signature's failure never blocks the next, and nothing is returned as an error.
func (t *TerminatorImpl) TerminateKnownInterferers(ctx context.Context, sigs []domain.ProcessSignature) []domain.TerminationResult {
	unique := DedupeSignatures(sigs)
	results := make([]domain.TerminationResult, 0, len(unique))

	for _, sig := range unique {
		result := t.adapter.TerminateProcessByName(ctx, sig)

		switch {
		case result.Err != nil:
			t.logger.Warn("failed to terminate process",
				zap.String("signature", sig.Name),
				zap.Ints("killed_pids", result.PIDs),
				zap.Error(result.Err))
		case result.Terminated:
			t.logger.Info("terminated process",
				zap.String("signature", sig.Name),
				zap.Ints("pids", result.PIDs))
		default:
			t.logger.Debug("process not running", zap.String("signature", sig.Name))
		}

		t.recorder.ObserveTermination(result)
		results = append(results, result)
	}

	return results
}

// DedupeSignatures drops empty and repeated signatures, keeping first occurrence order.
func DedupeSignatures(sigs []domain.ProcessSignature) []domain.ProcessSignature {
	seen := make(map[string]bool, len(sigs))
	unique := make([]domain.ProcessSignature, 0, len(sigs))
	for _, sig := range sigs {
		key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(sig.Name)), ".exe")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, sig)
	}
	return unique
}

// Ensure TerminatorImpl implements domain.Terminator.
var _ domain.Terminator = (*TerminatorImpl)(nil)

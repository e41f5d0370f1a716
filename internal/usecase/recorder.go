package usecase

import "github.com/eliteGoblin/reclaim/internal/domain"

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) ObserveAttempt(domain.RemovalAttempt)        {}
func (NopRecorder) ObserveOutcome(domain.ReclamationOutcome)    {}
func (NopRecorder) ObserveTermination(domain.TerminationResult) {}
func (NopRecorder) ObserveSession(domain.SessionReport)         {}

var _ domain.Recorder = NopRecorder{}

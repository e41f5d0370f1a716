// Package domain contains core reclamation entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"sort"
	"time"
)

// TargetPath is a filesystem path slated for removal.
type TargetPath struct {
	Path    string             // Absolute path
	Label   string             // Human-readable key in the session report
	Holders []ProcessSignature // Processes expected to hold the path open
}

// ProcessSignature identifies an OS process by name, not PID.
// Matching is case-insensitive and ignores a trailing ".exe".
// Names containing glob metacharacters are matched as patterns.
type ProcessSignature struct {
	Name string
}

// Strategy identifies one step of the escalation chain.
type Strategy int

const (
	StrategyDirect Strategy = iota + 1
	StrategyForced
	StrategyRename
	StrategyScheduled
)

// String returns the strategy name used in logs and reports.
func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyForced:
		return "forced"
	case StrategyRename:
		return "rename"
	case StrategyScheduled:
		return "scheduled"
	default:
		return "unknown"
	}
}

// Ordinal returns the position of the strategy in the chain (1-based).
func (s Strategy) Ordinal() int {
	return int(s)
}

// RemovalAttempt records one strategy's outcome for one target.
type RemovalAttempt struct {
	Strategy  Strategy
	Success   bool
	Err       error  // Set when Success is false
	Detail    string // Extra diagnostics (e.g. renamed path, hand-off problems)
	StartedAt time.Time
	Duration  time.Duration
}

// OutcomeStatus is the final state of a target after reclamation.
type OutcomeStatus string

const (
	// StatusRemoved means the path was confirmed absent synchronously.
	StatusRemoved OutcomeStatus = "removed"
	// StatusDeferredRemoved means removal was handed to a detached task.
	StatusDeferredRemoved OutcomeStatus = "deferred"
	// StatusFailed means every strategy was exhausted and the path is still present.
	StatusFailed OutcomeStatus = "failed"
)

// ReclamationOutcome is the per-target result of a session.
type ReclamationOutcome struct {
	Target       TargetPath
	Status       OutcomeStatus
	Attempts     []RemovalAttempt
	DeferredPath string   // Path handed to the background task (renamed or original)
	StaleRemoved []string // Tombstones from earlier runs removed during this one
}

// LastAttempt returns the final attempt, or nil when none was needed.
func (o ReclamationOutcome) LastAttempt() *RemovalAttempt {
	if len(o.Attempts) == 0 {
		return nil
	}
	return &o.Attempts[len(o.Attempts)-1]
}

// TerminationResult captures what happened for one process signature.
type TerminationResult struct {
	Signature  ProcessSignature
	Terminated bool
	PIDs       []int // PIDs that were killed
	Err        error // Swallowed by the terminator, kept for diagnostics
}

// SessionReport maps target labels to outcomes for a whole session.
type SessionReport struct {
	ID           string
	StartedAt    time.Time
	Duration     time.Duration
	Terminations []TerminationResult
	Outcomes     map[string]ReclamationOutcome
}

// Labels returns report labels in sorted order.
func (r SessionReport) Labels() []string {
	labels := make([]string, 0, len(r.Outcomes))
	for label := range r.Outcomes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Count returns how many targets ended in the given status.
func (r SessionReport) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// HasFailures reports whether any target is still present.
func (r SessionReport) HasFailures() bool {
	return r.Count(StatusFailed) > 0
}

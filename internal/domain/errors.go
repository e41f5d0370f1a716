package domain

import "errors"

var (
	// ErrNoTargets is returned when a session is run without any target.
	ErrNoTargets = errors.New("no targets to reclaim")

	// ErrInvalidTarget is returned for targets with an empty label or a non-absolute path.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrDuplicateLabel is returned when two targets share a report label.
	ErrDuplicateLabel = errors.New("duplicate target label")

	// ErrOverlappingTargets is returned when two targets name the same directory
	// or one contains the other.
	ErrOverlappingTargets = errors.New("overlapping targets")

	// ErrStillPresent means a removal primitive reported success but the path remains.
	ErrStillPresent = errors.New("path still present after removal")

	// ErrNoForcedStrategy means no forced-delete command is available on this host.
	ErrNoForcedStrategy = errors.New("no forced removal command available")

	// ErrSpawnFailed means the detached task could not be started.
	ErrSpawnFailed = errors.New("failed to spawn detached task")
)

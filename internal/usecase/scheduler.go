package usecase

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// SchedulerImpl implements domain.Scheduler.
// At most one detached task is spawned per path within this process;
// cross-session dedupe is unnecessary because every rename is unique.
type SchedulerImpl struct {
	adapter domain.PlatformAdapter
	logger  *zap.Logger

	mu        sync.Mutex
	scheduled map[string]bool
}

// NewScheduler creates a new deferred removal scheduler.
func NewScheduler(adapter domain.PlatformAdapter, logger *zap.Logger) *SchedulerImpl {
	return &SchedulerImpl{
		adapter:   adapter,
		logger:    logger,
		scheduled: make(map[string]bool),
	}
}

// Schedule hands path to a detached task that removes it after minDelay.
// Eventual success is not guaranteed; the task gives up silently after its own budget.
func (s *SchedulerImpl) Schedule(path string, minDelay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduled[path] {
		s.logger.Debug("deferred removal already scheduled", zap.String("path", path))
		return nil
	}

	if err := s.adapter.ScheduleDetachedRemoval(path, minDelay); err != nil {
		s.logger.Warn("failed to schedule deferred removal",
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	s.scheduled[path] = true
	return nil
}

// scheduledPaths returns the paths handed off so far.
func (s *SchedulerImpl) scheduledPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.scheduled))
	for p := range s.scheduled {
		paths = append(paths, p)
	}
	return paths
}

// Ensure SchedulerImpl implements domain.Scheduler.
var _ domain.Scheduler = (*SchedulerImpl)(nil)

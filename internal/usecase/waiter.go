package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/reclaim/internal/domain"
)

// DefaultQuiescenceWait is the settle delay after termination requests.
const DefaultQuiescenceWait = 2 * time.Second

// QuiescenceWaiter implements domain.Waiter with a fixed, unconditional delay.
// Process exit and handle release are not synchronous with the kill call,
// and nothing is polled: the worst case is accepted up front.
type QuiescenceWaiter struct {
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger
}

// NewQuiescenceWaiter creates a waiter for interval.
func NewQuiescenceWaiter(interval time.Duration, logger *zap.Logger) *QuiescenceWaiter {
	return NewQuiescenceWaiterWithSleep(interval, sleepContext, logger)
}

// NewQuiescenceWaiterWithSleep creates a waiter with an injectable sleep (for testing).
func NewQuiescenceWaiterWithSleep(interval time.Duration, sleep func(ctx context.Context, d time.Duration) error, logger *zap.Logger) *QuiescenceWaiter {
	return &QuiescenceWaiter{interval: interval, sleep: sleep, logger: logger}
}

// Wait blocks for the interval. Only context cancellation cuts it short.
func (w *QuiescenceWaiter) Wait(ctx context.Context) error {
	w.logger.Debug("waiting for processes to release handles", zap.Duration("interval", w.interval))
	return w.sleep(ctx, w.interval)
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

// Ensure QuiescenceWaiter implements domain.Waiter.
var _ domain.Waiter = (*QuiescenceWaiter)(nil)

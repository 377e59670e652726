package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Pruner retire les trackers terminés. *Registry l'implémente.
type Pruner interface {
	PruneFinished(maxAge time.Duration) int
}

type CleanupService struct {
	pruner   Pruner
	interval time.Duration
	maxAge   time.Duration
	logger   logr.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCleanupService(pruner Pruner, interval, maxAge time.Duration, logger logr.Logger) *CleanupService {
	return &CleanupService{
		pruner:   pruner,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger.WithName("cleanup"),
		stopCh:   make(chan struct{}),
	}
}

func (c *CleanupService) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("Cleanup service started", "interval", c.interval.String(), "maxAge", c.maxAge.String())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Cleanup service stopped due to context cancellation")
			return
		case <-c.stopCh:
			c.logger.Info("Cleanup service stopped")
			return
		case <-ticker.C:
			if pruned := c.pruner.PruneFinished(c.maxAge); pruned > 0 {
				c.logger.Info("Cleanup completed", "trackersRemoved", pruned)
			}
		}
	}
}

func (c *CleanupService) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSyncLoop checks the snapshot once, then triggers a background rebuild
// every interval until ctx is cancelled. Call it from a goroutine.
func RunSyncLoop(ctx context.Context, monitor *FreshnessMonitor, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		logger.Debug("Scheduled catalog sync disabled")
		return
	}

	// Current triggers a rebuild on its own when the snapshot is absent or stale.
	if _, _, err := monitor.Current(ctx); err != nil {
		logger.Warn("Startup snapshot check failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !monitor.TriggerRebuild(TriggerSchedule) {
				logger.Info("Scheduled catalog sync skipped, a rebuild is already running")
			}
		}
	}
}

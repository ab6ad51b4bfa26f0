package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/gleber2006-sketch/machlog/internal/config"
	"github.com/gleber2006-sketch/machlog/internal/repository"
)

// StartSessionCleanupJob periodically purges expired refresh sessions.
// The job stops when ctx is cancelled.
func StartSessionCleanupJob(ctx context.Context, cfg config.Config, store *repository.Store, logger *slog.Logger) {
	interval := cfg.SessionCleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				purged, err := store.PurgeRefreshSessions(tickCtx, time.Now().UTC())
				cancel()
				if err != nil {
					logger.Error("session cleanup failed", "error", err)
					continue
				}
				if purged > 0 {
					logger.Info("purged expired refresh sessions", "count", purged)
				}
			}
		}
	}()
}

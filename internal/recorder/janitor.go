package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/store"
)

const janitorInterval = 1 * time.Minute

// StartJanitor runs a background goroutine that periodically sweeps for
// sessions stuck in "recording" with no ingest activity beyond the TTL and
// fails them. This covers sessions orphaned by a crash, where the forced
// reset never ran and stale state would otherwise resurface on restart.
func StartJanitor(ctx context.Context, repo store.Repository, coord *Coordinator, ttl time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(janitorInterval)
	go func() {
		defer ticker.Stop()
		logger.Info("session janitor started", "interval", janitorInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepStaleSessions(ctx, repo, coord, ttl, logger)
			case <-ctx.Done():
				logger.Info("session janitor shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepStaleSessions(ctx context.Context, repo store.Repository, coord *Coordinator, ttl time.Duration, logger *slog.Logger) {
	stale, err := repo.StaleRecordingSessions(ctx, time.Now().Add(-ttl))
	if err != nil {
		logger.Error("janitor failed to query stale sessions", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info("janitor found stale recording sessions", "count", len(stale))

	for _, session := range stale {
		status := coord.GetStatus(session.TenantID)
		if status.IsRecording && status.SessionID == session.ID {
			// Still coordinator-active; reset clears memory and the row together.
			coord.ForceReset(ctx, session.TenantID)
			continue
		}

		// Orphaned row from a previous process; fail it directly.
		if err := repo.UpdateSessionStatus(ctx, session.TenantID, session.ID, domain.StatusFailed, time.Now()); err != nil {
			logger.Warn("janitor failed to mark stale session",
				"tenant_id", session.TenantID,
				"session_id", session.ID,
				"error", err)
			continue
		}
		logger.Info("janitor failed stale session",
			"tenant_id", session.TenantID,
			"session_id", session.ID,
			"actions", len(session.Actions))
	}
}

package store

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// isConflictError checks for SQLITE_BUSY / "database is locked" errors, which
// warrant a retry rather than a failure.
func isConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withConflictRetry runs op, retrying with exponential backoff when SQLite
// reports a lock conflict. Write paths hit this when the janitor and an
// ingest land on the same row.
func withConflictRetry(ctx context.Context, op func() error) error {
	const maxRetries = 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		if err == nil || !isConflictError(err) {
			return err
		}
		if i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("SQLite lock conflict, retrying", "attempt", i+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

package recorder

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
)

func TestSweepFailsOrphanedSessions(t *testing.T) {
	repo := newMemRepo()
	coord := NewCoordinator(repo, nil)
	ctx := context.Background()

	// An orphaned row from a previous process: recording in the store, but
	// unknown to the coordinator.
	orphan := &domain.RecordingSession{
		ID:        "orphan",
		TenantID:  "tenant-a",
		Name:      "left behind",
		Status:    domain.StatusRecording,
		StartTime: time.Now().Add(-2 * time.Hour),
	}
	if err := repo.CreateSession(ctx, orphan); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sweepStaleSessions(ctx, repo, coord, time.Hour, slog.Default())

	got, err := repo.GetSession(ctx, "tenant-a", "orphan")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != domain.StatusFailed {
		t.Errorf("Expected orphaned session failed, got %s", got.Status)
	}
}

func TestSweepResetsCoordinatorActiveStaleSession(t *testing.T) {
	repo := newMemRepo()
	coord := NewCoordinator(repo, nil)
	ctx := context.Background()

	session, err := coord.StartRecording(ctx, "tenant-a", "stuck", "", domain.BrowserMetadata{})
	if err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	// Age the persisted row past the TTL.
	repo.mu.Lock()
	repo.sessions["tenant-a/"+session.ID].StartTime = time.Now().Add(-2 * time.Hour)
	repo.mu.Unlock()

	sweepStaleSessions(ctx, repo, coord, time.Hour, slog.Default())

	if coord.GetStatus("tenant-a").IsRecording {
		t.Error("Sweep must reset a coordinator-active stale session")
	}
	got, _ := repo.GetSession(ctx, "tenant-a", session.ID)
	if got.Status != domain.StatusFailed {
		t.Errorf("Expected failed status after sweep, got %s", got.Status)
	}
}

func TestSweepLeavesFreshSessionsAlone(t *testing.T) {
	repo := newMemRepo()
	coord := NewCoordinator(repo, nil)
	ctx := context.Background()

	if _, err := coord.StartRecording(ctx, "tenant-a", "fresh", "", domain.BrowserMetadata{}); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}

	sweepStaleSessions(ctx, repo, coord, time.Hour, slog.Default())

	if !coord.GetStatus("tenant-a").IsRecording {
		t.Error("Sweep must not touch a fresh recording")
	}
}

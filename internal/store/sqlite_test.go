package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymcpme/recorder/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "recorder.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return repo
}

func testSession(tenantID, id string) *domain.RecordingSession {
	return &domain.RecordingSession{
		ID:        id,
		TenantID:  tenantID,
		Name:      "session " + id,
		Status:    domain.StatusRecording,
		StartTime: time.Now().Add(-time.Minute),
		Actions:   []domain.RecordedAction{},
		Browser:   domain.BrowserMetadata{UserAgent: "test-agent", ExtensionVersion: "1.2.3"},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	session := testSession("tenant-a", "s1")
	session.Description = "a demo"
	require.NoError(t, repo.CreateSession(ctx, session))

	got, err := repo.GetSession(ctx, "tenant-a", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "a demo", got.Description)
	assert.Equal(t, domain.StatusRecording, got.Status)
	assert.Equal(t, "test-agent", got.Browser.UserAgent)
	assert.Empty(t, got.Actions)
	assert.True(t, got.EndTime.IsZero(), "end time should be unset for live sessions")
}

func TestGetSessionNotFound(t *testing.T) {
	repo := newTestStore(t)

	_, err := repo.GetSession(context.Background(), "tenant-a", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSessionTenantScoped(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("tenant-a", "s1")))

	_, err := repo.GetSession(ctx, "tenant-b", "s1")
	assert.ErrorIs(t, err, ErrNotFound, "another tenant must not see the session")
}

func TestAppendActionPreservesOrder(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("tenant-a", "s1")))

	const n = 10
	for i := 0; i < n; i++ {
		err := repo.AppendAction(ctx, "tenant-a", "s1", domain.RecordedAction{
			ID:          fmt.Sprintf("a%d", i),
			Type:        domain.ActionClick,
			Timestamp:   time.Now().UnixMilli(),
			Description: fmt.Sprintf("click %d", i),
		})
		require.NoError(t, err)
	}

	got, err := repo.GetSession(ctx, "tenant-a", "s1")
	require.NoError(t, err)
	require.Len(t, got.Actions, n)
	for i, a := range got.Actions {
		assert.Equal(t, fmt.Sprintf("click %d", i), a.Description, "action %d out of order", i)
	}
}

func TestAppendActionRejectedAfterStop(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("tenant-a", "s1")))
	require.NoError(t, repo.UpdateSessionStatus(ctx, "tenant-a", "s1", domain.StatusStopped, time.Now()))

	err := repo.AppendAction(ctx, "tenant-a", "s1", domain.RecordedAction{Type: domain.ActionClick})
	assert.ErrorIs(t, err, ErrNotFound, "append to a stopped session must affect no rows")

	got, err := repo.GetSession(ctx, "tenant-a", "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Actions, "stopped log must stay frozen")
}

func TestListSessionsSummaries(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	older := testSession("tenant-a", "old")
	older.StartTime = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.CreateSession(ctx, older))
	require.NoError(t, repo.AppendAction(ctx, "tenant-a", "old", domain.RecordedAction{Type: domain.ActionNavigate}))
	require.NoError(t, repo.AppendAction(ctx, "tenant-a", "old", domain.RecordedAction{Type: domain.ActionClick}))

	endTime := older.StartTime.Add(5 * time.Minute)
	require.NoError(t, repo.UpdateSessionStatus(ctx, "tenant-a", "old", domain.StatusStopped, endTime))

	newer := testSession("tenant-a", "new")
	newer.StartTime = time.Now()
	require.NoError(t, repo.CreateSession(ctx, newer))

	require.NoError(t, repo.CreateSession(ctx, testSession("tenant-b", "other")))

	summaries, err := repo.ListSessions(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "new", summaries[0].ID, "list must be newest first")
	assert.Equal(t, "old", summaries[1].ID)
	assert.Equal(t, 2, summaries[1].ActionsCount)
	assert.Equal(t, int64(5*time.Minute/time.Millisecond), summaries[1].DurationMS)
	assert.Equal(t, 0, summaries[0].ActionsCount)
}

func TestDeleteSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, testSession("tenant-a", "s1")))

	deleted, err := repo.DeleteSession(ctx, "tenant-a", "s1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteSession(ctx, "tenant-a", "s1")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete must report nothing removed")
}

func TestStaleRecordingSessions(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	stale := testSession("tenant-a", "stale")
	stale.StartTime = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.CreateSession(ctx, stale))

	fresh := testSession("tenant-a", "fresh")
	fresh.StartTime = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.CreateSession(ctx, fresh))
	// Recent ingest activity keeps the session out of the stale set even
	// though it started long ago.
	require.NoError(t, repo.AppendAction(ctx, "tenant-a", "fresh", domain.RecordedAction{Type: domain.ActionClick}))

	finished := testSession("tenant-a", "finished")
	finished.StartTime = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.CreateSession(ctx, finished))
	require.NoError(t, repo.UpdateSessionStatus(ctx, "tenant-a", "finished", domain.StatusStopped, time.Now()))

	got, err := repo.StaleRecordingSessions(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "stale", got[0].ID)
}

func TestToolRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	tool := &domain.GeneratedTool{
		ID:         "t1",
		TenantID:   "tenant-a",
		SessionID:  "s1",
		Name:       "web_navigator",
		Code:       "print('hi')",
		Parameters: []string{"text_1"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.CreateTool(ctx, tool))

	got, err := repo.GetTool(ctx, "tenant-a", "t1")
	require.NoError(t, err)
	assert.Equal(t, "web_navigator", got.Name)
	assert.Equal(t, []string{"text_1"}, got.Parameters)
	assert.Empty(t, got.RegistryToolID)
	assert.Zero(t, got.ExecutionCount)

	_, err = repo.GetTool(ctx, "tenant-b", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetToolRegistration(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.CreateTool(ctx, &domain.GeneratedTool{
		ID: "t1", TenantID: "tenant-a", Name: "n", Code: "c", CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, repo.SetToolRegistration(ctx, "tenant-a", "t1", "reg-42"))

	got, err := repo.GetTool(ctx, "tenant-a", "t1")
	require.NoError(t, err)
	assert.Equal(t, "reg-42", got.RegistryToolID)

	err = repo.SetToolRegistration(ctx, "tenant-a", "missing", "reg-43")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementToolExecutions(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, repo.CreateTool(ctx, &domain.GeneratedTool{
		ID: "t1", TenantID: "tenant-a", Name: "n", Code: "c", CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, repo.IncrementToolExecutions(ctx, "tenant-a", "t1"))
	require.NoError(t, repo.IncrementToolExecutions(ctx, "tenant-a", "t1"))

	got, err := repo.GetTool(ctx, "tenant-a", "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ExecutionCount)
}

func TestListToolsNewestFirst(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	require.NoError(t, repo.CreateTool(ctx, &domain.GeneratedTool{
		ID: "t-old", TenantID: "tenant-a", Name: "old", Code: "c", CreatedAt: older, UpdatedAt: older,
	}))
	now := time.Now()
	require.NoError(t, repo.CreateTool(ctx, &domain.GeneratedTool{
		ID: "t-new", TenantID: "tenant-a", Name: "new", Code: "c", CreatedAt: now, UpdatedAt: now,
	}))

	tools, err := repo.ListTools(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "t-new", tools[0].ID)
	assert.Equal(t, "t-old", tools[1].ID)
}

func TestIsConflictError(t *testing.T) {
	if isConflictError(nil) {
		t.Error("nil is not a conflict")
	}
	if !isConflictError(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("SQLITE_BUSY should be detected as a conflict")
	}
	if isConflictError(errors.New("syntax error")) {
		t.Error("unrelated errors are not conflicts")
	}
}

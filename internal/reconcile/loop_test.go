package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/recorder"
)

// fakeClient scripts remote truth and counts fetches.
type fakeClient struct {
	mu           sync.Mutex
	status       recorder.Status
	statusErr    error
	session      *domain.RecordingSession
	sessionErr   error
	sessionCalls int
}

func (f *fakeClient) Status(context.Context) (recorder.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeClient) Session(_ context.Context, sessionID string) (*domain.RecordingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session == nil || f.session.ID != sessionID {
		return nil, errors.New("unknown session")
	}
	cp := *f.session
	cp.Actions = append([]domain.RecordedAction(nil), f.session.Actions...)
	return &cp, nil
}

func (f *fakeClient) set(status recorder.Status, session *domain.RecordingSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.session = session
}

func (f *fakeClient) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionCalls
}

func recordingSession(id string, actions int) *domain.RecordingSession {
	s := &domain.RecordingSession{
		ID:        id,
		TenantID:  "tenant-a",
		Name:      "demo",
		Status:    domain.StatusRecording,
		StartTime: time.Now().Add(-10 * time.Second),
	}
	for i := 0; i < actions; i++ {
		s.Actions = append(s.Actions, domain.RecordedAction{Type: domain.ActionClick})
	}
	return s
}

func TestLoopAdoptsRemoteRecording(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 2}, recordingSession("s1", 2))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()

	loop.Tick(context.Background())

	view := loop.CurrentView()
	assert.True(t, view.Recording)
	assert.Equal(t, "s1", view.SessionID)
	assert.Equal(t, 2, view.ActionCount)
	assert.Len(t, view.Actions, 2)
}

func TestLoopSkipsDetailFetchWhenCountUnchanged(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 2}, recordingSession("s1", 2))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()
	ctx := context.Background()

	loop.Tick(ctx)
	require.Equal(t, 1, client.fetches())

	// Same session, same count: no detail fetch, only the elapsed update.
	loop.Tick(ctx)
	loop.Tick(ctx)
	assert.Equal(t, 1, client.fetches(), "unchanged count must not trigger detail fetches")

	// Count advances: exactly one more fetch.
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 3}, recordingSession("s1", 3))
	loop.Tick(ctx)
	assert.Equal(t, 2, client.fetches())
	assert.Equal(t, 3, loop.CurrentView().ActionCount)
}

func TestLoopAdoptsTerminalState(t *testing.T) {
	client := &fakeClient{}
	session := recordingSession("s1", 2)
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 2}, session)
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()
	ctx := context.Background()

	loop.Tick(ctx)
	require.True(t, loop.CurrentView().Recording)

	// The recording ends elsewhere.
	stopped := *session
	stopped.Status = domain.StatusStopped
	stopped.EndTime = time.Now()
	client.set(recorder.Status{}, &stopped)
	loop.Tick(ctx)

	view := loop.CurrentView()
	assert.False(t, view.Recording)
	assert.Equal(t, domain.StatusStopped, view.Status)
	assert.Equal(t, 2, view.ActionCount, "final log is preserved in the view")
}

func TestLoopTerminalAdoptionSurvivesFailedFinalFetch(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 1}, recordingSession("s1", 1))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()
	ctx := context.Background()

	loop.Tick(ctx)
	require.True(t, loop.CurrentView().Recording)

	client.mu.Lock()
	client.status = recorder.Status{}
	client.sessionErr = errors.New("network down")
	client.mu.Unlock()
	loop.Tick(ctx)

	// The final fetch is best-effort: recording still ends locally.
	assert.False(t, loop.CurrentView().Recording)
}

func TestLoopStatusErrorIsTransient(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 1}, recordingSession("s1", 1))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()
	ctx := context.Background()

	loop.Tick(ctx)
	before := loop.CurrentView()

	client.mu.Lock()
	client.statusErr = errors.New("poll failed")
	client.mu.Unlock()
	loop.Tick(ctx)

	// A failed poll leaves the view untouched and the loop alive.
	after := loop.CurrentView()
	assert.Equal(t, before.Recording, after.Recording)
	assert.Equal(t, before.ActionCount, after.ActionCount)

	client.mu.Lock()
	client.statusErr = nil
	client.status = recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 2}
	client.session = recordingSession("s1", 2)
	client.mu.Unlock()
	loop.Tick(ctx)
	assert.Equal(t, 2, loop.CurrentView().ActionCount)
}

func TestLoopAdoptsSessionAfterReload(t *testing.T) {
	// Local view is empty (fresh client); remote has a live recording from
	// before the reload.
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s-old", ActionCount: 4}, recordingSession("s-old", 4))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()

	loop.Tick(context.Background())

	view := loop.CurrentView()
	assert.True(t, view.Recording)
	assert.Equal(t, "s-old", view.SessionID)
	assert.Equal(t, 4, view.ActionCount)
}

func TestLoopMonotoneActionCount(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 5}, recordingSession("s1", 5))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()
	ctx := context.Background()

	loop.Tick(ctx)
	require.Equal(t, 5, loop.CurrentView().ActionCount)

	// A stale detail response carrying fewer actions for the same session
	// must not shrink the displayed log.
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 3}, recordingSession("s1", 3))
	loop.Tick(ctx)
	assert.Equal(t, 5, loop.CurrentView().ActionCount, "displayed count must be monotone within a session")
}

func TestLoopStaleSeqDiscarded(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 1}, recordingSession("s1", 1))
	loop := NewLoop(client, 100*time.Millisecond, nil, nil)
	defer loop.Stop()

	// Apply a newer tick's result first, then replay an older sequence.
	applied := loop.apply(5, func(v *View) { v.ActionCount = 10 })
	require.True(t, applied)

	applied = loop.apply(3, func(v *View) { v.ActionCount = 1 })
	assert.False(t, applied, "stale sequence must be discarded")
	assert.Equal(t, 10, loop.CurrentView().ActionCount)
}

func TestLoopStopIdempotent(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 1}, recordingSession("s1", 1))
	loop := NewLoop(client, 10*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.Tick(ctx) // starts the duration timer via adoption

	loop.Stop()
	loop.Stop() // second stop must be a no-op
}

func TestLoopOnUpdateReceivesSnapshots(t *testing.T) {
	client := &fakeClient{}
	client.set(recorder.Status{IsRecording: true, SessionID: "s1", ActionCount: 1}, recordingSession("s1", 1))

	var mu sync.Mutex
	var updates []View
	loop := NewLoop(client, 100*time.Millisecond, func(v View) {
		mu.Lock()
		updates = append(updates, v)
		mu.Unlock()
	}, nil)
	defer loop.Stop()

	loop.Tick(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, "s1", updates[0].SessionID)
	assert.Equal(t, 1, updates[0].ActionCount)
}

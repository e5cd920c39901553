package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/store"
)

// recState is the tagged state of a tenant's recording slot.
type recState int

const (
	stateIdle recState = iota
	stateRecording
	stateStopping
)

// tenantSlot holds the live recording for one tenant. All fields are guarded
// by mu; status and action count are always read together under it, so a
// reader can never observe status-new/count-old or the reverse.
type tenantSlot struct {
	mu      sync.Mutex
	state   recState
	session *domain.RecordingSession
	removed bool
}

// Status is the cheap read-only snapshot served to pollers. It is computed
// from the in-memory slot and never scans the persisted action log.
type Status struct {
	IsRecording bool      `json:"isRecording"`
	SessionID   string    `json:"sessionId,omitempty"`
	SessionName string    `json:"sessionName,omitempty"`
	ActionCount int       `json:"actionCount"`
	StartTime   time.Time `json:"startTime,omitzero"`
}

// Coordinator owns the per-tenant recording state machine. The "at most one
// recording per tenant" rule lives here, in a single guarded transition,
// never inferred by callers.
type Coordinator struct {
	repo   store.Repository
	logger *slog.Logger

	mu      sync.Mutex
	tenants map[string]*tenantSlot
}

// NewCoordinator creates a coordinator backed by the given repository.
func NewCoordinator(repo store.Repository, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		repo:    repo,
		logger:  logger,
		tenants: make(map[string]*tenantSlot),
	}
}

func (c *Coordinator) slot(tenantID string) *tenantSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.tenants[tenantID]
	if !ok {
		s = &tenantSlot{}
		c.tenants[tenantID] = s
	}
	return s
}

// lockSlot returns the tenant's slot with its mutex held, creating it on
// demand. It retries past slots a concurrent release already detached from
// the map, so a start can never land in an orphaned slot.
func (c *Coordinator) lockSlot(tenantID string) *tenantSlot {
	for {
		s := c.slot(tenantID)
		s.mu.Lock()
		if !s.removed {
			return s
		}
		s.mu.Unlock()
	}
}

// peekSlot looks up the tenant's slot without allocating one. Status polls
// from tenants that never recorded must not grow the map.
func (c *Coordinator) peekSlot(tenantID string) *tenantSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tenants[tenantID]
}

// release detaches an idle slot from the map. Caller holds s.mu.
func (c *Coordinator) release(tenantID string, s *tenantSlot) {
	s.removed = true
	c.mu.Lock()
	if c.tenants[tenantID] == s {
		delete(c.tenants, tenantID)
	}
	c.mu.Unlock()
}

// StartRecording creates a new live session for the tenant. It fails with
// ErrConflict if one is already active; the existing session is untouched
// and no new session is created in that case.
func (c *Coordinator) StartRecording(ctx context.Context, tenantID, name, description string, browser domain.BrowserMetadata) (*domain.RecordingSession, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: session name is required", ErrValidation)
	}

	slot := c.lockSlot(tenantID)
	defer slot.mu.Unlock()

	if slot.state != stateIdle {
		return nil, ErrConflict
	}

	session := &domain.RecordingSession{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		Status:      domain.StatusRecording,
		StartTime:   time.Now(),
		Actions:     []domain.RecordedAction{},
		Browser:     browser,
	}

	if err := c.repo.CreateSession(ctx, session); err != nil {
		c.release(tenantID, slot)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	slot.state = stateRecording
	slot.session = session

	c.logger.Info("recording started",
		"tenant_id", tenantID,
		"session_id", session.ID,
		"name", name,
	)
	return copySession(session), nil
}

// IngestAction appends an action to the tenant's live session. Actions
// addressed to an unknown or non-recording session are dropped (logged, no
// error): ingestion must never push state into an inconsistent shape.
// A persistence failure is returned so the capture agent can retry; the
// in-memory log only advances after the store has committed the action,
// keeping the count monotone for pollers.
func (c *Coordinator) IngestAction(ctx context.Context, tenantID, sessionID string, action domain.RecordedAction) error {
	if !action.Type.Valid() {
		c.logger.Warn("dropping action with unknown type",
			"tenant_id", tenantID, "session_id", sessionID, "type", string(action.Type))
		return nil
	}

	slot := c.peekSlot(tenantID)
	if slot == nil {
		c.logger.Warn("dropping action for inactive session",
			"tenant_id", tenantID, "session_id", sessionID, "type", string(action.Type))
		return nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.state != stateRecording || slot.session == nil || slot.session.ID != sessionID {
		c.logger.Warn("dropping action for inactive session",
			"tenant_id", tenantID, "session_id", sessionID, "type", string(action.Type))
		return nil
	}

	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.Timestamp == 0 {
		action.Timestamp = time.Now().UnixMilli()
	}

	if err := c.repo.AppendAction(ctx, tenantID, sessionID, action); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Persisted row already left "recording"; resync memory.
			c.logger.Warn("session no longer recording in store, dropping action",
				"tenant_id", tenantID, "session_id", sessionID)
			return nil
		}
		return fmt.Errorf("persist action: %w", err)
	}

	slot.session.Actions = append(slot.session.Actions, action)
	return nil
}

// StopRecording transitions the tenant's live session to stopped, freezing
// its action log. When nothing is active it returns (nil, nil): stopping an
// idle recorder is a no-op, not an error.
func (c *Coordinator) StopRecording(ctx context.Context, tenantID string) (*domain.RecordingSession, error) {
	slot := c.peekSlot(tenantID)
	if slot == nil {
		return nil, nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.state != stateRecording || slot.session == nil {
		return nil, nil
	}

	slot.state = stateStopping
	endTime := time.Now()

	if err := c.repo.UpdateSessionStatus(ctx, tenantID, slot.session.ID, domain.StatusStopped, endTime); err != nil {
		// Store and memory still agree the session is live; surface the
		// failure and let the caller retry the stop.
		slot.state = stateRecording
		return nil, fmt.Errorf("persist stop: %w", err)
	}

	slot.session.Status = domain.StatusStopped
	slot.session.EndTime = endTime
	stopped := copySession(slot.session)

	slot.state = stateIdle
	slot.session = nil
	c.release(tenantID, slot)

	c.logger.Info("recording stopped",
		"tenant_id", tenantID,
		"session_id", stopped.ID,
		"actions", len(stopped.Actions),
		"duration_ms", stopped.EndTime.Sub(stopped.StartTime).Milliseconds(),
	)
	return stopped, nil
}

// GetStatus returns an atomic snapshot of the tenant's recording state.
func (c *Coordinator) GetStatus(tenantID string) Status {
	slot := c.peekSlot(tenantID)
	if slot == nil {
		return Status{}
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.state != stateRecording || slot.session == nil {
		return Status{}
	}
	return Status{
		IsRecording: true,
		SessionID:   slot.session.ID,
		SessionName: slot.session.Name,
		ActionCount: len(slot.session.Actions),
		StartTime:   slot.session.StartTime,
	}
}

// ForceReset hard-resets the tenant's recording slot, used for recovery when
// the capture agent is lost. The live session, if any, is marked failed with
// whatever actions were already persisted; only in-flight unpersisted state
// is discarded. Repeated calls are no-ops after the first.
func (c *Coordinator) ForceReset(ctx context.Context, tenantID string) {
	slot := c.peekSlot(tenantID)
	if slot == nil {
		return
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.state == stateIdle || slot.session == nil {
		c.release(tenantID, slot)
		return
	}

	sessionID := slot.session.ID
	if err := c.repo.UpdateSessionStatus(ctx, tenantID, sessionID, domain.StatusFailed, time.Now()); err != nil {
		// The slot is cleared regardless so no further ingests land; the
		// janitor will fail the persisted row on its next sweep.
		c.logger.Warn("force reset could not persist failed status",
			"tenant_id", tenantID, "session_id", sessionID, "error", err)
	}

	slot.state = stateIdle
	slot.session = nil
	c.release(tenantID, slot)

	c.logger.Info("recording force-reset", "tenant_id", tenantID, "session_id", sessionID)
}

// ActiveTenants lists tenants that currently have a live recording.
func (c *Coordinator) ActiveTenants() []string {
	c.mu.Lock()
	slots := make(map[string]*tenantSlot, len(c.tenants))
	for id, s := range c.tenants {
		slots[id] = s
	}
	c.mu.Unlock()

	var active []string
	for id, s := range slots {
		s.mu.Lock()
		if s.state == stateRecording {
			active = append(active, id)
		}
		s.mu.Unlock()
	}
	return active
}

// MarkCompleted moves a terminal session to completed after a tool was
// generated from it. Live sessions are not eligible.
func (c *Coordinator) MarkCompleted(ctx context.Context, tenantID, sessionID string) error {
	session, err := c.repo.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.Status == domain.StatusRecording {
		return fmt.Errorf("%w: session is still recording", ErrValidation)
	}
	return c.repo.UpdateSessionStatus(ctx, tenantID, sessionID, domain.StatusCompleted, session.EndTime)
}

func copySession(s *domain.RecordingSession) *domain.RecordingSession {
	out := *s
	out.Actions = make([]domain.RecordedAction, len(s.Actions))
	copy(out.Actions, s.Actions)
	return &out
}

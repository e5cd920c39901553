// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
)

// ErrNotFound is returned when a requested session or tool does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the interface for persisting sessions and generated tools.
// All operations are tenant-scoped; a tenant can never observe another
// tenant's sessions or tools.
type Repository interface {
	// CreateSession persists a new recording session.
	CreateSession(ctx context.Context, session *domain.RecordingSession) error

	// GetSession retrieves a session with its full action log.
	// Returns ErrNotFound if the session does not exist for the tenant.
	GetSession(ctx context.Context, tenantID, sessionID string) (*domain.RecordingSession, error)

	// ListSessions returns session summaries for a tenant, newest first.
	// Summaries carry the action count but never the action log itself.
	ListSessions(ctx context.Context, tenantID string) ([]domain.Summary, error)

	// AppendAction appends one action to a session's log. The append only
	// succeeds while the session status is "recording"; otherwise
	// ErrNotFound is returned. The log is never truncated or reordered.
	AppendAction(ctx context.Context, tenantID, sessionID string, action domain.RecordedAction) error

	// UpdateSessionStatus moves a session to the given status and records
	// its end time. Returns ErrNotFound if the session does not exist.
	UpdateSessionStatus(ctx context.Context, tenantID, sessionID string, status domain.SessionStatus, endTime time.Time) error

	// DeleteSession removes a session. Returns false if nothing was deleted.
	DeleteSession(ctx context.Context, tenantID, sessionID string) (bool, error)

	// StaleRecordingSessions returns sessions still marked "recording" whose
	// last action (or start, if the log is empty) is older than the cutoff.
	// Used by the janitor to fail abandoned recordings across all tenants.
	StaleRecordingSessions(ctx context.Context, cutoff time.Time) ([]*domain.RecordingSession, error)

	// CreateTool persists a generated tool.
	CreateTool(ctx context.Context, tool *domain.GeneratedTool) error

	// GetTool retrieves a generated tool. Returns ErrNotFound if absent.
	GetTool(ctx context.Context, tenantID, toolID string) (*domain.GeneratedTool, error)

	// ListTools returns all generated tools for a tenant, newest first.
	ListTools(ctx context.Context, tenantID string) ([]*domain.GeneratedTool, error)

	// SetToolRegistration records the external registry ID assigned to a
	// tool, marking it as published.
	SetToolRegistration(ctx context.Context, tenantID, toolID, registryToolID string) error

	// IncrementToolExecutions bumps a tool's execution counter.
	IncrementToolExecutions(ctx context.Context, tenantID, toolID string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

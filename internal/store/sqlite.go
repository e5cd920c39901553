package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. Each session row embeds its
// ordered action log as a JSON array column, so ordering is free and needs no
// secondary sort key.
type SQLiteStore struct {
	db       *sql.DB
	appendMu sync.Mutex // Serializes action appends to avoid SQLITE_BUSY bursts
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS recording_sessions (
		session_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		actions_json TEXT NOT NULL DEFAULT '[]',
		browser_json TEXT,
		last_action_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_tenant ON recording_sessions(tenant_id, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_stale ON recording_sessions(last_action_at) WHERE status = 'recording';

	CREATE TABLE IF NOT EXISTS generated_tools (
		tool_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		session_id TEXT,
		name TEXT NOT NULL,
		description TEXT,
		code TEXT NOT NULL,
		parameters_json TEXT,
		registry_tool_id TEXT,
		execution_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tools_tenant ON generated_tools(tenant_id, created_at DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateSession persists a new recording session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.RecordingSession) error {
	actionsJSON, err := json.Marshal(session.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	if session.Actions == nil {
		actionsJSON = []byte("[]")
	}
	browserJSON, err := json.Marshal(session.Browser)
	if err != nil {
		return fmt.Errorf("marshal browser metadata: %w", err)
	}

	now := time.Now().UnixMilli()
	query := `
	INSERT INTO recording_sessions (
		session_id, tenant_id, name, description, status,
		start_time, end_time, actions_json, browser_json,
		last_action_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var endTime interface{}
	if !session.EndTime.IsZero() {
		endTime = session.EndTime.UnixMilli()
	}

	_, err = s.db.ExecContext(ctx, query,
		session.ID, session.TenantID, session.Name, session.Description, string(session.Status),
		session.StartTime.UnixMilli(), endTime, string(actionsJSON), string(browserJSON),
		session.StartTime.UnixMilli(), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session with its full action log.
func (s *SQLiteStore) GetSession(ctx context.Context, tenantID, sessionID string) (*domain.RecordingSession, error) {
	query := `
		SELECT session_id, tenant_id, name, description, status,
		       start_time, end_time, actions_json, browser_json
		FROM recording_sessions WHERE tenant_id = ? AND session_id = ?`

	row := s.db.QueryRowContext(ctx, query, tenantID, sessionID)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	return session, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.RecordingSession, error) {
	var session domain.RecordingSession
	var description, actionsJSON sql.NullString
	var browserJSON sql.NullString
	var startTime int64
	var endTime sql.NullInt64
	var status string

	err := row.Scan(
		&session.ID, &session.TenantID, &session.Name, &description, &status,
		&startTime, &endTime, &actionsJSON, &browserJSON,
	)
	if err != nil {
		return nil, err
	}

	session.Description = description.String
	session.Status = domain.SessionStatus(status)
	session.StartTime = time.UnixMilli(startTime)
	if endTime.Valid {
		session.EndTime = time.UnixMilli(endTime.Int64)
	}
	if actionsJSON.Valid && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &session.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions: %w", err)
		}
	}
	if browserJSON.Valid && browserJSON.String != "" {
		if err := json.Unmarshal([]byte(browserJSON.String), &session.Browser); err != nil {
			return nil, fmt.Errorf("unmarshal browser metadata: %w", err)
		}
	}
	return &session, nil
}

// ListSessions returns session summaries for a tenant, newest first.
// The action count comes from json_array_length so the log itself is never
// loaded for list views.
func (s *SQLiteStore) ListSessions(ctx context.Context, tenantID string) ([]domain.Summary, error) {
	query := `
		SELECT session_id, name, description, status,
		       start_time, end_time, json_array_length(actions_json)
		FROM recording_sessions
		WHERE tenant_id = ?
		ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close session rows", "error", closeErr)
		}
	}()

	var summaries []domain.Summary
	for rows.Next() {
		var sum domain.Summary
		var description sql.NullString
		var startTime int64
		var endTime sql.NullInt64
		var status string

		if err := rows.Scan(&sum.ID, &sum.Name, &description, &status,
			&startTime, &endTime, &sum.ActionsCount); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}

		sum.Description = description.String
		sum.Status = domain.SessionStatus(status)
		sum.StartTime = time.UnixMilli(startTime)
		if endTime.Valid {
			sum.EndTime = time.UnixMilli(endTime.Int64)
			sum.DurationMS = endTime.Int64 - startTime
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return summaries, nil
}

// AppendAction appends one action to a session's log in a single UPDATE, so
// the log is append-only at the SQL level. The guard on status means actions
// addressed to a stopped session affect zero rows.
func (s *SQLiteStore) AppendAction(ctx context.Context, tenantID, sessionID string, action domain.RecordedAction) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	actionJSON, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}

	query := `
		UPDATE recording_sessions
		SET actions_json = json_insert(actions_json, '$[#]', json(?)),
		    last_action_at = ?,
		    updated_at = ?
		WHERE tenant_id = ? AND session_id = ? AND status = 'recording'`

	now := time.Now().UnixMilli()
	var result sql.Result
	err = withConflictRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, string(actionJSON), now, now, tenantID, sessionID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSessionStatus moves a session to the given status and records its end time.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, tenantID, sessionID string, status domain.SessionStatus, endTime time.Time) error {
	query := `UPDATE recording_sessions SET status = ?, end_time = ?, updated_at = ? WHERE tenant_id = ? AND session_id = ?`

	var end interface{}
	if !endTime.IsZero() {
		end = endTime.UnixMilli()
	}

	var result sql.Result
	err := withConflictRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, string(status), end, time.Now().UnixMilli(), tenantID, sessionID)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, tenantID, sessionID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM recording_sessions WHERE tenant_id = ? AND session_id = ?`,
		tenantID, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// StaleRecordingSessions returns live sessions whose last activity predates the cutoff.
func (s *SQLiteStore) StaleRecordingSessions(ctx context.Context, cutoff time.Time) ([]*domain.RecordingSession, error) {
	query := `
		SELECT session_id, tenant_id, name, description, status,
		       start_time, end_time, actions_json, browser_json
		FROM recording_sessions
		WHERE status = 'recording' AND last_action_at < ?`

	rows, err := s.db.QueryContext(ctx, query, cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query stale sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close stale session rows", "error", closeErr)
		}
	}()

	var sessions []*domain.RecordingSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stale session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale sessions: %w", err)
	}
	return sessions, nil
}

// CreateTool persists a generated tool.
func (s *SQLiteStore) CreateTool(ctx context.Context, tool *domain.GeneratedTool) error {
	paramsJSON, err := json.Marshal(tool.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	query := `
	INSERT INTO generated_tools (
		tool_id, tenant_id, session_id, name, description, code,
		parameters_json, registry_tool_id, execution_count, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var registryID interface{}
	if tool.RegistryToolID != "" {
		registryID = tool.RegistryToolID
	}

	_, err = s.db.ExecContext(ctx, query,
		tool.ID, tool.TenantID, tool.SessionID, tool.Name, tool.Description, tool.Code,
		string(paramsJSON), registryID, tool.ExecutionCount,
		tool.CreatedAt.UnixMilli(), tool.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

// GetTool retrieves a generated tool.
func (s *SQLiteStore) GetTool(ctx context.Context, tenantID, toolID string) (*domain.GeneratedTool, error) {
	query := `
		SELECT tool_id, tenant_id, session_id, name, description, code,
		       parameters_json, registry_tool_id, execution_count, created_at, updated_at
		FROM generated_tools WHERE tenant_id = ? AND tool_id = ?`

	row := s.db.QueryRowContext(ctx, query, tenantID, toolID)
	tool, err := scanTool(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tool row: %w", err)
	}
	return tool, nil
}

func scanTool(row rowScanner) (*domain.GeneratedTool, error) {
	var tool domain.GeneratedTool
	var sessionID, description, paramsJSON, registryID sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&tool.ID, &tool.TenantID, &sessionID, &tool.Name, &description, &tool.Code,
		&paramsJSON, &registryID, &tool.ExecutionCount, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tool.SessionID = sessionID.String
	tool.Description = description.String
	tool.RegistryToolID = registryID.String
	tool.CreatedAt = time.UnixMilli(createdAt)
	tool.UpdatedAt = time.UnixMilli(updatedAt)
	if paramsJSON.Valid && paramsJSON.String != "" {
		if err := json.Unmarshal([]byte(paramsJSON.String), &tool.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal parameters: %w", err)
		}
	}
	return &tool, nil
}

// ListTools returns all generated tools for a tenant, newest first.
func (s *SQLiteStore) ListTools(ctx context.Context, tenantID string) ([]*domain.GeneratedTool, error) {
	query := `
		SELECT tool_id, tenant_id, session_id, name, description, code,
		       parameters_json, registry_tool_id, execution_count, created_at, updated_at
		FROM generated_tools
		WHERE tenant_id = ?
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query tools: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close tool rows", "error", closeErr)
		}
	}()

	var tools []*domain.GeneratedTool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, tool)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tools: %w", err)
	}
	return tools, nil
}

// SetToolRegistration records the external registry ID assigned to a tool.
func (s *SQLiteStore) SetToolRegistration(ctx context.Context, tenantID, toolID, registryToolID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE generated_tools SET registry_tool_id = ?, updated_at = ? WHERE tenant_id = ? AND tool_id = ?`,
		registryToolID, time.Now().UnixMilli(), tenantID, toolID)
	if err != nil {
		return fmt.Errorf("set tool registration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementToolExecutions bumps a tool's execution counter.
func (s *SQLiteStore) IncrementToolExecutions(ctx context.Context, tenantID, toolID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE generated_tools SET execution_count = execution_count + 1, updated_at = ? WHERE tenant_id = ? AND tool_id = ?`,
		time.Now().UnixMilli(), tenantID, toolID)
	if err != nil {
		return fmt.Errorf("increment tool executions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

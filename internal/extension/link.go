// Package extension manages the server side of the capture-agent link: the
// websocket the browser extension reports actions over, the HTTP liveness
// toggles, and the connection monitor that detects a lost agent.
package extension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mymcpme/recorder/internal/domain"
)

// ErrNoAgent is returned when an operation requires a linked capture agent
// and none is present for the tenant.
var ErrNoAgent = errors.New("no capture agent linked")

// Ingester receives actions reported by capture agents.
type Ingester interface {
	IngestAction(ctx context.Context, tenantID, sessionID string, action domain.RecordedAction) error
}

// agentLink is one tenant's capture-agent connection. conn is nil while the
// agent is linked over HTTP only (recording works without the websocket; tool
// execution needs it).
type agentLink struct {
	conn        *websocket.Conn
	lastPing    time.Time
	connectedAt time.Time
	meta        domain.BrowserMetadata
}

// execResult is the agent's reply to a dispatched tool run.
type execResult struct {
	Success bool
	Error   string
}

// LinkManager tracks capture-agent links per tenant.
type LinkManager struct {
	ingester     Ingester
	logger       *slog.Logger
	heartbeatMax time.Duration

	mu      sync.RWMutex
	links   map[string]*agentLink
	pending map[string]chan execResult
}

// NewLinkManager creates a link manager. heartbeatMax bounds how stale an
// HTTP-only heartbeat may be before a probe counts as failed.
func NewLinkManager(ingester Ingester, heartbeatMax time.Duration, logger *slog.Logger) *LinkManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkManager{
		ingester:     ingester,
		logger:       logger,
		heartbeatMax: heartbeatMax,
		links:        make(map[string]*agentLink),
		pending:      make(map[string]chan execResult),
	}
}

// Connect records an agent as linked for the tenant (the HTTP liveness
// toggle). Idempotent; refreshes the heartbeat when already linked.
func (m *LinkManager) Connect(tenantID string, meta domain.BrowserMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[tenantID]
	if !ok {
		link = &agentLink{connectedAt: time.Now()}
		m.links[tenantID] = link
		m.logger.Info("capture agent linked", "tenant_id", tenantID, "user_agent", meta.UserAgent)
	}
	link.lastPing = time.Now()
	if meta.UserAgent != "" || meta.ExtensionVersion != "" {
		link.meta = meta
	}
}

// Disconnect removes the tenant's link and closes its websocket if present.
func (m *LinkManager) Disconnect(tenantID string) {
	m.mu.Lock()
	link, ok := m.links[tenantID]
	if ok {
		delete(m.links, tenantID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	if link.conn != nil {
		_ = link.conn.Close(websocket.StatusNormalClosure, "agent disconnected")
	}
	m.logger.Info("capture agent unlinked", "tenant_id", tenantID)
}

// Heartbeat refreshes the tenant's liveness timestamp.
func (m *LinkManager) Heartbeat(tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[tenantID]; ok {
		link.lastPing = time.Now()
	}
}

// Status reports the tenant's link state for the connection-status endpoint.
func (m *LinkManager) Status(tenantID string) domain.ConnectionStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[tenantID]
	if !ok {
		return domain.ConnectionStatus{Connected: false}
	}
	return domain.ConnectionStatus{Connected: true, LastPing: link.lastPing}
}

// Linked reports whether the tenant has any agent link at all.
func (m *LinkManager) Linked(tenantID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.links[tenantID]
	return ok
}

// Probe checks the tenant's agent liveness. Over a websocket it issues a
// ping; for HTTP-only links it checks heartbeat age. Returns ErrNoAgent when
// nothing is linked.
func (m *LinkManager) Probe(ctx context.Context, tenantID string) error {
	m.mu.RLock()
	link, ok := m.links[tenantID]
	var conn *websocket.Conn
	var lastPing time.Time
	if ok {
		conn = link.conn
		lastPing = link.lastPing
	}
	m.mu.RUnlock()

	if !ok {
		return ErrNoAgent
	}

	if conn != nil {
		if err := conn.Ping(ctx); err != nil {
			return fmt.Errorf("agent ping: %w", err)
		}
		m.Heartbeat(tenantID)
		return nil
	}

	if time.Since(lastPing) > m.heartbeatMax {
		return fmt.Errorf("%w: heartbeat stale by %s", ErrNoAgent, time.Since(lastPing).Round(time.Second))
	}
	return nil
}

// SendReset tells the tenant's agent to drop any cached recording state.
// Used by the forced-reset path so stale actions cannot resurface after a
// client restart. Best effort when only HTTP-linked: the agent has no
// websocket to receive the message, and its cache dies with the page.
func (m *LinkManager) SendReset(ctx context.Context, tenantID string) error {
	m.mu.RLock()
	link, ok := m.links[tenantID]
	var conn *websocket.Conn
	if ok {
		conn = link.conn
	}
	m.mu.RUnlock()

	if !ok || conn == nil {
		return nil
	}

	msg, _ := json.Marshal(map[string]string{"type": "reset"})
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return fmt.Errorf("send reset: %w", err)
	}
	return nil
}

// DispatchTest sends generated tool code to the tenant's agent for replay
// and waits for the result. Fails with ErrNoAgent if no live websocket is
// present; it is never auto-retried.
func (m *LinkManager) DispatchTest(ctx context.Context, tenantID, code string) error {
	m.mu.Lock()
	link, ok := m.links[tenantID]
	var conn *websocket.Conn
	if ok {
		conn = link.conn
	}
	if !ok || conn == nil {
		m.mu.Unlock()
		return ErrNoAgent
	}

	requestID := uuid.New().String()
	resultCh := make(chan execResult, 1)
	m.pending[requestID] = resultCh
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.pending, requestID)
		m.mu.Unlock()
	}()

	msg, err := json.Marshal(map[string]string{
		"type": "execute",
		"id":   requestID,
		"code": code,
	})
	if err != nil {
		return fmt.Errorf("marshal execute message: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return fmt.Errorf("dispatch test: %w", err)
	}

	select {
	case result := <-resultCh:
		if !result.Success {
			return fmt.Errorf("tool execution failed: %s", result.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attach binds a websocket to the tenant's link, creating the link if the
// agent skipped the HTTP connect. An older socket is replaced.
func (m *LinkManager) attach(tenantID string, conn *websocket.Conn) {
	m.mu.Lock()
	link, ok := m.links[tenantID]
	if !ok {
		link = &agentLink{connectedAt: time.Now()}
		m.links[tenantID] = link
	}
	old := link.conn
	link.conn = conn
	link.lastPing = time.Now()
	m.mu.Unlock()

	if old != nil && old != conn {
		_ = old.Close(websocket.StatusNormalClosure, "socket replaced")
	}
	m.logger.Info("capture agent socket attached", "tenant_id", tenantID)
}

// detach removes a websocket from the tenant's link if it is still current.
// The HTTP link survives: recording over HTTP keeps working until the
// monitor or an explicit disconnect says otherwise.
func (m *LinkManager) detach(tenantID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[tenantID]; ok && link.conn == conn {
		link.conn = nil
	}
}

// resolve completes a pending tool-test dispatch.
func (m *LinkManager) resolve(requestID string, result execResult) {
	m.mu.Lock()
	ch, ok := m.pending[requestID]
	if ok {
		delete(m.pending, requestID)
	}
	m.mu.Unlock()

	if ok {
		ch <- result
	}
}

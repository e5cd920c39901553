package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/extension"
	"github.com/mymcpme/recorder/internal/identity"
	"github.com/mymcpme/recorder/internal/recorder"
	"github.com/mymcpme/recorder/internal/store"
)

// RecorderHandler handles session lifecycle and capture-agent endpoints.
type RecorderHandler struct {
	*Handler
	coord   *recorder.Coordinator
	links   *extension.LinkManager
	monitor *extension.Monitor
}

// NewRecorderHandler creates a new recorder handler.
func NewRecorderHandler(base *Handler, coord *recorder.Coordinator, links *extension.LinkManager, monitor *extension.Monitor) *RecorderHandler {
	return &RecorderHandler{Handler: base, coord: coord, links: links, monitor: monitor}
}

// RegisterRoutes registers recorder routes.
func (h *RecorderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/recorder/start", h.Start)
	r.Post("/recorder/stop", h.Stop)
	r.Post("/recorder/action", h.Action)
	r.Get("/recorder/status", h.Status)
	r.Get("/recorder/connection-status", h.ConnectionStatus)
	r.Get("/recorder/sessions", h.ListSessions)
	r.Get("/recorder/sessions/{id}", h.GetSession)
	r.Delete("/recorder/sessions/{id}", h.DeleteSession)
	r.Post("/extension-link/connect", h.Connect)
	r.Post("/extension-link/disconnect", h.Disconnect)
}

type startRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Browser     domain.BrowserMetadata `json:"browser"`
}

// Start begins a new recording session for the tenant.
func (h *RecorderHandler) Start(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.coord.StartRecording(r.Context(), tenantID, req.Name, req.Description, req.Browser)
	if err != nil {
		slog.Warn("start recording rejected", "tenant_id", tenantID, "error", err)
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": session.ID,
		"name":      session.Name,
		"startTime": session.StartTime,
	})
}

// Stop ends the tenant's active recording. Stopping with nothing active is
// not an error; the response says so explicitly.
func (h *RecorderHandler) Stop(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	session, err := h.coord.StopRecording(r.Context(), tenantID)
	if err != nil {
		slog.Error("stop recording failed", "tenant_id", tenantID, "error", err)
		DomainError(w, err)
		return
	}
	if session == nil {
		JSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"active":  true,
		"session": session,
	})
}

type actionRequest struct {
	SessionID string                `json:"sessionId"`
	Action    domain.RecordedAction `json:"action"`
}

// Action ingests one captured browser action. Arriving over HTTP it doubles
// as an agent heartbeat.
func (h *RecorderHandler) Action(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	if !h.links.Linked(tenantID) {
		DomainError(w, recorder.ErrNotConnected)
		return
	}
	h.links.Heartbeat(tenantID)

	if err := h.coord.IngestAction(r.Context(), tenantID, req.SessionID, req.Action); err != nil {
		slog.Error("action ingest failed", "tenant_id", tenantID, "session_id", req.SessionID, "error", err)
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status returns the tenant's live recording snapshot for pollers.
func (h *RecorderHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	JSON(w, http.StatusOK, h.coord.GetStatus(tenantID))
}

// ConnectionStatus reports the capture-agent link state as seen by the
// connection monitor.
func (h *RecorderHandler) ConnectionStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	status := h.links.Status(tenantID)

	// The monitor only tracks tenants with a live recording; outside of one
	// the link state is the whole truth.
	connected := status.Connected
	state, probeErr := h.monitor.StateFor(tenantID)
	if h.coord.GetStatus(tenantID).IsRecording {
		connected = connected && state == extension.StateConnected
	}

	resp := map[string]interface{}{
		"connected": connected,
		"state":     state.String(),
	}
	if !status.LastPing.IsZero() {
		resp["lastPing"] = status.LastPing
	}
	if probeErr != nil {
		resp["error"] = probeErr.Error()
	}
	JSON(w, http.StatusOK, resp)
}

// ListSessions returns session summaries for the tenant, newest first.
func (h *RecorderHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	summaries, err := h.repo.ListSessions(r.Context(), tenantID)
	if err != nil {
		slog.Error("list sessions failed", "tenant_id", tenantID, "error", err)
		DomainError(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	JSON(w, http.StatusOK, summaries)
}

// GetSession returns one session with its full ordered action log.
func (h *RecorderHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := h.repo.GetSession(r.Context(), tenantID, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("get session failed", "tenant_id", tenantID, "session_id", sessionID, "error", err)
		}
		DomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, session)
}

// DeleteSession removes a session. A live session is stopped first so its
// timers and slot state cannot outlive the row.
func (h *RecorderHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	if status := h.coord.GetStatus(tenantID); status.IsRecording && status.SessionID == sessionID {
		h.coord.ForceReset(r.Context(), tenantID)
	}

	deleted, err := h.repo.DeleteSession(r.Context(), tenantID, sessionID)
	if err != nil {
		slog.Error("delete session failed", "tenant_id", tenantID, "session_id", sessionID, "error", err)
		DomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

type connectRequest struct {
	Browser domain.BrowserMetadata `json:"browser"`
}

// Connect marks the tenant's capture agent as linked.
func (h *RecorderHandler) Connect(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	var req connectRequest
	// Body is optional; older agents send none.
	_ = json.NewDecoder(r.Body).Decode(&req)

	h.links.Connect(tenantID, req.Browser)
	JSON(w, http.StatusOK, map[string]interface{}{
		"connected": true,
		"time":      time.Now(),
	})
}

// Disconnect unlinks the tenant's capture agent. Any live recording is
// force-reset immediately rather than waiting for the monitor to notice.
func (h *RecorderHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	if h.coord.GetStatus(tenantID).IsRecording {
		h.coord.ForceReset(r.Context(), tenantID)
	}
	h.links.Disconnect(tenantID)

	JSON(w, http.StatusOK, map[string]bool{"connected": false})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/extension"
	"github.com/mymcpme/recorder/internal/identity"
	"github.com/mymcpme/recorder/internal/recorder"
)

// Registrar publishes generated tools to the external tool registry.
type Registrar interface {
	Register(ctx context.Context, tool *domain.GeneratedTool) (string, error)
}

// Dispatcher runs tool code on a tenant's connected capture agent.
type Dispatcher interface {
	DispatchTest(ctx context.Context, tenantID, code string) error
}

// ToolsHandler handles code generation and generated-tool endpoints.
type ToolsHandler struct {
	*Handler
	coord     *recorder.Coordinator
	links     Dispatcher
	registrar Registrar // nil when no registry is configured
}

// NewToolsHandler creates a new tools handler. registrar may be nil; tools
// are then saved locally without being published.
func NewToolsHandler(base *Handler, coord *recorder.Coordinator, links Dispatcher, registrar Registrar) *ToolsHandler {
	return &ToolsHandler{Handler: base, coord: coord, links: links, registrar: registrar}
}

// RegisterRoutes registers tool routes.
func (h *ToolsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/recorder/sessions/{id}/generate-tool", h.GenerateTool)
	r.Post("/recorder/sessions/{id}/save-tool", h.SaveTool)
	r.Get("/recorder/tools", h.ListTools)
	r.Post("/recorder/tools/{id}/test", h.TestTool)
}

type generateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GenerateTool compiles a session's action log into automation code without
// persisting anything. The same log always yields the same code.
func (h *ToolsHandler) GenerateTool(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req generateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.repo.GetSession(r.Context(), tenantID, sessionID)
	if err != nil {
		DomainError(w, err)
		return
	}

	name := req.Name
	if name == "" {
		name = recorder.SuggestName(session.Actions)
	}
	description := req.Description
	if description == "" {
		description = session.Description
	}

	code := recorder.Generate(session.Actions, name, description)
	JSON(w, http.StatusOK, map[string]interface{}{
		"name":       name,
		"code":       code,
		"parameters": recorder.ExtractParameters(session.Actions),
	})
}

type saveToolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// SaveTool persists a tool generated from the session and publishes it to
// the tool registry. The session must have left the recording state.
// When the request omits code, it is generated from the
// session's action log. Registry failure downgrades to a local-only save
// with a warning; the tool is never lost.
func (h *ToolsHandler) SaveTool(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req saveToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}

	session, err := h.repo.GetSession(r.Context(), tenantID, sessionID)
	if err != nil {
		DomainError(w, err)
		return
	}
	if session.Status == domain.StatusRecording {
		Error(w, http.StatusConflict, "session is still recording, stop it first")
		return
	}

	code := req.Code
	if code == "" {
		code = recorder.Generate(session.Actions, req.Name, req.Description)
	}

	now := time.Now()
	tool := &domain.GeneratedTool{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		SessionID:   sessionID,
		Name:        req.Name,
		Description: req.Description,
		Code:        code,
		Parameters:  recorder.ExtractParameters(session.Actions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.CreateTool(r.Context(), tool); err != nil {
		slog.Error("save tool failed", "tenant_id", tenantID, "session_id", sessionID, "error", err)
		DomainError(w, err)
		return
	}

	registered := false
	if h.registrar != nil {
		registryToolID, err := h.registrar.Register(r.Context(), tool)
		if err != nil {
			slog.Warn("tool registry unavailable, tool saved locally only",
				"tenant_id", tenantID, "tool_id", tool.ID, "error", err)
		} else if err := h.repo.SetToolRegistration(r.Context(), tenantID, tool.ID, registryToolID); err != nil {
			slog.Error("failed to record tool registration", "tool_id", tool.ID, "error", err)
		} else {
			registered = true
		}
	}

	if err := h.coord.MarkCompleted(r.Context(), tenantID, sessionID); err != nil {
		slog.Warn("could not mark session completed", "session_id", sessionID, "error", err)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"toolId":     tool.ID,
		"registered": registered,
	})
}

// ListTools returns the tenant's generated tools, newest first.
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())

	tools, err := h.repo.ListTools(r.Context(), tenantID)
	if err != nil {
		slog.Error("list tools failed", "tenant_id", tenantID, "error", err)
		DomainError(w, err)
		return
	}
	if tools == nil {
		tools = []*domain.GeneratedTool{}
	}
	JSON(w, http.StatusOK, tools)
}

type testToolRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

// TestTool replays a saved tool against the tenant's live capture agent.
// The body may override the code to run, either directly or by naming a
// session whose action log is recompiled. Fails with a conflict when no
// agent is connected; never auto-retried.
func (h *ToolsHandler) TestTool(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	toolID := chi.URLParam(r, "id")

	var req testToolRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	tool, err := h.repo.GetTool(r.Context(), tenantID, toolID)
	if err != nil {
		DomainError(w, err)
		return
	}

	code := tool.Code
	switch {
	case req.Code != "":
		code = req.Code
	case req.SessionID != "":
		session, err := h.repo.GetSession(r.Context(), tenantID, req.SessionID)
		if err != nil {
			DomainError(w, err)
			return
		}
		code = recorder.Generate(session.Actions, tool.Name, tool.Description)
	}

	if err := h.links.DispatchTest(r.Context(), tenantID, code); err != nil {
		if errors.Is(err, extension.ErrNoAgent) {
			DomainError(w, recorder.ErrNotConnected)
			return
		}
		slog.Error("tool test failed", "tenant_id", tenantID, "tool_id", toolID, "error", err)
		Error(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := h.repo.IncrementToolExecutions(r.Context(), tenantID, toolID); err != nil {
		slog.Warn("could not bump execution count", "tool_id", toolID, "error", err)
	}

	JSON(w, http.StatusOK, map[string]string{"status": "passed"})
}

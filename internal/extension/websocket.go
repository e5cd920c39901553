package extension

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/mymcpme/recorder/internal/domain"
	"github.com/mymcpme/recorder/internal/identity"
)

// wsMessage is the capture agent's wire format.
type wsMessage struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"sessionId,omitempty"`
	Action    *domain.RecordedAction `json:"action,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Success   bool                   `json:"success,omitempty"`
	Error     string                 `json:"error,omitempty"`
	UserAgent string                 `json:"userAgent,omitempty"`
	Version   string                 `json:"version,omitempty"`
}

// WebSocketHandler upgrades capture-agent connections and pumps their
// messages into the link manager and coordinator.
type WebSocketHandler struct {
	links         *LinkManager
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a websocket handler for capture agents.
func NewWebSocketHandler(links *LinkManager, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{links: links, allowedOrigin: allowedOrigin, isDev: isDev}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenantID := identity.TenantIDFromContext(r.Context())
	slog.Info("capture agent websocket request", "tenant_id", tenantID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept capture agent websocket", "error", err, "tenant_id", tenantID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "link closed"); closeErr != nil {
			slog.Debug("failed to close capture agent websocket", "error", closeErr, "tenant_id", tenantID)
		}
	}()

	h.links.attach(tenantID, ws)
	defer h.links.detach(tenantID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, ws, tenantID)
	slog.Info("capture agent websocket ended", "tenant_id", tenantID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("capture agent origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, tenantID string) {
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("capture agent websocket closed", "tenant_id", tenantID)
			} else {
				slog.Warn("capture agent websocket read error", "error", err, "tenant_id", tenantID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Warn("unparseable capture agent message", "error", err, "tenant_id", tenantID)
			continue
		}

		switch msg.Type {
		case "action":
			if msg.Action == nil {
				slog.Warn("action message without action payload", "tenant_id", tenantID)
				continue
			}
			h.links.Heartbeat(tenantID)
			if err := h.links.ingester.IngestAction(ctx, tenantID, msg.SessionID, *msg.Action); err != nil {
				slog.Warn("action ingest failed", "error", err, "tenant_id", tenantID, "session_id", msg.SessionID)
			}
		case "pong", "heartbeat":
			h.links.Heartbeat(tenantID)
		case "connected":
			h.links.Connect(tenantID, domain.BrowserMetadata{
				UserAgent:        msg.UserAgent,
				ExtensionVersion: msg.Version,
			})
		case "executeResult":
			h.links.resolve(msg.ID, execResult{Success: msg.Success, Error: msg.Error})
		default:
			slog.Debug("ignoring capture agent message", "type", msg.Type, "tenant_id", tenantID)
		}
	}
}

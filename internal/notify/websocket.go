package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
)

// WebSocketHandler upgrades dashboard connections and registers them as
// observers until they disconnect.
type WebSocketHandler struct {
	hub           *Hub
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new dashboard websocket handler.
func NewWebSocketHandler(hub *Hub, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsObserver adapts a websocket connection to the Observer interface.
// coder/websocket serializes concurrent writes internally.
type wsObserver struct {
	conn *websocket.Conn
}

func (o *wsObserver) Send(ctx context.Context, data []byte) error {
	return o.conn.Write(ctx, websocket.MessageText, data)
}

// ServeHTTP implements http.Handler for the dashboard websocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept dashboard WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "dashboard closed"); closeErr != nil {
			slog.Debug("Failed to close dashboard websocket", "error", closeErr)
		}
	}()

	id := h.hub.Register(&wsObserver{conn: ws})
	defer h.hub.Unregister(id)

	// Observers only listen; the read loop exists to notice disconnects.
	ctx := r.Context()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Dashboard WebSocket closed by client", "observer_id", id)
			}
			return
		}
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("Dashboard WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/middleware"
	"github.com/yourorg/inventario/internal/service"
)

// EventsHandler streams the tenant's asset mutations over a websocket so
// an open listing page can refresh without polling.
type EventsHandler struct {
	broadcaster *service.Broadcaster
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broadcaster *service.Broadcaster, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, a := range allowedOrigins {
					if a == "*" || a == origin {
						return true
					}
				}
				return false
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles GET /ws/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}
	// The feed mirrors the mutation stream, so it is limited to the roles
	// that can mutate.
	if !security.IsAdministrative(security.Role(identity.Role)) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "administrative role required"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	events, cancel := h.broadcaster.Subscribe(identity.TenantID)
	defer cancel()

	h.logger.Info("events feed opened",
		slog.String("tenant_id", identity.TenantID),
		slog.String("login", identity.Login),
	)

	// Reader goroutine: we never expect client messages, but reading is
	// how close frames and connection loss surface.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

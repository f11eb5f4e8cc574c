package websocket

import (
	"net/http"
	"slices"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/config"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler handles WebSocket upgrade requests
type Handler struct {
	hub      *Hub
	config   *config.Config
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, cfg *config.Config, logger zerolog.Logger) *Handler {
	h := &Handler{
		hub:    hub,
		config: cfg,
		logger: logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients) and browsers from one of the allowed origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, "*") || slices.Contains(h.config.AllowedOrigins, origin)
}

// ServeHTTP upgrades the connection and subscribes it to ?workspace_id=
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace_id")
	if workspaceID == "" {
		http.Error(w, "workspace_id is required", http.StatusBadRequest)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, workspaceID, h.config, h.logger)

	// Register client with hub
	h.hub.register <- client

	// Start client pumps
	client.Start()
}

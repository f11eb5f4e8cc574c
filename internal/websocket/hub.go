package websocket

import (
	"sync"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/metrics"
	"github.com/rs/zerolog"
)

// envelope is a message addressed to one workspace, or to everyone when
// workspaceID is empty
type envelope struct {
	workspaceID string
	data        []byte
}

// Hub maintains the set of active clients and routes messages to the
// clients subscribed to a workspace
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages
	broadcast chan envelope

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Called in its own goroutine for every new client
	onRegister func(workspaceID string)

	// Logger
	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

// OnRegister installs a callback run for each newly registered client. It
// must be set before Run is started.
func (h *Hub) OnRegister(fn func(workspaceID string)) {
	h.onRegister = fn
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	m := metrics.Get()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			m.RecordWebSocketConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Str("workspace_id", client.workspaceID).
				Int("total_clients", total).
				Msg("client connected")
			if h.onRegister != nil {
				go h.onRegister(client.workspaceID)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("client disconnected")
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- envelope{data: message}
}

// Publish sends a message to the clients subscribed to workspaceID
func (h *Hub) Publish(workspaceID string, message []byte) {
	h.broadcast <- envelope{workspaceID: workspaceID, data: message}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HasSubscribers reports whether any client watches workspaceID
func (h *Hub) HasSubscribers(workspaceID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.workspaceID == workspaceID {
			return true
		}
	}
	return false
}

// Workspaces returns the distinct workspaces with at least one subscriber
func (h *Hub) Workspaces() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for client := range h.clients {
		if _, ok := seen[client.workspaceID]; ok {
			continue
		}
		seen[client.workspaceID] = struct{}{}
		out = append(out, client.workspaceID)
	}
	return out
}

func (h *Hub) deliver(msg envelope) {
	m := metrics.Get()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if msg.workspaceID != "" && client.workspaceID != msg.workspaceID {
			continue
		}
		select {
		case client.send <- msg.data:
			m.RecordWebSocketMessage()
		default:
			// Client's send buffer is full, close and remove it
			h.remove(client)
			m.RecordWebSocketError()
			h.logger.Warn().
				Str("client_id", client.id).
				Msg("client send buffer full, closing connection")
		}
	}
}

// remove must be called with h.mu held
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	metrics.Get().RecordWebSocketDisconnect()
}

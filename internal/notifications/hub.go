package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxTotalConns = 10000

// ErrHubFull is returned by Register when the connection limit is reached.
var ErrHubFull = errors.New("server connection limit reached")

// Hub tracks listing feed subscribers on this instance.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	closed   bool
	maxConns int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{}), maxConns: maxTotalConns}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "listing feed" }

// Register adds a connection. conn may be nil in tests.
func (h *Hub) Register(id string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(h.clients) >= h.maxConns {
		return nil, ErrHubFull
	}
	client := NewClient(h, conn, id)
	h.clients[client] = struct{}{}
	observability.WebSocketConnections.Inc()
	return client, nil
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	observability.WebSocketConnections.Dec()
}

// Count is the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.TrySend(message)
	}
}

// PublishListingCreated delivers the event to local subscribers only. Used
// when no Redis is configured and the process is the only instance.
func (h *Hub) PublishListingCreated(_ context.Context, property *models.Property) error {
	payload, err := EncodeListingCreated(property)
	if err != nil {
		return err
	}
	h.BroadcastAll(payload)
	return nil
}

// StartWiring forwards events published on any instance to this hub.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartListingSubscriber(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every connection with a going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		if client.Conn != nil {
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				middleware.Logger.Debug("listing feed close frame failed", slog.String("client", client.ID), slog.String("error", err.Error()))
			}
			_ = client.Conn.Close()
		}
		delete(h.clients, client)
		close(client.Send)
		observability.WebSocketConnections.Dec()
	}
	return nil
}

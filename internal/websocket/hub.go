package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() string
	Send(data []byte) error
	Close() error
}

// Hub tracks live report connections per user
// It is safe for concurrent use
type Hub struct {
	// users maps user ID to a map of client ID to client
	users map[string]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	h.users[userID][client.ID()] = client

	log.Debug().
		Str("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clients, ok := h.users[userID]
	if !ok {
		return
	}
	if _, exists := clients[client.ID()]; !exists {
		return
	}

	delete(clients, client.ID())
	if len(clients) == 0 {
		delete(h.users, userID)
	}

	log.Debug().
		Str("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every connection of a user
func (h *Hub) Broadcast(userID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	clients := h.snapshot(userID)
	for _, client := range clients {
		if err := client.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("client_id", client.ID()).
				Msg("Failed to send to client")
		}
	}

	log.Debug().
		Str("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

func (h *Hub) snapshot(userID string) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]ClientInterface, 0, len(h.users[userID]))
	for _, client := range h.users[userID] {
		clients = append(clients, client)
	}
	return clients
}

// ClientCount returns the number of connections a user has open
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the total number of connected clients
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}

// CloseAll closes every connection, e.g. on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var clients []ClientInterface
	for _, byID := range h.users {
		for _, client := range byID {
			clients = append(clients, client)
		}
	}
	h.users = make(map[string]map[string]ClientInterface)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}

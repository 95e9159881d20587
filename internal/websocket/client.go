package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 1024
)

// MessageHandler receives text frames read from the peer
type MessageHandler func(data []byte)

// Client represents a single WebSocket connection
type Client struct {
	id        string
	userID    string
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	onMessage MessageHandler
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client. onMessage may be nil.
func NewClient(conn *websocket.Conn, userID string, hub *Hub, onMessage MessageHandler) *Client {
	return &Client{
		id:        uuid.New().String(),
		userID:    userID,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, 64),
		onMessage: onMessage,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the id of the user that opened the connection
func (c *Client) UserID() string {
	return c.userID
}

// SetMessageHandler replaces the handler for incoming frames.
// Call it before starting ReadPump.
func (c *Client) SetMessageHandler(onMessage MessageHandler) {
	c.onMessage = onMessage
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the client connection
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump reads frames from the connection and hands text frames to the
// message handler. It blocks until the peer disconnects, then unregisters
// and closes the client. done is called last, if set.
func (c *Client) ReadPump(done func()) {
	defer func() {
		if c.hub != nil {
			c.hub.Unregister(c)
		}
		c.Close()
		if done != nil {
			done()
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID).
					Msg("WebSocket unexpected close")
			}
			return
		}
		if messageType != websocket.TextMessage || c.onMessage == nil {
			continue
		}
		c.onMessage(data)
	}
}

// WritePump pumps queued messages to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, the client is shutting down
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

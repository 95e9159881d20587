package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id, userID string) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() string {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

// Events decodes every message received so far
func (m *mockClient) Events(t *testing.T) []Event {
	t.Helper()
	var events []Event
	for _, raw := range m.GetMessages() {
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		events = append(events, event)
	}
	return events
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", "user-1")
	client2 := newMockClient("client-2", "user-1")
	client3 := newMockClient("client-3", "user-2")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount("user-1"))
	assert.Equal(t, 1, hub.ClientCount("user-2"))
	assert.Equal(t, 0, hub.ClientCount("nobody"))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount("user-1"))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	client1a := newMockClient("client-1a", "user-1")
	client1b := newMockClient("client-1b", "user-1")
	client2 := newMockClient("client-2", "user-2")

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	hub.Broadcast("user-1", ReportExported(map[string]string{"url": "https://x"}))

	assert.Len(t, client1a.GetMessages(), 1)
	assert.Len(t, client1b.GetMessages(), 1)
	assert.Empty(t, client2.GetMessages(), "other users must not receive the event")
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), fmt.Sprintf("user-%d", i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(fmt.Sprintf("user-%d", idx%5), ReportExported(nil))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", "user-1"))
	})
}

func TestHub_BroadcastToUserWithoutClients(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast("nobody", ReportExported(nil))
	})
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	client1 := newMockClient("client-1", "user-1")
	client2 := newMockClient("client-2", "user-2")
	hub.Register(client1)
	hub.Register(client2)

	hub.CloseAll()

	assert.True(t, client1.IsClosed())
	assert.True(t, client2.IsClosed())
	assert.Equal(t, 0, hub.TotalClientCount())
}

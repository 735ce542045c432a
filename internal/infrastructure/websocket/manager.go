package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vuquangminhpe/eb/internal/usecase"
	"github.com/vuquangminhpe/eb/pkg/dedup"
	"github.com/vuquangminhpe/eb/pkg/logger"
)

// sendFingerprintCapacity bounds the per-user replay window.
const sendFingerprintCapacity = 200

// Client is one live connection. UserID stays empty until the peer announces
// itself with a join event.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// Manager is the presence registry plus the realtime gateway: it maps online
// user identities to their active connection and relays events between them.
// Presence is process-local and best-effort; the authoritative unread state
// lives in the message store.
type Manager struct {
	clients  map[string]*Client
	recent   map[string]*dedup.Cache
	mutex    sync.RWMutex
	messages *usecase.MessageUseCase
}

func NewManager(messages *usecase.MessageUseCase) *Manager {
	return &Manager{
		clients:  make(map[string]*Client),
		recent:   make(map[string]*dedup.Cache),
		messages: messages,
	}
}

// join registers the connection under the user's identity. Last connect wins:
// a second connection for the same user overwrites the slot, and the earlier
// connection silently loses presence while remaining open.
func (m *Manager) join(userID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if previous, ok := m.clients[userID]; ok && previous != client {
		logger.Warn("User %s rejoined; replacing presence entry", userID)
	}
	m.clients[userID] = client
	logger.Info("User %s joined", userID)
}

// leave removes the connection's presence entry. Guarded by handle identity so
// a stale connection's disconnect never evicts its replacement.
func (m *Manager) leave(client *Client) {
	if client.UserID == "" {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
		logger.Info("User %s left", client.UserID)
	}
}

// Resolve returns the user's active connection, if any.
func (m *Manager) Resolve(userID string) (*Client, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	client, ok := m.clients[userID]
	return client, ok
}

// Disconnect tears a connection down: presence cleanup and send-channel close.
// Already-persisted messages are never affected, and the user's recent-send
// window is kept so a replay over the next connection is still recognized.
func (m *Manager) Disconnect(client *Client) {
	m.leave(client)
	client.closeSend()
}

// recallSend returns the payload of an earlier successful send carrying the
// same fingerprint, if the user's recent-send window still holds it.
func (m *Manager) recallSend(userID, fingerprint string) (*usecase.MessageResponse, bool) {
	m.mutex.RLock()
	cache, ok := m.recent[userID]
	m.mutex.RUnlock()
	if !ok {
		return nil, false
	}

	value, ok := cache.Get(fingerprint)
	if !ok {
		return nil, false
	}
	return value.(*usecase.MessageResponse), true
}

// recordSend remembers a successful send so a later replay of the same frame
// can be answered with the original result instead of a second store write.
func (m *Manager) recordSend(userID, fingerprint string, payload *usecase.MessageResponse) {
	m.mutex.Lock()
	cache, ok := m.recent[userID]
	if !ok {
		cache = dedup.NewCache(sendFingerprintCapacity)
		m.recent[userID] = cache
	}
	m.mutex.Unlock()

	cache.Put(fingerprint, payload)
}

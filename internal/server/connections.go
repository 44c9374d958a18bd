package server

import (
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager tracks live websockets and which session token each
// one is bound to. Binding a token that is already bound elsewhere
// returns the stale connection so the caller can close it (reconnect
// replaces the old device).
type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID -> socket
	byToken     map[string]string          // session token -> connectionID
	tokens      map[string]string          // connectionID -> session token
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		byToken:     make(map[string]string),
		tokens:      make(map[string]string),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

// RemoveConnection drops a socket and its token binding, but only if
// the token still points at this connection. A token rebound to a newer
// connection keeps its new binding.
func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	delete(cm.connections, id)

	token, exists := cm.tokens[id]
	if !exists {
		return
	}
	delete(cm.tokens, id)

	if cm.byToken[token] == id {
		delete(cm.byToken, token)
	}
}

// BindToken associates a session token with a connection, overwriting
// any prior binding. Returns the previously bound connectionID, or ""
// if there was none.
func (cm *ConnectionManager) BindToken(token, connectionID string) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	old := cm.byToken[token]
	if old == connectionID {
		return ""
	}

	if old != "" {
		delete(cm.tokens, old)
	}

	cm.byToken[token] = connectionID
	cm.tokens[connectionID] = token
	return old
}

func (cm *ConnectionManager) GetTokenByConnection(connectionID string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.tokens[connectionID]
}

// GetConnectionByToken resolves a session token to its live socket, or
// nil when the player is offline.
func (cm *ConnectionManager) GetConnectionByToken(token string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	connID, exists := cm.byToken[token]
	if !exists {
		return nil
	}
	return cm.connections[connID]
}

func (cm *ConnectionManager) GetConnection(connectionID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[connectionID]
}

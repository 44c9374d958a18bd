package server

import (
	"sync"
)

type SessionInfo struct {
	Token    string
	RoomCode string
	PlayerID int
	Name     string
}

// SessionManager maps session tokens to the room they belong to. An
// entry outlives the websocket: a disconnected player stays bound to
// their room and picks the binding back up on reconnect.
type SessionManager struct {
	sessions map[string]SessionInfo // token -> session info
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]SessionInfo),
	}
}

func (sm *SessionManager) StoreSession(info SessionInfo) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[info.Token] = info
}

func (sm *SessionManager) GetSession(token string) (SessionInfo, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[token]
	return session, exists
}

// RoomOf returns the room code a token is bound to, or "" if unknown.
func (sm *SessionManager) RoomOf(token string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[token].RoomCode
}

// Used for sessions that are gone for good, not mere disconnects.
func (sm *SessionManager) RemoveSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory RoomStore used by tests and local
// development. It mirrors the Postgres implementation's semantics,
// including returning copies so callers never share row memory.
type MemoryStore struct {
	mu           sync.RWMutex
	rooms        map[string]*Room   // code -> room
	players      map[int]*Player    // player id -> player
	nextRoomID   int
	nextPlayerID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:   make(map[string]*Room),
		players: make(map[int]*Player),
	}
}

func (m *MemoryStore) CreateRoom(ctx context.Context, code, hostSessionID string, totalRounds int) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[code]; exists {
		return nil, ErrCodeTaken
	}

	m.nextRoomID++
	room := &Room{
		ID:           m.nextRoomID,
		Code:         code,
		HostID:       hostSessionID,
		Status:       StatusWaiting,
		TotalRounds:  totalRounds,
		CurrentRound: 1,
		CreatedAt:    time.Now(),
	}
	m.rooms[code] = room

	copied := *room
	return &copied, nil
}

func (m *MemoryStore) AddPlayer(ctx context.Context, roomID int, sessionID, name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.roomByID(roomID) == nil {
		return nil, ErrRoomNotFound
	}

	m.nextPlayerID++
	player := &Player{
		ID:        m.nextPlayerID,
		RoomID:    roomID,
		SessionID: sessionID,
		Name:      name,
		JoinedAt:  time.Now(),
	}
	m.players[player.ID] = player

	copied := *player
	return &copied, nil
}

func (m *MemoryStore) GetRoom(ctx context.Context, code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, exists := m.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}

	copied := *room
	return &copied, nil
}

func (m *MemoryStore) GetRoomPlayers(ctx context.Context, roomID int) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var players []Player
	for _, p := range m.players {
		if p.RoomID == roomID {
			players = append(players, *p)
		}
	}

	// Stable join order, matching the SQL implementation's ORDER BY id
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	return players, nil
}

func (m *MemoryStore) GetPlayer(ctx context.Context, sessionID string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.players {
		if p.SessionID == sessionID {
			copied := *p
			return &copied, nil
		}
	}

	return nil, ErrPlayerNotFound
}

func (m *MemoryStore) UpdateRoomStatus(ctx context.Context, roomID int, status RoomStatus, phaseEnd *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.roomByID(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.Status = status
	room.PhaseEndTime = phaseEnd
	return nil
}

func (m *MemoryStore) AssignRoles(ctx context.Context, roomID int, secretWord string, liarID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.roomByID(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	word := secretWord
	liar := liarID
	room.SecretWord = &word
	room.LiarID = &liar

	for _, p := range m.players {
		if p.RoomID == roomID {
			p.IsLiar = p.ID == liarID
			p.HasVoted = false
			p.VotedFor = nil
		}
	}

	return nil
}

func (m *MemoryStore) SubmitVote(ctx context.Context, playerID int, targetID *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}

	p.HasVoted = true
	if targetID != nil {
		target := *targetID
		p.VotedFor = &target
	}
	return nil
}

func (m *MemoryStore) SetReady(ctx context.Context, playerID int, ready bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}

	p.IsReady = ready
	return nil
}

func (m *MemoryStore) AddScore(ctx context.Context, playerID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[playerID]
	if !exists {
		return ErrPlayerNotFound
	}

	p.Score += delta
	return nil
}

func (m *MemoryStore) UpdateRoomRound(ctx context.Context, roomID, round int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.roomByID(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.CurrentRound = round
	return nil
}

func (m *MemoryStore) ResetPlayersReady(ctx context.Context, roomID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.players {
		if p.RoomID == roomID {
			p.IsReady = false
		}
	}
	return nil
}

func (m *MemoryStore) ResetRoom(ctx context.Context, roomID int, resetScores bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.roomByID(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.Status = StatusWaiting
	room.SecretWord = nil
	room.LiarID = nil
	room.PhaseEndTime = nil
	room.CurrentRound = 1

	for _, p := range m.players {
		if p.RoomID == roomID {
			p.IsLiar = false
			p.HasVoted = false
			p.IsReady = false
			p.VotedFor = nil
			if resetScores {
				p.Score = 0
			}
		}
	}

	return nil
}

// roomByID requires the caller to hold the lock.
func (m *MemoryStore) roomByID(roomID int) *Room {
	for _, room := range m.rooms {
		if room.ID == roomID {
			return room
		}
	}
	return nil
}

package server

import "time"

// ============================================================================
// HTTP HANDSHAKE (POST /api/rooms, POST /api/rooms/join)
// ============================================================================

type CreateRoomRequest struct {
	Name   string `json:"name"`
	Rounds int    `json:"rounds"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type HandshakeResponse struct {
	Code      string `json:"code"`
	SessionID string `json:"sessionId"`
	PlayerID  int    `json:"playerId"`
}

type APIError struct {
	Message string `json:"message"`
}

// ============================================================================
// STATE PROJECTION (state_update broadcast)
// ============================================================================

// GameState is the per-recipient view of a room. The broadcast hub
// builds one per connected player so nobody receives information their
// role should hide.
type GameState struct {
	Room     RoomView     `json:"room"`
	Players  []PlayerView `json:"players"`
	Me       MeView       `json:"me"`
	IsHost   bool         `json:"isHost"`
	TimeLeft int          `json:"timeLeft"` // seconds until phase end, 0 when untimed
}

type RoomView struct {
	Code         string     `json:"code"`
	Status       string     `json:"status"`
	SecretWord   *string    `json:"secretWord"` // nil for the liar until the reveal
	TotalRounds  int        `json:"totalRounds"`
	CurrentRound int        `json:"currentRound"`
	PhaseEndTime *time.Time `json:"phaseEndTime"`
}

type PlayerView struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	HasVoted bool   `json:"hasVoted"`
	IsReady  bool   `json:"isReady"`
	Score    int    `json:"score"`
	IsLiar   *bool  `json:"isLiar,omitempty"` // only present after the reveal
}

// MeView is the recipient's own record; unlike PlayerView it always
// carries the true isLiar.
type MeView struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	IsLiar   bool   `json:"isLiar"`
	HasVoted bool   `json:"hasVoted"`
	IsReady  bool   `json:"isReady"`
	Score    int    `json:"score"`
}

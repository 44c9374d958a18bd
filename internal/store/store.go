package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound   = errors.New("ROOM_NOT_FOUND: Room not found")
	ErrPlayerNotFound = errors.New("PLAYER_NOT_FOUND: Invalid session token")
	ErrCodeTaken      = errors.New("CODE_TAKEN: Room code already in use")
)

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusVoting   RoomStatus = "voting"
	StatusFinished RoomStatus = "finished"
)

type Room struct {
	ID           int        `json:"id"`
	Code         string     `json:"code"`
	HostID       string     `json:"-"` // session token of the creator, never sent to clients
	Status       RoomStatus `json:"status"`
	SecretWord   *string    `json:"secretWord"`
	LiarID       *int       `json:"liarId"`
	TotalRounds  int        `json:"totalRounds"`
	CurrentRound int        `json:"currentRound"`
	PhaseEndTime *time.Time `json:"phaseEndTime"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Player struct {
	ID        int       `json:"id"`
	RoomID    int       `json:"roomId"`
	SessionID string    `json:"-"` // credential, never sent to other clients
	Name      string    `json:"name"`
	IsLiar    bool      `json:"isLiar"`
	HasVoted  bool      `json:"hasVoted"`
	IsReady   bool      `json:"isReady"`
	Score     int       `json:"score"`
	VotedFor  *int      `json:"votedFor,omitempty"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// RoomStore is the durable CRUD surface for rooms and their players.
// Implementations perform no game logic; every mutation is atomic with
// respect to the affected rows.
type RoomStore interface {
	CreateRoom(ctx context.Context, code, hostSessionID string, totalRounds int) (*Room, error)
	AddPlayer(ctx context.Context, roomID int, sessionID, name string) (*Player, error)
	GetRoom(ctx context.Context, code string) (*Room, error)
	GetRoomPlayers(ctx context.Context, roomID int) ([]Player, error)
	GetPlayer(ctx context.Context, sessionID string) (*Player, error)

	// UpdateRoomStatus sets the room status and replaces phaseEndTime
	// (nil clears it).
	UpdateRoomStatus(ctx context.Context, roomID int, status RoomStatus, phaseEnd *time.Time) error

	// AssignRoles stores the round's secret word and liar, clears every
	// player's isLiar/hasVoted, then sets isLiar on the chosen player.
	// The whole assignment is applied atomically.
	AssignRoles(ctx context.Context, roomID int, secretWord string, liarID int) error

	SubmitVote(ctx context.Context, playerID int, targetID *int) error
	SetReady(ctx context.Context, playerID int, ready bool) error
	AddScore(ctx context.Context, playerID, delta int) error
	UpdateRoomRound(ctx context.Context, roomID, round int) error
	ResetPlayersReady(ctx context.Context, roomID int) error

	// ResetRoom returns the room to waiting: clears word, liar and
	// phaseEndTime, resets currentRound to 1 and every player's
	// isLiar/hasVoted/isReady. Scores are zeroed only when resetScores
	// is set.
	ResetRoom(ctx context.Context, roomID int, resetScores bool) error
}

package server

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"liar-server/internal/store"
)

// Hub recomputes and pushes one filtered state projection per connected
// player. It reads fresh state from the store and never writes;
// delivery is best-effort, players without a live socket are skipped
// and catch up on their next rebind.
type Hub struct {
	store       store.RoomStore
	connections *ConnectionManager
}

func NewHub(st store.RoomStore, cm *ConnectionManager) *Hub {
	return &Hub{store: st, connections: cm}
}

// BroadcastRoom sends each connected player of the room their own
// projection of the current state.
func (h *Hub) BroadcastRoom(ctx context.Context, code string) {
	room, err := h.store.GetRoom(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("broadcast skipped, room lookup failed")
		return
	}

	players, err := h.store.GetRoomPlayers(ctx, room.ID)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("broadcast skipped, player lookup failed")
		return
	}

	now := time.Now()
	for i := range players {
		recipient := &players[i]

		conn := h.connections.GetConnectionByToken(recipient.SessionID)
		if conn == nil {
			continue // offline, will catch up on reconnect
		}

		state := BuildProjection(room, players, recipient, now)
		msg := StateUpdateMessage{Type: "state_update", State: state}

		data, err := json.Marshal(msg)
		if err != nil {
			log.Error().Err(err).Str("room", code).Msg("failed to marshal state update")
			return
		}

		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			log.Debug().Err(err).Str("room", code).Int("player", recipient.ID).Msg("state push failed")
		}
	}
}

// BuildProjection produces the recipient's isolated view of the room:
//   - the recipient's own record is always truthful, including isLiar;
//   - other players' isLiar is absent until the room is finished, then
//     revealed to everyone;
//   - the secret word is hidden from the liar until the room is
//     finished; everyone else sees it as soon as it is assigned;
//   - timeLeft is the whole seconds remaining in a timed phase, never
//     negative.
//
// The function is pure: same rows in, same projection out.
func BuildProjection(room *store.Room, players []store.Player, me *store.Player, now time.Time) GameState {
	finished := room.Status == store.StatusFinished

	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		view := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			HasVoted: p.HasVoted,
			IsReady:  p.IsReady,
			Score:    p.Score,
		}
		if finished {
			isLiar := p.IsLiar
			view.IsLiar = &isLiar
		}
		views = append(views, view)
	}

	roomView := RoomView{
		Code:         room.Code,
		Status:       string(room.Status),
		TotalRounds:  room.TotalRounds,
		CurrentRound: room.CurrentRound,
		PhaseEndTime: room.PhaseEndTime,
	}
	if room.SecretWord != nil && (!me.IsLiar || finished) {
		roomView.SecretWord = room.SecretWord
	}

	timeLeft := 0
	if room.PhaseEndTime != nil {
		if remaining := room.PhaseEndTime.Sub(now); remaining > 0 {
			timeLeft = int(math.Ceil(remaining.Seconds()))
		}
	}

	return GameState{
		Room:    roomView,
		Players: views,
		Me: MeView{
			ID:       me.ID,
			Name:     me.Name,
			IsLiar:   me.IsLiar,
			HasVoted: me.HasVoted,
			IsReady:  me.IsReady,
			Score:    me.Score,
		},
		IsHost:   me.SessionID == room.HostID,
		TimeLeft: timeLeft,
	}
}

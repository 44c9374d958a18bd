package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"liar-server/internal/store"
)

// Engine owns the room phase state machine. It is pure logic over data
// fetched from the RoomStore: it holds no room state of its own, so
// callers must serialize operations per room (the server keeps a mutex
// per room code around every call and the broadcast that follows it).
type Engine struct {
	store store.RoomStore
	cfg   Config
}

// Result reports what an operation changed so the caller can arm or
// cancel phase timers and decide whether to broadcast.
type Result struct {
	// Changed is true when room or player state was mutated and a
	// broadcast is due.
	Changed bool

	// ArmPhase, when non-empty, asks the caller to arm a one-shot
	// expiry timer for that phase, firing after ArmIn. A new arm for a
	// room supersedes any pending one.
	ArmPhase store.RoomStatus
	ArmIn    time.Duration

	// CancelTimer asks the caller to drop any pending timer for the
	// room (the room left its timed phase by other means).
	CancelTimer bool
}

func NewEngine(st store.RoomStore, cfg Config) *Engine {
	return &Engine{store: st, cfg: cfg}
}

// StartGame begins the first round. Host-only, waiting-phase-only, and
// subject to the minimum player count. Anything else is a silent no-op.
func (e *Engine) StartGame(ctx context.Context, code, sessionID string) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.HostID != sessionID {
		log.Debug().Str("room", code).Msg("start_game from non-host ignored")
		return Result{}, nil
	}
	if room.Status != store.StatusWaiting {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("start_game outside waiting ignored")
		return Result{}, nil
	}

	players, err := e.store.GetRoomPlayers(ctx, room.ID)
	if err != nil {
		return Result{}, err
	}

	if e.cfg.MinPlayers > 0 && len(players) < e.cfg.MinPlayers {
		log.Debug().Str("room", code).Int("players", len(players)).Msg("start_game below minimum player count ignored")
		return Result{}, nil
	}

	return e.beginRound(ctx, room, players)
}

// Vote records a single-use vote for the sender. The first vote flips
// hasVoted; duplicates are no-ops. When the last player votes, every
// non-liar is awarded the score bonus exactly once and the room
// finishes, regardless of whether the voting timer fired yet.
func (e *Engine) Vote(ctx context.Context, code, sessionID string, targetID int) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.Status != store.StatusPlaying && room.Status != store.StatusVoting {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("vote outside active round ignored")
		return Result{}, nil
	}

	player, err := e.store.GetPlayer(ctx, sessionID)
	if err != nil {
		return ignoreNotFound(err)
	}

	if player.RoomID != room.ID {
		log.Debug().Str("room", code).Msg("vote from session bound to another room ignored")
		return Result{}, nil
	}
	if player.HasVoted {
		log.Debug().Str("room", code).Int("player", player.ID).Msg("duplicate vote ignored")
		return Result{}, nil
	}

	target := targetID
	if err := e.store.SubmitVote(ctx, player.ID, &target); err != nil {
		return Result{}, err
	}

	players, err := e.store.GetRoomPlayers(ctx, room.ID)
	if err != nil {
		return Result{}, err
	}

	for _, p := range players {
		if !p.HasVoted {
			return Result{Changed: true}, nil
		}
	}

	// Everyone voted: award non-liars and finish the round.
	for _, p := range players {
		if !p.IsLiar {
			if err := e.store.AddScore(ctx, p.ID, e.cfg.ScoreBonus); err != nil {
				return Result{}, err
			}
		}
	}

	if err := e.store.UpdateRoomStatus(ctx, room.ID, store.StatusFinished, nil); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", code).Int("round", room.CurrentRound).Msg("all votes in, round finished")
	return Result{Changed: true, CancelTimer: true}, nil
}

// Ready marks the sender ready for the next round. When every player in
// a finished room is ready and rounds remain, the next round starts
// immediately; otherwise the room stays terminally finished.
func (e *Engine) Ready(ctx context.Context, code, sessionID string) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.Status != store.StatusFinished {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("ready outside finished ignored")
		return Result{}, nil
	}

	player, err := e.store.GetPlayer(ctx, sessionID)
	if err != nil {
		return ignoreNotFound(err)
	}
	if player.RoomID != room.ID {
		return Result{}, nil
	}

	if err := e.store.SetReady(ctx, player.ID, true); err != nil {
		return Result{}, err
	}

	players, err := e.store.GetRoomPlayers(ctx, room.ID)
	if err != nil {
		return Result{}, err
	}

	for _, p := range players {
		if p.ID != player.ID && !p.IsReady {
			return Result{Changed: true}, nil
		}
	}

	if room.CurrentRound >= room.TotalRounds {
		// Game complete. Ready flags still changed, so broadcast.
		return Result{Changed: true}, nil
	}

	if err := e.store.UpdateRoomRound(ctx, room.ID, room.CurrentRound+1); err != nil {
		return Result{}, err
	}
	if err := e.store.ResetPlayersReady(ctx, room.ID); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", code).Int("round", room.CurrentRound+1).Msg("all ready, next round starting")
	return e.beginRound(ctx, room, players)
}

// PlayAgain resets a finished room back to waiting for a fresh game.
// Host-only. Scores are kept or zeroed per ResetScoresOnRestart.
func (e *Engine) PlayAgain(ctx context.Context, code, sessionID string) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.HostID != sessionID {
		log.Debug().Str("room", code).Msg("play_again from non-host ignored")
		return Result{}, nil
	}
	if room.Status != store.StatusFinished {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("play_again outside finished ignored")
		return Result{}, nil
	}

	if err := e.store.ResetRoom(ctx, room.ID, e.cfg.ResetScoresOnRestart); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", code).Bool("scoresReset", e.cfg.ResetScoresOnRestart).Msg("room reset for a new game")
	return Result{Changed: true, CancelTimer: true}, nil
}

// ExpirePlaying is the playing-timer transition: playing -> voting.
// Guarded so a stale fire after the room moved on is a no-op.
func (e *Engine) ExpirePlaying(ctx context.Context, code string) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.Status != store.StatusPlaying {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("stale playing expiry ignored")
		return Result{}, nil
	}

	end := time.Now().Add(e.cfg.VoteDuration)
	if err := e.store.UpdateRoomStatus(ctx, room.ID, store.StatusVoting, &end); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", code).Msg("discussion over, voting open")
	return Result{Changed: true, ArmPhase: store.StatusVoting, ArmIn: e.cfg.VoteDuration}, nil
}

// ExpireVoting is the voting-timer transition: voting -> finished. Votes
// already recorded stand; nobody is awarded or penalized for the
// unanswered ones.
func (e *Engine) ExpireVoting(ctx context.Context, code string) (Result, error) {
	room, err := e.store.GetRoom(ctx, code)
	if err != nil {
		return ignoreNotFound(err)
	}

	if room.Status != store.StatusVoting {
		log.Debug().Str("room", code).Str("status", string(room.Status)).Msg("stale voting expiry ignored")
		return Result{}, nil
	}

	if err := e.store.UpdateRoomStatus(ctx, room.ID, store.StatusFinished, nil); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", code).Msg("voting timed out, round finished")
	return Result{Changed: true}, nil
}

// beginRound assigns a fresh word and liar, moves the room into playing
// and asks for a playing timer. Shared by start_game and the all-ready
// round advance.
func (e *Engine) beginRound(ctx context.Context, room *store.Room, players []store.Player) (Result, error) {
	word := randomWord()
	liar := players[rand.Intn(len(players))]

	if err := e.store.AssignRoles(ctx, room.ID, word, liar.ID); err != nil {
		return Result{}, err
	}

	end := time.Now().Add(e.cfg.PlayDuration)
	if err := e.store.UpdateRoomStatus(ctx, room.ID, store.StatusPlaying, &end); err != nil {
		return Result{}, err
	}

	log.Info().Str("room", room.Code).Int("players", len(players)).Msg("round started")
	return Result{Changed: true, ArmPhase: store.StatusPlaying, ArmIn: e.cfg.PlayDuration}, nil
}

// ignoreNotFound turns missing-row lookups into silent no-ops while
// letting real storage failures propagate.
func ignoreNotFound(err error) (Result, error) {
	if errors.Is(err, store.ErrRoomNotFound) || errors.Is(err, store.ErrPlayerNotFound) {
		return Result{}, nil
	}
	return Result{}, err
}

package game

import (
	"os"
	"strconv"
	"time"
)

// Config carries the gameplay policy knobs. The defaults reproduce the
// tuning the game shipped with; every value can be overridden from the
// environment.
type Config struct {
	// PlayDuration is how long the discussion (playing) phase lasts
	// before the room is forced into voting.
	PlayDuration time.Duration

	// VoteDuration is how long voting stays open before the round is
	// force-finished with whatever votes were recorded.
	VoteDuration time.Duration

	// MinPlayers is the minimum room size required for start_game.
	// Zero disables the check.
	MinPlayers int

	// ScoreBonus is awarded to each non-liar player when every player
	// has voted.
	ScoreBonus int

	// ResetScoresOnRestart controls whether play_again zeroes scores or
	// keeps them as a running leaderboard across games.
	ResetScoresOnRestart bool
}

func DefaultConfig() Config {
	return Config{
		PlayDuration:         60 * time.Second,
		VoteDuration:         30 * time.Second,
		MinPlayers:           3,
		ScoreBonus:           3,
		ResetScoresOnRestart: false,
	}
}

// ConfigFromEnv builds a Config from LIAR_* environment variables,
// falling back to the defaults for anything unset or unparseable.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := envInt("LIAR_PLAY_SECONDS"); ok && v > 0 {
		cfg.PlayDuration = time.Duration(v) * time.Second
	}
	if v, ok := envInt("LIAR_VOTE_SECONDS"); ok && v > 0 {
		cfg.VoteDuration = time.Duration(v) * time.Second
	}
	if v, ok := envInt("LIAR_MIN_PLAYERS"); ok && v >= 0 {
		cfg.MinPlayers = v
	}
	if v, ok := envInt("LIAR_SCORE_BONUS"); ok && v >= 0 {
		cfg.ScoreBonus = v
	}
	if os.Getenv("LIAR_RESET_SCORES") == "true" {
		cfg.ResetScoresOnRestart = true
	}

	return cfg
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

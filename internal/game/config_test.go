package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := ConfigFromEnv()
	assert.Equal(t, 60*time.Second, cfg.PlayDuration)
	assert.Equal(t, 30*time.Second, cfg.VoteDuration)
	assert.Equal(t, 3, cfg.MinPlayers)
	assert.Equal(t, 3, cfg.ScoreBonus)
	assert.False(t, cfg.ResetScoresOnRestart)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("LIAR_PLAY_SECONDS", "90")
	t.Setenv("LIAR_VOTE_SECONDS", "45")
	t.Setenv("LIAR_MIN_PLAYERS", "0")
	t.Setenv("LIAR_SCORE_BONUS", "5")
	t.Setenv("LIAR_RESET_SCORES", "true")

	cfg := ConfigFromEnv()
	assert.Equal(t, 90*time.Second, cfg.PlayDuration)
	assert.Equal(t, 45*time.Second, cfg.VoteDuration)
	assert.Equal(t, 0, cfg.MinPlayers)
	assert.Equal(t, 5, cfg.ScoreBonus)
	assert.True(t, cfg.ResetScoresOnRestart)
}

func TestConfigFromEnv_GarbageFallsBack(t *testing.T) {
	t.Setenv("LIAR_PLAY_SECONDS", "soon")
	t.Setenv("LIAR_VOTE_SECONDS", "-10")

	cfg := ConfigFromEnv()
	assert.Equal(t, 60*time.Second, cfg.PlayDuration)
	assert.Equal(t, 30*time.Second, cfg.VoteDuration)
}

func TestRandomWord_DrawsFromPool(t *testing.T) {
	pool := make(map[string]struct{}, len(words))
	for _, w := range words {
		pool[w] = struct{}{}
	}

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		w := randomWord()
		_, ok := pool[w]
		assert.True(t, ok, "word %q not in the pool", w)
		seen[w] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "draws should not be constant")
}

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liar-server/internal/store"
)

// fixtureRoom builds a 3-player in-memory room snapshot without going
// through a store: projections are pure over the rows.
func fixtureRoom(status store.RoomStatus) (*store.Room, []store.Player) {
	word := "apple"
	liarID := 2
	room := &store.Room{
		ID:           1,
		Code:         "ABCD",
		HostID:       "host-token",
		Status:       status,
		SecretWord:   &word,
		LiarID:       &liarID,
		TotalRounds:  3,
		CurrentRound: 1,
	}
	players := []store.Player{
		{ID: 1, RoomID: 1, SessionID: "host-token", Name: "Alice", Score: 3},
		{ID: 2, RoomID: 1, SessionID: "liar-token", Name: "Bob", IsLiar: true},
		{ID: 3, RoomID: 1, SessionID: "third-token", Name: "Carol", HasVoted: true},
	}
	return room, players
}

func TestBuildProjection_HidesWordFromLiar(t *testing.T) {
	room, players := fixtureRoom(store.StatusPlaying)
	now := time.Now()

	liarView := BuildProjection(room, players, &players[1], now)
	assert.Nil(t, liarView.Room.SecretWord, "liar must not see the word mid-game")
	assert.True(t, liarView.Me.IsLiar, "liar always knows their own role")

	nonLiarView := BuildProjection(room, players, &players[0], now)
	require.NotNil(t, nonLiarView.Room.SecretWord)
	assert.Equal(t, "apple", *nonLiarView.Room.SecretWord)
	assert.False(t, nonLiarView.Me.IsLiar)
}

func TestBuildProjection_MasksOthersRolesUntilFinished(t *testing.T) {
	room, players := fixtureRoom(store.StatusVoting)
	view := BuildProjection(room, players, &players[0], time.Now())

	for _, p := range view.Players {
		assert.Nil(t, p.IsLiar, "player %d role must be hidden before the round finishes", p.ID)
	}
	// Voting status still visible, so votes can be cast meaningfully.
	assert.True(t, view.Players[2].HasVoted)
}

func TestBuildProjection_RevealsEverythingOnFinished(t *testing.T) {
	room, players := fixtureRoom(store.StatusFinished)

	// The liar finally sees the word...
	liarView := BuildProjection(room, players, &players[1], time.Now())
	require.NotNil(t, liarView.Room.SecretWord)
	assert.Equal(t, "apple", *liarView.Room.SecretWord)

	// ...and everyone sees everyone's role.
	for _, p := range liarView.Players {
		require.NotNil(t, p.IsLiar)
		assert.Equal(t, p.ID == 2, *p.IsLiar)
	}
}

func TestBuildProjection_NoWordAssigned(t *testing.T) {
	room, players := fixtureRoom(store.StatusWaiting)
	room.SecretWord = nil
	room.LiarID = nil

	view := BuildProjection(room, players, &players[0], time.Now())
	assert.Nil(t, view.Room.SecretWord)
}

func TestBuildProjection_IsHost(t *testing.T) {
	room, players := fixtureRoom(store.StatusWaiting)

	hostView := BuildProjection(room, players, &players[0], time.Now())
	assert.True(t, hostView.IsHost)

	otherView := BuildProjection(room, players, &players[2], time.Now())
	assert.False(t, otherView.IsHost)
}

func TestBuildProjection_TimeLeft(t *testing.T) {
	room, players := fixtureRoom(store.StatusPlaying)
	now := time.Now()

	cases := []struct {
		name string
		end  *time.Time
		want int
	}{
		{"mid-phase rounds up", ptrTime(now.Add(42*time.Second + 300*time.Millisecond)), 43},
		{"whole seconds", ptrTime(now.Add(10 * time.Second)), 10},
		{"already past clamps to zero", ptrTime(now.Add(-5 * time.Second)), 0},
		{"no deadline", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room.PhaseEndTime = tc.end
			view := BuildProjection(room, players, &players[0], now)
			assert.Equal(t, tc.want, view.TimeLeft)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRoomStoreSuite exercises the RoomStore contract against any
// implementation. Both the in-memory store and the Postgres store run
// it, so the two cannot drift apart.
func runRoomStoreSuite(t *testing.T, newStore func(t *testing.T) RoomStore) {
	ctx := context.Background()

	seed := func(t *testing.T, st RoomStore, code string) (*Room, []Player) {
		t.Helper()
		room, err := st.CreateRoom(ctx, code, "host-"+code, 2)
		require.NoError(t, err)

		var players []Player
		for i, name := range []string{"Alice", "Bob", "Carol"} {
			p, err := st.AddPlayer(ctx, room.ID, code+"-session-"+string(rune('a'+i)), name)
			require.NoError(t, err)
			players = append(players, *p)
		}
		return room, players
	}

	t.Run("CreateRoomDefaults", func(t *testing.T) {
		st := newStore(t)

		room, err := st.CreateRoom(ctx, "AAAA", "host-token", 3)
		require.NoError(t, err)

		assert.Equal(t, "AAAA", room.Code)
		assert.Equal(t, "host-token", room.HostID)
		assert.Equal(t, StatusWaiting, room.Status)
		assert.Equal(t, 3, room.TotalRounds)
		assert.Equal(t, 1, room.CurrentRound)
		assert.Nil(t, room.SecretWord)
		assert.Nil(t, room.LiarID)
		assert.Nil(t, room.PhaseEndTime)
	})

	t.Run("CreateRoomDuplicateCode", func(t *testing.T) {
		st := newStore(t)

		_, err := st.CreateRoom(ctx, "BBBB", "host-1", 1)
		require.NoError(t, err)

		_, err = st.CreateRoom(ctx, "BBBB", "host-2", 1)
		assert.ErrorIs(t, err, ErrCodeTaken)
	})

	t.Run("GetRoomNotFound", func(t *testing.T) {
		st := newStore(t)

		_, err := st.GetRoom(ctx, "ZZZZ")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("AddPlayerToMissingRoom", func(t *testing.T) {
		st := newStore(t)

		_, err := st.AddPlayer(ctx, 424242, "session", "Nobody")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("PlayersOrderedByJoin", func(t *testing.T) {
		st := newStore(t)
		room, seeded := seed(t, st, "CCCC")

		players, err := st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, players, 3)

		for i := range players {
			assert.Equal(t, seeded[i].ID, players[i].ID)
			assert.Equal(t, seeded[i].Name, players[i].Name)
		}
	})

	t.Run("GetPlayerBySession", func(t *testing.T) {
		st := newStore(t)
		_, seeded := seed(t, st, "DDDD")

		p, err := st.GetPlayer(ctx, seeded[1].SessionID)
		require.NoError(t, err)
		assert.Equal(t, seeded[1].ID, p.ID)
		assert.Equal(t, "Bob", p.Name)

		_, err = st.GetPlayer(ctx, "no-such-session")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("UpdateRoomStatus", func(t *testing.T) {
		st := newStore(t)
		room, _ := seed(t, st, "EEEE")

		end := time.Now().Add(time.Minute).UTC()
		require.NoError(t, st.UpdateRoomStatus(ctx, room.ID, StatusPlaying, &end))

		got, err := st.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		assert.Equal(t, StatusPlaying, got.Status)
		require.NotNil(t, got.PhaseEndTime)
		assert.WithinDuration(t, end, *got.PhaseEndTime, time.Second)

		// nil clears the deadline.
		require.NoError(t, st.UpdateRoomStatus(ctx, room.ID, StatusFinished, nil))
		got, err = st.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		assert.Nil(t, got.PhaseEndTime)
	})

	t.Run("AssignRoles", func(t *testing.T) {
		st := newStore(t)
		room, seeded := seed(t, st, "FFFF")

		// Leave stale flags around to prove AssignRoles clears them.
		require.NoError(t, st.SubmitVote(ctx, seeded[0].ID, &seeded[1].ID))

		require.NoError(t, st.AssignRoles(ctx, room.ID, "apple", seeded[1].ID))

		got, err := st.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		require.NotNil(t, got.SecretWord)
		assert.Equal(t, "apple", *got.SecretWord)
		require.NotNil(t, got.LiarID)
		assert.Equal(t, seeded[1].ID, *got.LiarID)

		players, err := st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		for _, p := range players {
			assert.Equal(t, p.ID == seeded[1].ID, p.IsLiar)
			assert.False(t, p.HasVoted, "assignment must clear stale votes")
			assert.Nil(t, p.VotedFor)
		}

		// Reassigning moves the liar; never two at once.
		require.NoError(t, st.AssignRoles(ctx, room.ID, "banana", seeded[2].ID))
		players, err = st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		liars := 0
		for _, p := range players {
			if p.IsLiar {
				liars++
				assert.Equal(t, seeded[2].ID, p.ID)
			}
		}
		assert.Equal(t, 1, liars)
	})

	t.Run("SubmitVote", func(t *testing.T) {
		st := newStore(t)
		_, seeded := seed(t, st, "GGGG")

		target := seeded[2].ID
		require.NoError(t, st.SubmitVote(ctx, seeded[0].ID, &target))

		p, err := st.GetPlayer(ctx, seeded[0].SessionID)
		require.NoError(t, err)
		assert.True(t, p.HasVoted)
		require.NotNil(t, p.VotedFor)
		assert.Equal(t, target, *p.VotedFor)
	})

	t.Run("SetReadyAndReset", func(t *testing.T) {
		st := newStore(t)
		room, seeded := seed(t, st, "HHHH")

		require.NoError(t, st.SetReady(ctx, seeded[0].ID, true))
		require.NoError(t, st.SetReady(ctx, seeded[1].ID, true))

		players, err := st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		assert.True(t, players[0].IsReady)
		assert.True(t, players[1].IsReady)
		assert.False(t, players[2].IsReady)

		require.NoError(t, st.ResetPlayersReady(ctx, room.ID))
		players, err = st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		for _, p := range players {
			assert.False(t, p.IsReady)
		}
	})

	t.Run("AddScoreAccumulates", func(t *testing.T) {
		st := newStore(t)
		_, seeded := seed(t, st, "IIII")

		require.NoError(t, st.AddScore(ctx, seeded[0].ID, 3))
		require.NoError(t, st.AddScore(ctx, seeded[0].ID, 3))

		p, err := st.GetPlayer(ctx, seeded[0].SessionID)
		require.NoError(t, err)
		assert.Equal(t, 6, p.Score)
	})

	t.Run("UpdateRoomRound", func(t *testing.T) {
		st := newStore(t)
		room, _ := seed(t, st, "JJJJ")

		require.NoError(t, st.UpdateRoomRound(ctx, room.ID, 2))
		got, err := st.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentRound)
	})

	t.Run("ResetRoom", func(t *testing.T) {
		st := newStore(t)
		room, seeded := seed(t, st, "KKKK")

		// Dirty every field ResetRoom is supposed to clear.
		require.NoError(t, st.AssignRoles(ctx, room.ID, "cherry", seeded[0].ID))
		end := time.Now().Add(time.Minute)
		require.NoError(t, st.UpdateRoomStatus(ctx, room.ID, StatusVoting, &end))
		require.NoError(t, st.UpdateRoomRound(ctx, room.ID, 2))
		require.NoError(t, st.SubmitVote(ctx, seeded[1].ID, &seeded[0].ID))
		require.NoError(t, st.SetReady(ctx, seeded[2].ID, true))
		require.NoError(t, st.AddScore(ctx, seeded[1].ID, 3))

		require.NoError(t, st.ResetRoom(ctx, room.ID, false))

		got, err := st.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, got.Status)
		assert.Nil(t, got.SecretWord)
		assert.Nil(t, got.LiarID)
		assert.Nil(t, got.PhaseEndTime)
		assert.Equal(t, 1, got.CurrentRound)

		players, err := st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		for _, p := range players {
			assert.False(t, p.IsLiar)
			assert.False(t, p.HasVoted)
			assert.False(t, p.IsReady)
			assert.Nil(t, p.VotedFor)
		}
		assert.Equal(t, 3, players[1].Score, "scores survive a keep-scores reset")

		// And the zero-scores policy.
		require.NoError(t, st.ResetRoom(ctx, room.ID, true))
		players, err = st.GetRoomPlayers(ctx, room.ID)
		require.NoError(t, err)
		for _, p := range players {
			assert.Equal(t, 0, p.Score)
		}
	})
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes: unique_violation, foreign_key_violation
const (
	uniqueViolation = "23505"
	fkViolation     = "23503"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) CreateRoom(ctx context.Context, code, hostSessionID string, totalRounds int) (*Room, error) {
	query := `
		INSERT INTO rooms (code, host_id, status, total_rounds, current_round)
		VALUES ($1, $2, 'waiting', $3, 1)
		RETURNING id, code, host_id, status, secret_word, liar_id, total_rounds, current_round, phase_end_time, created_at
	`

	room, err := scanRoom(s.pool.QueryRow(ctx, query, code, hostSessionID, totalRounds))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("failed to create room %s: %w", code, err)
	}

	return room, nil
}

func (s *PostgresStore) AddPlayer(ctx context.Context, roomID int, sessionID, name string) (*Player, error) {
	query := `
		INSERT INTO players (room_id, session_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, session_id, name, is_liar, has_voted, is_ready, score, voted_for, joined_at
	`

	player, err := scanPlayer(s.pool.QueryRow(ctx, query, roomID, sessionID, name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to add player to room %d: %w", roomID, err)
	}

	return player, nil
}

func (s *PostgresStore) GetRoom(ctx context.Context, code string) (*Room, error) {
	query := `
		SELECT id, code, host_id, status, secret_word, liar_id, total_rounds, current_round, phase_end_time, created_at
		FROM rooms WHERE code = $1
	`

	room, err := scanRoom(s.pool.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", code, err)
	}

	return room, nil
}

func (s *PostgresStore) GetRoomPlayers(ctx context.Context, roomID int) ([]Player, error) {
	query := `
		SELECT id, room_id, session_id, name, is_liar, has_voted, is_ready, score, voted_for, joined_at
		FROM players WHERE room_id = $1 ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}

	return players, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, sessionID string) (*Player, error) {
	query := `
		SELECT id, room_id, session_id, name, is_liar, has_voted, is_ready, score, voted_for, joined_at
		FROM players WHERE session_id = $1
	`

	player, err := scanPlayer(s.pool.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	return player, nil
}

func (s *PostgresStore) UpdateRoomStatus(ctx context.Context, roomID int, status RoomStatus, phaseEnd *time.Time) error {
	query := `UPDATE rooms SET status = $2, phase_end_time = $3 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, roomID, string(status), phaseEnd); err != nil {
		return fmt.Errorf("failed to update status for room %d: %w", roomID, err)
	}
	return nil
}

func (s *PostgresStore) AssignRoles(ctx context.Context, roomID int, secretWord string, liarID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin role assignment: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE rooms SET secret_word = $2, liar_id = $3 WHERE id = $1`,
		roomID, secretWord, liarID); err != nil {
		return fmt.Errorf("failed to store round secret for room %d: %w", roomID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE players SET is_liar = FALSE, has_voted = FALSE, voted_for = NULL WHERE room_id = $1`,
		roomID); err != nil {
		return fmt.Errorf("failed to reset player flags for room %d: %w", roomID, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE players SET is_liar = TRUE WHERE room_id = $1 AND id = $2`,
		roomID, liarID); err != nil {
		return fmt.Errorf("failed to mark liar for room %d: %w", roomID, err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) SubmitVote(ctx context.Context, playerID int, targetID *int) error {
	query := `UPDATE players SET has_voted = TRUE, voted_for = $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, playerID, targetID); err != nil {
		return fmt.Errorf("failed to record vote for player %d: %w", playerID, err)
	}
	return nil
}

func (s *PostgresStore) SetReady(ctx context.Context, playerID int, ready bool) error {
	query := `UPDATE players SET is_ready = $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, playerID, ready); err != nil {
		return fmt.Errorf("failed to set ready for player %d: %w", playerID, err)
	}
	return nil
}

func (s *PostgresStore) AddScore(ctx context.Context, playerID, delta int) error {
	query := `UPDATE players SET score = score + $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, playerID, delta); err != nil {
		return fmt.Errorf("failed to update score for player %d: %w", playerID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateRoomRound(ctx context.Context, roomID, round int) error {
	query := `UPDATE rooms SET current_round = $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, roomID, round); err != nil {
		return fmt.Errorf("failed to update round for room %d: %w", roomID, err)
	}
	return nil
}

func (s *PostgresStore) ResetPlayersReady(ctx context.Context, roomID int) error {
	query := `UPDATE players SET is_ready = FALSE WHERE room_id = $1`

	if _, err := s.pool.Exec(ctx, query, roomID); err != nil {
		return fmt.Errorf("failed to reset ready flags for room %d: %w", roomID, err)
	}
	return nil
}

func (s *PostgresStore) ResetRoom(ctx context.Context, roomID int, resetScores bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin room reset: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE rooms SET status = 'waiting', secret_word = NULL, liar_id = NULL, phase_end_time = NULL, current_round = 1 WHERE id = $1`,
		roomID); err != nil {
		return fmt.Errorf("failed to reset room %d: %w", roomID, err)
	}

	playerQuery := `UPDATE players SET is_liar = FALSE, has_voted = FALSE, is_ready = FALSE, voted_for = NULL WHERE room_id = $1`
	if resetScores {
		playerQuery = `UPDATE players SET is_liar = FALSE, has_voted = FALSE, is_ready = FALSE, voted_for = NULL, score = 0 WHERE room_id = $1`
	}
	if _, err := tx.Exec(ctx, playerQuery, roomID); err != nil {
		return fmt.Errorf("failed to reset players for room %d: %w", roomID, err)
	}

	return tx.Commit(ctx)
}

func scanRoom(row pgx.Row) (*Room, error) {
	var room Room
	var status string
	err := row.Scan(
		&room.ID,
		&room.Code,
		&room.HostID,
		&status,
		&room.SecretWord,
		&room.LiarID,
		&room.TotalRounds,
		&room.CurrentRound,
		&room.PhaseEndTime,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	room.Status = RoomStatus(status)
	return &room, nil
}

func scanPlayer(row pgx.Row) (*Player, error) {
	var player Player
	err := row.Scan(
		&player.ID,
		&player.RoomID,
		&player.SessionID,
		&player.Name,
		&player.IsLiar,
		&player.HasVoted,
		&player.IsReady,
		&player.Score,
		&player.VotedFor,
		&player.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// internal/database/results.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no result exists for a match.
var ErrNotFound = errors.New("match result not found")

// SeatResult is one seat's final line.
type SeatResult struct {
	PlayerID    uuid.UUID `json:"playerId"`
	Score       uint64    `json:"score"`
	Lines       uint32    `json:"lines"`
	Level       uint32    `json:"level"`
	Pieces      uint32    `json:"pieces"`
	GarbageSent uint32    `json:"garbageSent"`
	Reason      string    `json:"reason"`
	StateHash   string    `json:"stateHash"` // hex; lets a replay be checked against it
}

// MatchResult is the row stored when a match ends.
type MatchResult struct {
	MatchID    uuid.UUID     `json:"matchId"`
	Seed       uint64        `json:"seed"`
	Mode       string        `json:"mode"`
	Winner     uuid.UUID     `json:"winner"` // uuid.Nil for a draw
	Seats      [2]SeatResult `json:"seats"`
	Ticks      uint64        `json:"ticks"`
	DurationMs int64         `json:"durationMs"`
	EndedAt    time.Time     `json:"endedAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS match_results (
	match_id    UUID PRIMARY KEY,
	seed        BIGINT NOT NULL,
	mode        TEXT NOT NULL,
	winner      UUID,
	seats       JSONB NOT NULL,
	ticks       BIGINT NOT NULL,
	duration_ms BIGINT NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL
)`

// Store persists match results in postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.Pool.Close() }

// Migrate creates the results table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate match_results: %w", err)
	}
	return nil
}

// RecordResult inserts r. Recording the same match twice keeps the first row.
func (s *Store) RecordResult(ctx context.Context, r MatchResult) error {
	seats, err := json.Marshal(r.Seats)
	if err != nil {
		return fmt.Errorf("encode seats: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO match_results (match_id, seed, mode, winner, seats, ticks, duration_ms, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO NOTHING`,
		r.MatchID, int64(r.Seed), r.Mode, nullableUUID(r.Winner), seats,
		int64(r.Ticks), r.DurationMs, r.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.MatchID, err)
	}
	return nil
}

// GetResult loads the stored result of a match.
func (s *Store) GetResult(ctx context.Context, matchID uuid.UUID) (MatchResult, error) {
	var (
		r      MatchResult
		seed   int64
		ticks  int64
		winner *uuid.UUID
		seats  []byte
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT match_id, seed, mode, winner, seats, ticks, duration_ms, ended_at
		FROM match_results WHERE match_id = $1`, matchID,
	).Scan(&r.MatchID, &seed, &r.Mode, &winner, &seats, &ticks, &r.DurationMs, &r.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return MatchResult{}, ErrNotFound
	}
	if err != nil {
		return MatchResult{}, fmt.Errorf("select result %s: %w", matchID, err)
	}
	if err := json.Unmarshal(seats, &r.Seats); err != nil {
		return MatchResult{}, fmt.Errorf("decode seats: %w", err)
	}
	r.Seed = uint64(seed)
	r.Ticks = uint64(ticks)
	if winner != nil {
		r.Winner = *winner
	}
	return r, nil
}

// nullableUUID stores uuid.Nil as SQL NULL.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// Package postgres implements the game store on postgresql.  The "postgres"
// driver must be registered by the importing binary.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doodlex/doodlex/db"
)

// Store mirrors rooms and game history to postgresql tables.  Roster and
// ranking payloads are stored as jsonb.
type Store struct {
	db *sql.DB
	db.Config
}

// NewStore opens the database at the url and creates a game store.
func NewStore(cfg db.Config, databaseURL string) (*Store, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := Store{
		db:     sqlDB,
		Config: cfg,
	}
	return &s, nil
}

// Setup creates the tables if they do not exist.
func (s *Store) Setup(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			room_id TEXT PRIMARY KEY,
			host_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			current_drawer_id TEXT,
			current_word TEXT,
			current_round INT NOT NULL,
			players JSONB NOT NULL,
			settings JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_history (
			id BIGSERIAL PRIMARY KEY,
			room_id TEXT NOT NULL,
			players JSONB NOT NULL,
			total_rounds INT NOT NULL,
			duration_sec INT NOT NULL,
			winner JSONB,
			settings JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}
	return nil
}

// UpsertRoom writes the room mirror keyed by room id.
func (s *Store) UpsertRoom(ctx context.Context, r db.RoomRecord) error {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return fmt.Errorf("encoding players: %w", err)
	}
	settings, err := json.Marshal(r.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	const query = `INSERT INTO rooms
			(room_id, host_id, stage, current_drawer_id, current_word, current_round, players, settings, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (room_id) DO UPDATE SET
			host_id = EXCLUDED.host_id,
			stage = EXCLUDED.stage,
			current_drawer_id = EXCLUDED.current_drawer_id,
			current_word = EXCLUDED.current_word,
			current_round = EXCLUDED.current_round,
			players = EXCLUDED.players,
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at`
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.db.ExecContext(ctx, query,
		r.RoomID, r.HostID, r.Stage, r.CurrentDrawerID, r.CurrentWord,
		r.CurrentRound, players, settings, r.UpdatedAt); err != nil {
		return fmt.Errorf("upserting room: %w", err)
	}
	return nil
}

// DeleteRoom removes the room mirror.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID); err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return nil
}

// CreateHistory appends a finished-game row.
func (s *Store) CreateHistory(ctx context.Context, h db.HistoryRecord) error {
	players, err := json.Marshal(h.Players)
	if err != nil {
		return fmt.Errorf("encoding players: %w", err)
	}
	settings, err := json.Marshal(h.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	var winner []byte
	if h.Winner != nil {
		if winner, err = json.Marshal(h.Winner); err != nil {
			return fmt.Errorf("encoding winner: %w", err)
		}
	}
	const query = `INSERT INTO game_history
			(room_id, players, total_rounds, duration_sec, winner, settings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, cancelFunc := context.WithTimeout(ctx, s.QueryPeriod)
	defer cancelFunc()
	if _, err := s.db.ExecContext(ctx, query,
		h.RoomID, players, h.TotalRounds, h.DurationSec, winner, settings, h.CreatedAt); err != nil {
		return fmt.Errorf("creating game history: %w", err)
	}
	return nil
}

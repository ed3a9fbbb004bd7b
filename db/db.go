// Package db contains the contracts for mirroring game state to an external
// store.  The in-memory room table stays authoritative; writes here are
// fire-and-forget side effects that must never block a gameplay transition.
package db

import (
	"context"
	"time"
)

type (
	// Config contains properties shared by store backends.
	Config struct {
		// QueryPeriod is the amount of time each database operation can take.
		QueryPeriod time.Duration
	}

	// GameStore mirrors room state and records finished games.
	GameStore interface {
		// UpsertRoom writes the room mirror, replacing any previous document.
		UpsertRoom(ctx context.Context, r RoomRecord) error
		// DeleteRoom removes the room mirror.
		DeleteRoom(ctx context.Context, roomID string) error
		// CreateHistory appends a finished-game record.
		CreateHistory(ctx context.Context, h HistoryRecord) error
	}

	// RoomRecord is the persisted mirror of a room.
	RoomRecord struct {
		RoomID          string         `bson:"roomId" json:"roomId"`
		HostID          string         `bson:"hostId" json:"hostId"`
		Stage           string         `bson:"stage" json:"stage"`
		CurrentDrawerID string         `bson:"currentDrawerId,omitempty" json:"currentDrawerId,omitempty"`
		CurrentWord     string         `bson:"currentWord,omitempty" json:"currentWord,omitempty"`
		CurrentRound    int            `bson:"currentRound" json:"currentRound"`
		Players         []PlayerRecord `bson:"players" json:"players"`
		Settings        SettingsRecord `bson:"settings" json:"settings"`
		UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
	}

	// PlayerRecord is one roster entry of a RoomRecord.
	PlayerRecord struct {
		ID       string    `bson:"id" json:"id"`
		Name     string    `bson:"name" json:"name"`
		Score    int       `bson:"score" json:"score"`
		IsHost   bool      `bson:"isHost" json:"isHost"`
		IsReady  bool      `bson:"isReady" json:"isReady"`
		JoinedAt time.Time `bson:"joinedAt" json:"joinedAt"`
	}

	// SettingsRecord is the persisted form of room settings.
	SettingsRecord struct {
		TimeLimit    int    `bson:"timeLimit" json:"timeLimit"`
		TotalRounds  int    `bson:"totalRounds" json:"totalRounds"`
		Difficulty   string `bson:"difficulty" json:"difficulty"`
		HintsEnabled bool   `bson:"hintsEnabled" json:"hintsEnabled"`
	}

	// HistoryRecord captures the outcome of a finished game.
	HistoryRecord struct {
		RoomID      string          `bson:"roomId" json:"roomId"`
		Players     []HistoryEntry  `bson:"players" json:"players"`
		TotalRounds int             `bson:"totalRounds" json:"totalRounds"`
		DurationSec int             `bson:"duration" json:"duration"`
		Winner      *HistoryEntry   `bson:"winner,omitempty" json:"winner,omitempty"`
		Settings    SettingsRecord  `bson:"settings" json:"settings"`
		CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	}

	// HistoryEntry is one ranked player of a HistoryRecord.
	HistoryEntry struct {
		ID         string `bson:"id" json:"id"`
		Name       string `bson:"name" json:"name"`
		FinalScore int    `bson:"finalScore" json:"finalScore"`
		Rank       int    `bson:"rank" json:"rank"`
	}

	// NoStore is a GameStore that discards everything, used when no external
	// database is configured.
	NoStore struct{}
)

// UpsertRoom does nothing.
func (NoStore) UpsertRoom(ctx context.Context, r RoomRecord) error { return nil }

// DeleteRoom does nothing.
func (NoStore) DeleteRoom(ctx context.Context, roomID string) error { return nil }

// CreateHistory does nothing.
func (NoStore) CreateHistory(ctx context.Context, h HistoryRecord) error { return nil }

// Package game implements the authoritative state for a drawing-and-guessing room.
package game

import (
	"fmt"
	"math/rand"
)

type (
	// Stage is the phase a room is in.
	Stage string

	// Difficulty selects which word pool rounds draw from.
	Difficulty string

	// Settings are the host-adjustable properties of a room.
	Settings struct {
		// TimeLimit is the length of a round, in seconds.
		TimeLimit int `json:"timeLimit"`
		// TotalRounds is the number of times each player draws before the game ends.
		TotalRounds int `json:"totalRounds"`
		// Difficulty selects the word pool for new rounds.
		Difficulty Difficulty `json:"difficulty"`
		// MaxPlayers caps the roster size.
		MaxPlayers int `json:"maxPlayers"`
		// HintsEnabled causes progressive hints to be sent to guessers during a round.
		HintsEnabled bool `json:"hintsEnabled"`
	}

	// SettingsPatch is a partial settings update.  Nil fields are left unchanged.
	SettingsPatch struct {
		TimeLimit    *int        `json:"timeLimit,omitempty"`
		TotalRounds  *int        `json:"totalRounds,omitempty"`
		Difficulty   *Difficulty `json:"difficulty,omitempty"`
		HintsEnabled *bool       `json:"hintsEnabled,omitempty"`
	}

	// Error is a structured failure with a stable code that clients can render and retry from.
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

const (
	// StageLobby is the pre-game phase where settings can change.
	StageLobby Stage = "lobby"
	// StageWaiting is the pause between rounds.
	StageWaiting Stage = "waiting"
	// StageDrawing is an active round.
	StageDrawing Stage = "drawing"
	// StageEnded is a finished game awaiting room expiry.
	StageEnded Stage = "ended"
)

const (
	// DifficultyEasy selects the easy word pool.
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium selects the medium word pool.
	DifficultyMedium Difficulty = "medium"
)

// Error codes for player-initiated actions.
const (
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodeRoomFull         = "ROOM_FULL"
	ErrCodeRoomExists       = "ROOM_EXISTS"
	ErrCodeNotHost          = "NOT_HOST"
	ErrCodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	ErrCodeGameInProgress   = "GAME_IN_PROGRESS"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
)

// roomCodeAlphabet excludes visually ambiguous characters (0/O, 1/I/L lookalikes).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLength is the fixed length of generated room codes.
const RoomCodeLength = 5

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

// NewError creates a structured error with the code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// DefaultSettings are the settings a new room starts with.
func DefaultSettings() Settings {
	return Settings{
		TimeLimit:    80,
		TotalRounds:  3,
		Difficulty:   DifficultyMedium,
		MaxPlayers:   10,
		HintsEnabled: true,
	}
}

// apply merges the patch into the settings, clamping each value to its allowed range.
// MaxPlayers is not player-adjustable.
func (s *Settings) apply(p SettingsPatch) {
	if p.TimeLimit != nil {
		s.TimeLimit = clamp(*p.TimeLimit, 30, 180)
	}
	if p.TotalRounds != nil {
		s.TotalRounds = clamp(*p.TotalRounds, 1, 10)
	}
	if p.Difficulty != nil && (*p.Difficulty == DifficultyEasy || *p.Difficulty == DifficultyMedium) {
		s.Difficulty = *p.Difficulty
	}
	if p.HintsEnabled != nil {
		s.HintsEnabled = *p.HintsEnabled
	}
}

// NewRoomCode generates a room code from the unambiguous alphabet.
// Codes are not guaranteed unique; callers must retry on collision.
func NewRoomCode(r *rand.Rand) string {
	b := make([]byte, RoomCodeLength)
	for i := range b {
		b[i] = roomCodeAlphabet[r.Intn(len(roomCodeAlphabet))]
	}
	return string(b)
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

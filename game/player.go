package game

import "time"

type (
	// Player is a member of a room's roster.  Rooms own their players; the
	// session directory only holds identifiers.
	Player struct {
		ID       string
		Name     string
		Score    int
		IsHost   bool
		IsReady  bool
		JoinedAt time.Time
	}

	// PublicPlayer is the view of a player broadcast to every client.
	// It never carries drawer-only data.
	PublicPlayer struct {
		ID                  string `json:"id"`
		Name                string `json:"name"`
		Score               int    `json:"score"`
		IsHost              bool   `json:"isHost"`
		IsReady             bool   `json:"isReady"`
		IsDrawing           bool   `json:"isDrawing"`
		HasGuessedCorrectly bool   `json:"hasGuessedCorrectly"`
	}
)

// maxPlayerNameLength bounds display names.
const maxPlayerNameLength = 20

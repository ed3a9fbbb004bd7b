package game

import (
	"fmt"
	"time"
)

type (
	// Room is one game session.  All mutation happens on the gateway's event
	// goroutine, so the room needs no locking of its own.
	Room struct {
		id               string
		players          []*Player
		hostID           string
		stage            Stage
		currentDrawerID  string
		currentWord      string
		currentRound     int
		strokes          []Stroke
		roundStart       time.Time
		guessedCorrectly map[string]struct{}
		drawerOrder      []string
		drawerIndex      int
		settings         Settings
		createdAt        time.Time
		words            WordSupplier
		Config
	}

	// Config contains the properties shared by all rooms a gateway creates.
	Config struct {
		// TimeFunc supplies the current wall-clock time.  Round timing and
		// scoring read it so clients cannot manipulate the clock.
		TimeFunc func() time.Time
		// ShuffleFunc reorders player ids in place when building the drawer rotation.
		ShuffleFunc func(ids []string)
	}

	// WordSupplier provides secret words by difficulty.
	WordSupplier interface {
		// RandomWord returns a word from the difficulty's pool, avoiding
		// repeats until the pool is exhausted.
		RandomWord(difficulty string) string
	}

	// RoundInfo describes a newly started round.
	RoundInfo struct {
		DrawerID  string
		Word      string
		TimeLimit int
	}

	// Removal describes the roster change from RemovePlayer so the caller can
	// emit the right follow-up events.
	Removal struct {
		Removed          bool
		PlayerName       string
		WasHost          bool
		WasDrawer        bool
		NewHostID        string
		ShouldEndRound   bool
		RemainingPlayers int
	}
)

const (
	// strokeBufferCap bounds the stroke buffer kept for late-joiner rehydration.
	strokeBufferCap = 500
	// strokeBufferTrim is the buffer size after the cap is exceeded.
	strokeBufferTrim = 400
)

// NewRoom creates an empty room in the lobby stage.
func (cfg Config) NewRoom(id string, words WordSupplier) (*Room, error) {
	if err := cfg.validate(id, words); err != nil {
		return nil, fmt.Errorf("creating room: validation: %w", err)
	}
	r := Room{
		id:               id,
		stage:            StageLobby,
		guessedCorrectly: make(map[string]struct{}),
		settings:         DefaultSettings(),
		createdAt:        cfg.TimeFunc(),
		words:            words,
		Config:           cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(id string, words WordSupplier) error {
	switch {
	case len(id) == 0:
		return fmt.Errorf("room id required")
	case words == nil:
		return fmt.Errorf("word supplier required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ShuffleFunc == nil:
		return fmt.Errorf("shuffle func required")
	}
	return nil
}

// ID returns the room code.
func (r *Room) ID() string { return r.id }

// Stage returns the room's current phase.
func (r *Room) Stage() Stage { return r.stage }

// HostID returns the id of the host player, or "" for an empty room.
func (r *Room) HostID() string { return r.hostID }

// CurrentDrawerID returns the id of the active drawer, or "" outside a round.
func (r *Room) CurrentDrawerID() string { return r.currentDrawerID }

// CurrentWord returns the secret word of the active round.
func (r *Room) CurrentWord() string { return r.currentWord }

// CurrentRound returns the 1-based round counter.
func (r *Room) CurrentRound() int { return r.currentRound }

// Settings returns the room's settings.
func (r *Room) Settings() Settings { return r.settings }

// CreatedAt returns when the room was created.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// PlayerCount returns the roster size.
func (r *Room) PlayerCount() int { return len(r.players) }

// Player returns the player with the id, if present.
func (r *Room) Player(id string) (*Player, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerName returns the display name for the id, or "Unknown".
func (r *Room) PlayerName(id string) string {
	if p, ok := r.Player(id); ok {
		return p.Name
	}
	return "Unknown"
}

// PublicPlayers returns the public view of the roster in join order.
func (r *Room) PublicPlayers() []PublicPlayer {
	public := make([]PublicPlayer, 0, len(r.players))
	for _, p := range r.players {
		_, guessed := r.guessedCorrectly[p.ID]
		public = append(public, PublicPlayer{
			ID:                  p.ID,
			Name:                p.Name,
			Score:               p.Score,
			IsHost:              p.IsHost,
			IsReady:             p.IsReady,
			IsDrawing:           p.ID == r.currentDrawerID,
			HasGuessedCorrectly: guessed,
		})
	}
	return public
}

// AddPlayer appends a player to the roster.  The first player always becomes
// host.  Once the roster is at MaxPlayers the add is silently ignored and nil
// is returned; callers check capacity before surfacing errors.
func (r *Room) AddPlayer(id, name string, isHost bool) *Player {
	if len(r.players) >= r.settings.MaxPlayers {
		return nil
	}
	if len(name) > maxPlayerNameLength {
		name = name[:maxPlayerNameLength]
	}
	p := Player{
		ID:       id,
		Name:     name,
		IsHost:   isHost,
		JoinedAt: r.TimeFunc(),
	}
	r.players = append(r.players, &p)
	if isHost || len(r.players) == 1 {
		r.hostID = id
		p.IsHost = true
	}
	return &p
}

// RemovePlayer removes the player from the roster, promoting the
// longest-tenured remaining player to host if the host left.  Removing an
// absent id is a no-op.
func (r *Room) RemovePlayer(id string) Removal {
	index := -1
	for i, p := range r.players {
		if p.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return Removal{}
	}
	removed := r.players[index]
	wasHost := r.hostID == id
	wasDrawer := r.currentDrawerID == id
	r.players = append(r.players[:index], r.players[index+1:]...)
	var newHostID string
	if wasHost && len(r.players) > 0 {
		r.hostID = r.players[0].ID
		r.players[0].IsHost = true
		newHostID = r.hostID
	}
	order := r.drawerOrder[:0]
	for _, oid := range r.drawerOrder {
		if oid != id {
			order = append(order, oid)
		}
	}
	r.drawerOrder = order
	return Removal{
		Removed:          true,
		PlayerName:       removed.Name,
		WasHost:          wasHost,
		WasDrawer:        wasDrawer,
		NewHostID:        newHostID,
		ShouldEndRound:   wasDrawer && r.stage == StageDrawing,
		RemainingPlayers: len(r.players),
	}
}

// ToggleReady flips the ready flag for the player.
func (r *Room) ToggleReady(id string) {
	if p, ok := r.Player(id); ok {
		p.IsReady = !p.IsReady
	}
}

// UpdateSettings merges the patch into the room's settings, clamping values,
// and returns the result.
func (r *Room) UpdateSettings(p SettingsPatch) Settings {
	r.settings.apply(p)
	return r.settings
}

// StartRound advances to the next round: increments the round counter, resets
// per-round guess tracking, clears the stroke buffer, rotates the drawer, and
// draws a new secret word.
//
// The rotation is a shuffled permutation of player ids computed once and
// consumed round-robin; the same order repeats each lap.  It is rebuilt (and
// reshuffled) only when the scheduled drawer has left the room.
func (r *Room) StartRound(difficulty Difficulty) RoundInfo {
	if difficulty == DifficultyEasy || difficulty == DifficultyMedium {
		r.settings.Difficulty = difficulty
	}
	r.currentRound++
	r.stage = StageDrawing
	r.strokes = nil
	r.guessedCorrectly = make(map[string]struct{})
	if len(r.drawerOrder) == 0 {
		r.rebuildDrawerOrder()
	}
	r.currentDrawerID = r.drawerOrder[r.drawerIndex%len(r.drawerOrder)]
	r.drawerIndex++
	if _, ok := r.Player(r.currentDrawerID); !ok {
		r.rebuildDrawerOrder()
		r.currentDrawerID = r.drawerOrder[0]
		r.drawerIndex = 1
	}
	r.currentWord = r.words.RandomWord(string(r.settings.Difficulty))
	r.roundStart = r.TimeFunc()
	return RoundInfo{
		DrawerID:  r.currentDrawerID,
		Word:      r.currentWord,
		TimeLimit: r.settings.TimeLimit,
	}
}

// rebuildDrawerOrder recomputes the rotation from the current roster.
func (r *Room) rebuildDrawerOrder() {
	r.drawerOrder = make([]string, 0, len(r.players))
	for _, p := range r.players {
		r.drawerOrder = append(r.drawerOrder, p.ID)
	}
	r.ShuffleFunc(r.drawerOrder)
	r.drawerIndex = 0
}

// EndRound moves the room to the waiting stage, clears strokes, and grants the
// drawer a bonus of 20 points per correct guesser, capped at 100.
func (r *Room) EndRound() {
	r.stage = StageWaiting
	r.strokes = nil
	if len(r.guessedCorrectly) > 0 {
		if drawer, ok := r.Player(r.currentDrawerID); ok {
			bonus := len(r.guessedCorrectly) * 20
			if bonus > 100 {
				bonus = 100
			}
			drawer.Score += bonus
		}
	}
}

// EndGame marks the game finished; the room lingers so clients can render
// final standings before it expires.
func (r *Room) EndGame() {
	r.stage = StageEnded
}

// AddStroke appends a stroke to the rehydration buffer, dropping the oldest
// entries once the cap is exceeded.
func (r *Room) AddStroke(s Stroke) {
	r.strokes = append(r.strokes, s)
	if len(r.strokes) > strokeBufferCap {
		trimmed := make([]Stroke, strokeBufferTrim)
		copy(trimmed, r.strokes[len(r.strokes)-strokeBufferTrim:])
		r.strokes = trimmed
	}
}

// ClearStrokes empties the stroke buffer.
func (r *Room) ClearStrokes() {
	r.strokes = nil
}

// Strokes returns a copy of the stroke buffer in receipt order.
func (r *Room) Strokes() []Stroke {
	strokes := make([]Stroke, len(r.strokes))
	copy(strokes, r.strokes)
	return strokes
}

// AwardPoints scores a correct guess for the player and returns the points
// granted.  Points decrease with guess order and increase with remaining time,
// both computed from the room's wall clock.  A player can only be awarded once
// per round; repeat calls return 0.
func (r *Room) AwardPoints(playerID string) int {
	p, ok := r.Player(playerID)
	if !ok {
		return 0
	}
	if _, guessed := r.guessedCorrectly[playerID]; guessed {
		return 0
	}
	guessOrder := len(r.guessedCorrectly)
	basePoints := 100 - guessOrder*20
	if basePoints < 20 {
		basePoints = 20
	}
	timeBonus := r.TimeRemaining() * 50 / r.settings.TimeLimit
	points := basePoints + timeBonus
	p.Score += points
	r.guessedCorrectly[playerID] = struct{}{}
	return points
}

// HasPlayerGuessed reports whether the player already guessed correctly this round.
func (r *Room) HasPlayerGuessed(playerID string) bool {
	_, ok := r.guessedCorrectly[playerID]
	return ok
}

// HasEveryoneGuessed reports whether every non-drawer has guessed correctly.
func (r *Room) HasEveryoneGuessed() bool {
	nonDrawers := 0
	for _, p := range r.players {
		if p.ID != r.currentDrawerID {
			nonDrawers++
		}
	}
	return len(r.guessedCorrectly) >= nonDrawers
}

// TimeRemaining returns the whole seconds left in the active round.
func (r *Room) TimeRemaining() int {
	if r.roundStart.IsZero() {
		return r.settings.TimeLimit
	}
	elapsed := int(r.TimeFunc().Sub(r.roundStart).Seconds())
	remaining := r.settings.TimeLimit - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RoundStart returns when the active round began.
func (r *Room) RoundStart() time.Time { return r.roundStart }

// IsGameOver reports whether every player has drawn TotalRounds times.
func (r *Room) IsGameOver() bool {
	return r.currentRound >= len(r.players)*r.settings.TotalRounds
}

// ResetGame returns the room to the lobby, zeroing scores and round state but
// preserving the roster.
func (r *Room) ResetGame() {
	r.stage = StageLobby
	r.currentDrawerID = ""
	r.currentWord = ""
	r.currentRound = 0
	r.strokes = nil
	r.guessedCorrectly = make(map[string]struct{})
	r.drawerOrder = nil
	r.drawerIndex = 0
	for _, p := range r.players {
		p.Score = 0
		p.IsReady = false
	}
}

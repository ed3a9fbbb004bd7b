package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/doodlex/doodlex/game"
)

func TestHintDue(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	drawer, guesser, _, word := tg.startTestRound(t, c1, c2, created.PlayerID, joined.PlayerID)

	tg.hintDue(created.RoomID, 1, 1)
	m, ok := findEvent(drain(guesser), eventHintUpdate)
	if !ok {
		t.Fatal("wanted hintUpdate for guesser")
	}
	hint := m.Data.(hintUpdatePayload)
	switch {
	case hint.Stage != 1:
		t.Errorf("wanted stage 1, got %v", hint.Stage)
	case len(hint.Hint) != len(word):
		t.Errorf("wanted hint shaped like %q, got %q", word, hint.Hint)
	case hint.Hint[0] != word[0]:
		t.Errorf("wanted first letter revealed at stage 1, got %q for %q", hint.Hint, word)
	case strings.Count(hint.Hint, "_") != len(word)-1-strings.Count(word, " "):
		t.Errorf("wanted only the first letter revealed, got %q for %q", hint.Hint, word)
	}
	if _, ok := findEvent(drain(drawer), eventHintUpdate); ok {
		t.Errorf("unwanted hintUpdate for drawer")
	}
}

func TestHintDueStaleRound(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	_, guesser, _, _ := tg.startTestRound(t, c1, c2, created.PlayerID, joined.PlayerID)

	tg.hintDue(created.RoomID, 99, 1)
	if _, ok := findEvent(drain(guesser), eventHintUpdate); ok {
		t.Errorf("unwanted hintUpdate for a stale round")
	}
	tg.hintDue("ZZZZZ", 1, 1) // unknown room, no panic
}

func TestHintsDisabled(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	hintsEnabled := false
	tg.handleUpdateSettings(c1, 2, payload(t, updateSettingsPayload{Settings: game.SettingsPatch{HintsEnabled: &hintsEnabled}}))
	drain(c1)
	drain(c2)
	_, guesser, _, _ := tg.startTestRound(t, c1, c2, created.PlayerID, joined.PlayerID)

	if got := len(tg.rooms[created.RoomID].timers.hints); got != 0 {
		t.Errorf("wanted no hint timers when hints disabled, got %v", got)
	}
	tg.hintDue(created.RoomID, 1, 1)
	if _, ok := findEvent(drain(guesser), eventHintUpdate); ok {
		t.Errorf("unwanted hintUpdate when hints disabled")
	}
}

func TestRoundTimedOut(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	_, guesser, _, word := tg.startTestRound(t, c1, c2, created.PlayerID, joined.PlayerID)

	// a stale timer does nothing
	tg.roundTimedOut(created.RoomID, 99)
	if _, ok := findEvent(drain(guesser), eventRoundEnded); ok {
		t.Fatal("unwanted roundEnded from stale timer")
	}

	tg.now = tg.now.Add(time.Duration(game.DefaultSettings().TimeLimit) * time.Second)
	tg.roundTimedOut(created.RoomID, 1)
	m, ok := findEvent(drain(guesser), eventRoundEnded)
	if !ok {
		t.Fatal("wanted roundEnded on timeout")
	}
	ended := m.Data.(roundEndedPayload)
	switch {
	case ended.Word != word:
		t.Errorf("wanted word %q revealed, got %q", word, ended.Word)
	case ended.WinnerID != nil:
		t.Errorf("wanted no winner on timeout, got %v", *ended.WinnerID)
	}
	if got := tg.rooms[created.RoomID].room.Stage(); got != game.StageWaiting {
		t.Errorf("wanted stage %v, got %v", game.StageWaiting, got)
	}
}

func TestNextRoundDue(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	tg.startTestRound(t, c1, c2, created.PlayerID, joined.PlayerID)
	tg.roundTimedOut(created.RoomID, 1)
	drain(c1)
	drain(c2)

	tg.nextRoundDue(created.RoomID, 1)
	if _, ok := findEvent(drain(c1), eventRoundStarted); !ok {
		t.Fatal("wanted the next round to start")
	}
	if got := tg.rooms[created.RoomID].room.CurrentRound(); got != 2 {
		t.Errorf("wanted round 2, got %v", got)
	}
}

func TestFullGameToExpiry(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	totalRounds := 1
	tg.handleUpdateSettings(c1, 2, payload(t, updateSettingsPayload{Settings: game.SettingsPatch{TotalRounds: &totalRounds}}))
	drain(c1)
	drain(c2)
	clients := map[string]*client{created.PlayerID: c1, joined.PlayerID: c2}
	tg.handleStartRound(c1, 3, payload(t, startRoundPayload{}))

	// each player draws once
	for round := 1; round <= 2; round++ {
		room := tg.rooms[created.RoomID].room
		if round > 1 {
			tg.nextRoundDue(created.RoomID, round-1)
		}
		word := room.CurrentWord()
		drawerID := room.CurrentDrawerID()
		for id, c := range clients {
			if id != drawerID {
				tg.handleGuess(c, 0, payload(t, textPayload{Text: word}))
			}
		}
	}
	responses := drain(c1)
	m, ok := findEvent(responses, eventGameOver)
	if !ok {
		t.Fatal("wanted gameOver after every player drew")
	}
	over := m.Data.(gameOverPayload)
	switch {
	case len(over.FinalScores) != 2:
		t.Errorf("wanted 2 final scores, got %v", len(over.FinalScores))
	case !over.RoomExpiring:
		t.Errorf("wanted room flagged as expiring")
	}
	for i := 1; i < len(over.FinalScores); i++ {
		if over.FinalScores[i-1].Score < over.FinalScores[i].Score {
			t.Errorf("wanted standings sorted by score, got %v", over.FinalScores)
		}
	}
	if got := tg.rooms[created.RoomID].room.Stage(); got != game.StageEnded {
		t.Fatalf("wanted stage %v, got %v", game.StageEnded, got)
	}

	tg.roomExpired(created.RoomID)
	if _, ok := findEvent(drain(c2), eventRoomExpired); !ok {
		t.Errorf("wanted roomExpired event")
	}
	if _, ok := tg.rooms[created.RoomID]; ok {
		t.Errorf("wanted room deleted after expiry")
	}
	if rooms, connections := tg.Stats(); rooms != 0 || connections != 0 {
		t.Errorf("wanted 0 rooms and 0 connections, got %v and %v", rooms, connections)
	}
}

func TestStartRoundAfterGameOverResets(t *testing.T) {
	tg := newTestGateway(t)
	c1, c2 := tg.connect("conn1"), tg.connect("conn2")
	created := tg.createTestRoom(t, c1, "alice")
	joined := tg.joinTestRoom(t, c2, created.RoomID, "bob")
	drain(c1)
	totalRounds := 1
	tg.handleUpdateSettings(c1, 2, payload(t, updateSettingsPayload{Settings: game.SettingsPatch{TotalRounds: &totalRounds}}))
	drain(c1)
	drain(c2)
	clients := map[string]*client{created.PlayerID: c1, joined.PlayerID: c2}
	tg.handleStartRound(c1, 3, payload(t, startRoundPayload{}))
	for round := 1; round <= 2; round++ {
		room := tg.rooms[created.RoomID].room
		if round > 1 {
			tg.nextRoundDue(created.RoomID, round-1)
		}
		word := room.CurrentWord()
		drawerID := room.CurrentDrawerID()
		for id, c := range clients {
			if id != drawerID {
				tg.handleGuess(c, 0, payload(t, textPayload{Text: word}))
			}
		}
	}
	drain(c1)
	drain(c2)

	tg.handleStartRound(c1, 9, payload(t, startRoundPayload{}))
	responses := drain(c1)
	if ack := lastAck(t, responses); !ack.Success {
		t.Fatalf("wanted a fresh game, got %v", ack.Error)
	}
	room := tg.rooms[created.RoomID].room
	if got := room.CurrentRound(); got != 1 {
		t.Errorf("wanted round counter restarted, got %v", got)
	}
	started, ok := findEvent(responses, eventRoundStarted)
	if !ok {
		t.Fatal("wanted roundStarted for the new game")
	}
	if got := started.Data.(roundStartedPayload).Round; got != 1 {
		t.Errorf("wanted round 1, got %v", got)
	}
	for _, p := range room.PublicPlayers() {
		if !p.IsDrawing && p.Score != 0 {
			t.Errorf("wanted scores zeroed for the new game, %v has %v", p.ID, p.Score)
		}
	}
}

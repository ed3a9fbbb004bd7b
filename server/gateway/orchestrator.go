package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/doodlex/doodlex/db"
	"github.com/doodlex/doodlex/game"
	"github.com/doodlex/doodlex/game/word"
)

// roomTimers holds the pending timers of one room.  Timers fire on their own
// goroutines and only post closures; every fired closure re-validates room
// state before acting, so a stale Stop is harmless.
type roomTimers struct {
	round  *time.Timer
	hints  []*time.Timer
	next   *time.Timer
	expiry *time.Timer
}

// stopRound cancels the round-timeout and hint timers.
func (t *roomTimers) stopRound() {
	if t.round != nil {
		t.round.Stop()
		t.round = nil
	}
	for _, h := range t.hints {
		h.Stop()
	}
	t.hints = nil
}

// stopAll cancels every pending timer.
func (t *roomTimers) stopAll() {
	t.stopRound()
	if t.next != nil {
		t.next.Stop()
		t.next = nil
	}
	if t.expiry != nil {
		t.expiry.Stop()
		t.expiry = nil
	}
}

// beginRound starts the next round: rotates the drawer, draws a word, tells
// the drawer the word and everyone else its shape, and arms the hint and
// timeout timers.
func (g *Gateway) beginRound(entry *roomEntry, difficulty game.Difficulty) {
	entry.timers.stopAll()
	entry.hintStage = 0
	entry.winnerID = ""
	room := entry.room
	info := room.StartRound(difficulty)
	settings := room.Settings()
	now := g.TimeFunc()
	endTime := now.Add(time.Duration(info.TimeLimit) * time.Second)
	base := roundStartedPayload{
		RoomID:       room.ID(),
		DrawerID:     info.DrawerID,
		DrawerName:   room.PlayerName(info.DrawerID),
		TimeLimit:    info.TimeLimit,
		WordLength:   len(info.Word),
		HintsEnabled: settings.HintsEnabled,
		Round:        room.CurrentRound(),
		TotalRounds:  settings.TotalRounds,
		ServerTime:   now.UnixMilli(),
		RoundEndTime: endTime.UnixMilli(),
	}
	for _, p := range room.PublicPlayers() {
		payload := base
		switch {
		case p.ID == info.DrawerID:
			payload.Word = info.Word
		case settings.HintsEnabled:
			payload.WordHint = entry.bank.HintAt(info.Word, 0)
		}
		g.sendToPlayer(p.ID, Response{Event: eventRoundStarted, Data: payload})
	}
	roomID, round := room.ID(), room.CurrentRound()
	if settings.HintsEnabled {
		roundDur := time.Duration(info.TimeLimit) * time.Second
		for stage := 1; stage < word.HintStages; stage++ {
			stage := stage
			delay := roundDur * time.Duration(stage) / word.HintStages
			entry.timers.hints = append(entry.timers.hints, time.AfterFunc(delay, func() {
				g.post(func() {
					g.hintDue(roomID, round, stage)
				})
			}))
		}
	}
	entry.timers.round = time.AfterFunc(time.Duration(info.TimeLimit)*time.Second, func() {
		g.post(func() {
			g.roundTimedOut(roomID, round)
		})
	})
	g.broadcastRoomUpdate(entry, "")
	g.persistRoom(entry)
	if g.Debug {
		g.Log.Printf("room %v round %v started, %v drawing", roomID, round, info.DrawerID)
	}
}

// hintDue reveals the next hint stage to every guesser if the round it was
// scheduled for is still running.
func (g *Gateway) hintDue(roomID string, round, stage int) {
	entry, ok := g.rooms[roomID]
	if !ok {
		return
	}
	room := entry.room
	if room.Stage() != game.StageDrawing || room.CurrentRound() != round || !room.Settings().HintsEnabled {
		return
	}
	entry.hintStage = stage
	hint := entry.bank.HintAt(room.CurrentWord(), stage)
	m := Response{Event: eventHintUpdate, Data: hintUpdatePayload{
		Hint:  hint,
		Stage: stage,
	}}
	for _, p := range room.PublicPlayers() {
		if p.ID == room.CurrentDrawerID() {
			continue
		}
		g.sendToPlayer(p.ID, m)
	}
}

// roundTimedOut ends the round the timer was armed for, if it is still running.
func (g *Gateway) roundTimedOut(roomID string, round int) {
	entry, ok := g.rooms[roomID]
	if !ok {
		return
	}
	room := entry.room
	if room.Stage() != game.StageDrawing || room.CurrentRound() != round {
		return
	}
	g.endRound(entry)
}

// endRound reveals the word, settles scores, and either finishes the game,
// resets an under-populated room to the lobby, or schedules the next round.
func (g *Gateway) endRound(entry *roomEntry) {
	entry.timers.stopRound()
	room := entry.room
	revealed := room.CurrentWord()
	room.EndRound()
	var winnerID *string
	if entry.winnerID != "" {
		id := entry.winnerID
		winnerID = &id
	}
	g.broadcast(entry, Response{Event: eventRoundEnded, Data: roundEndedPayload{
		Word:     revealed,
		Scores:   room.PublicPlayers(),
		WinnerID: winnerID,
	}}, "")
	g.systemChat(entry, fmt.Sprintf("The word was %q", revealed))
	switch {
	case room.IsGameOver():
		g.finishGame(entry)
	case room.PlayerCount() < 2:
		room.ResetGame()
		g.systemChat(entry, "Not enough players, returning to the lobby")
		g.broadcastRoomUpdate(entry, "")
	default:
		roomID, round := room.ID(), room.CurrentRound()
		entry.timers.next = time.AfterFunc(g.InterRoundDelay, func() {
			g.post(func() {
				g.nextRoundDue(roomID, round)
			})
		})
	}
	g.persistRoom(entry)
}

// nextRoundDue starts the next round after the inter-round pause, unless the
// room moved on or shrank below the player minimum.
func (g *Gateway) nextRoundDue(roomID string, round int) {
	entry, ok := g.rooms[roomID]
	if !ok {
		return
	}
	room := entry.room
	if room.Stage() != game.StageWaiting || room.CurrentRound() != round {
		return
	}
	if room.PlayerCount() < 2 {
		room.ResetGame()
		g.systemChat(entry, "Not enough players, returning to the lobby")
		g.broadcastRoomUpdate(entry, "")
		g.persistRoom(entry)
		return
	}
	g.beginRound(entry, room.Settings().Difficulty)
}

// finishGame ends the game, records history, and arms the room expiry timer.
// The room lingers so clients can render final standings; the host may start
// a fresh game before it expires.
func (g *Gateway) finishGame(entry *roomEntry) {
	room := entry.room
	room.EndGame()
	standings := room.PublicPlayers()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	g.broadcast(entry, Response{Event: eventGameOver, Data: gameOverPayload{
		FinalScores:  standings,
		RoomExpiring: true,
	}}, "")
	g.createHistory(room, standings)
	roomID := room.ID()
	entry.timers.expiry = time.AfterFunc(g.RoomExpiry, func() {
		g.post(func() {
			g.roomExpired(roomID)
		})
	})
	g.Log.Printf("room %v game over after %v rounds", roomID, room.CurrentRound())
}

// createHistory records the finished game without blocking the event goroutine.
func (g *Gateway) createHistory(room *game.Room, standings []game.PublicPlayer) {
	players := make([]db.HistoryEntry, 0, len(standings))
	for i, p := range standings {
		players = append(players, db.HistoryEntry{
			ID:         p.ID,
			Name:       p.Name,
			FinalScore: p.Score,
			Rank:       i + 1,
		})
	}
	var winner *db.HistoryEntry
	if len(players) > 0 {
		w := players[0]
		winner = &w
	}
	settings := room.Settings()
	rec := db.HistoryRecord{
		RoomID:      room.ID(),
		Players:     players,
		TotalRounds: settings.TotalRounds,
		DurationSec: int(g.TimeFunc().Sub(room.CreatedAt()).Seconds()),
		Winner:      winner,
		Settings: db.SettingsRecord{
			TimeLimit:    settings.TimeLimit,
			TotalRounds:  settings.TotalRounds,
			Difficulty:   string(settings.Difficulty),
			HintsEnabled: settings.HintsEnabled,
		},
		CreatedAt: g.TimeFunc(),
	}
	go func() {
		if err := g.Store.CreateHistory(context.Background(), rec); err != nil {
			g.Log.Printf("recording game history for %v: %v", rec.RoomID, err)
		}
	}()
}

// roomExpired tells lingering clients the room is gone and tears it down.
// A room the host restarted is no longer ended and is left alone.
func (g *Gateway) roomExpired(roomID string) {
	entry, ok := g.rooms[roomID]
	if !ok || entry.room.Stage() != game.StageEnded {
		return
	}
	g.broadcast(entry, Response{Event: eventRoomExpired, Data: roomOnlyPayload{
		RoomID: roomID,
	}}, "")
	for _, p := range entry.room.PublicPlayers() {
		connID, ok := g.Sessions.ConnFor(p.ID)
		if !ok {
			continue
		}
		g.Sessions.Unbind(connID)
		if c, ok := g.clients[connID]; ok {
			delete(g.clients, connID)
			atomic.AddInt64(&g.connCount, -1)
			close(c.send)
		}
	}
	g.deleteRoom(entry)
}

// deleteRoom drops the room and its mirror.
func (g *Gateway) deleteRoom(entry *roomEntry) {
	entry.timers.stopAll()
	roomID := entry.room.ID()
	delete(g.rooms, roomID)
	atomic.AddInt64(&g.roomCount, -1)
	go func() {
		if err := g.Store.DeleteRoom(context.Background(), roomID); err != nil {
			g.Log.Printf("deleting room mirror %v: %v", roomID, err)
		}
	}()
	if g.Debug {
		g.Log.Printf("room %v deleted", roomID)
	}
}

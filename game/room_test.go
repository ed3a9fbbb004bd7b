package game

import (
	"testing"
	"time"
)

type stubWords struct {
	word string
}

func (s stubWords) RandomWord(difficulty string) string {
	return s.word
}

// noShuffle keeps the rotation in roster order so tests are deterministic.
func noShuffle(ids []string) {}

func newTestRoom(t *testing.T, now *time.Time) *Room {
	t.Helper()
	cfg := Config{
		TimeFunc:    func() time.Time { return *now },
		ShuffleFunc: noShuffle,
	}
	r, err := cfg.NewRoom("TESTR", stubWords{word: "apple"})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return r
}

func TestNewRoom(t *testing.T) {
	timeFunc := func() time.Time { return time.Unix(0, 0) }
	newRoomTests := []struct {
		id     string
		words  WordSupplier
		wantOk bool
		Config
	}{
		{ // no id
			words:  stubWords{},
			Config: Config{TimeFunc: timeFunc, ShuffleFunc: noShuffle},
		},
		{ // no word supplier
			id:     "AAAAA",
			Config: Config{TimeFunc: timeFunc, ShuffleFunc: noShuffle},
		},
		{ // no time func
			id:     "AAAAA",
			words:  stubWords{},
			Config: Config{ShuffleFunc: noShuffle},
		},
		{ // no shuffle func
			id:     "AAAAA",
			words:  stubWords{},
			Config: Config{TimeFunc: timeFunc},
		},
		{
			id:     "AAAAA",
			words:  stubWords{},
			Config: Config{TimeFunc: timeFunc, ShuffleFunc: noShuffle},
			wantOk: true,
		},
	}
	for i, test := range newRoomTests {
		r, err := test.Config.NewRoom(test.id, test.words)
		switch {
		case err != nil:
			if test.wantOk {
				t.Errorf("Test %v: unwanted error: %v", i, err)
			}
		case !test.wantOk:
			t.Errorf("Test %v: wanted error", i)
		case r.Stage() != StageLobby:
			t.Errorf("Test %v: wanted new room in lobby, got %v", i, r.Stage())
		}
	}
}

func TestAddPlayer(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	p1 := r.AddPlayer("p1", "alice", false)
	if !p1.IsHost || r.HostID() != "p1" {
		t.Errorf("wanted first player to become host")
	}
	longName := "abcdefghijklmnopqrstuvwxyz"
	p2 := r.AddPlayer("p2", longName, false)
	if want, got := longName[:20], p2.Name; want != got {
		t.Errorf("wanted name truncated to %q, got %q", want, got)
	}
	for i := 3; i <= 10; i++ {
		r.AddPlayer("p"+string(rune('0'+i)), "x", false)
	}
	if got := r.AddPlayer("p11", "late", false); got != nil {
		t.Errorf("wanted add to full room to be ignored, got %v", got)
	}
	if want, got := 10, r.PlayerCount(); want != got {
		t.Errorf("wanted %v players, got %v", want, got)
	}
}

func TestRemovePlayer(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.AddPlayer("p3", "carol", false)
	r.StartRound("")
	if want, got := "p1", r.CurrentDrawerID(); want != got {
		t.Fatalf("wanted %v to draw first, got %v", want, got)
	}
	removal := r.RemovePlayer("p1")
	switch {
	case !removal.Removed:
		t.Errorf("wanted removal")
	case !removal.WasHost:
		t.Errorf("wanted removal of host to be flagged")
	case !removal.WasDrawer || !removal.ShouldEndRound:
		t.Errorf("wanted removal of drawer mid-round to end the round")
	case removal.NewHostID != "p2":
		t.Errorf("wanted longest-tenured player p2 promoted, got %v", removal.NewHostID)
	case removal.RemainingPlayers != 2:
		t.Errorf("wanted 2 remaining players, got %v", removal.RemainingPlayers)
	}
	if p2, _ := r.Player("p2"); !p2.IsHost {
		t.Errorf("wanted promoted player to have host flag")
	}
	if got := r.RemovePlayer("p1"); got.Removed {
		t.Errorf("wanted second removal to be a no-op")
	}
}

func TestStartRoundRotation(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.AddPlayer("p3", "carol", false)
	totalRounds := r.Settings().TotalRounds
	drawCounts := make(map[string]int)
	for !r.IsGameOver() {
		info := r.StartRound("")
		drawCounts[info.DrawerID]++
		r.EndRound()
	}
	if want, got := 3*totalRounds, r.CurrentRound(); want != got {
		t.Errorf("wanted game over after %v rounds, got %v", want, got)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if want, got := totalRounds, drawCounts[id]; want != got {
			t.Errorf("wanted %v to draw %v times, got %v", id, want, got)
		}
	}
}

func TestStartRoundAfterScheduledDrawerLeaves(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.AddPlayer("p3", "carol", false)
	r.StartRound("")
	r.EndRound()
	r.RemovePlayer("p2") // scheduled next
	info := r.StartRound("")
	if _, ok := r.Player(info.DrawerID); !ok {
		t.Errorf("wanted a present player to draw, got %v", info.DrawerID)
	}
}

func TestAwardPoints(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.AddPlayer("p3", "carol", false)
	timeLimit := 100
	r.UpdateSettings(SettingsPatch{TimeLimit: &timeLimit})
	r.StartRound("") // p1 draws
	now = now.Add(50 * time.Second)
	awardPointsTests := []struct {
		playerID string
		want     int
	}{
		{playerID: "p2", want: 125}, // 100 base + 50/100*50 time bonus
		{playerID: "p3", want: 105}, // 80 base + 25
		{playerID: "p2", want: 0},   // already awarded
		{playerID: "p9", want: 0},   // not in room
	}
	for i, test := range awardPointsTests {
		if got := r.AwardPoints(test.playerID); test.want != got {
			t.Errorf("Test %v: wanted %v points for %v, got %v", i, test.want, test.playerID, got)
		}
	}
	if !r.HasEveryoneGuessed() {
		t.Errorf("wanted everyone-guessed after both guessers scored")
	}
}

func TestAwardPointsBounds(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	for _, id := range ids {
		r.AddPlayer(id, id, false)
	}
	r.StartRound("") // p1 draws
	now = now.Add(time.Duration(r.Settings().TimeLimit) * time.Second)
	for _, id := range ids[1:] {
		got := r.AwardPoints(id)
		if got < 20 || got > 150 {
			t.Errorf("wanted points for %v in [20,150], got %v", id, got)
		}
	}
	// 7th guesser with no time left gets the floor
	if want, got := 20, func() int { p, _ := r.Player("p8"); return p.Score }(); want != got {
		t.Errorf("wanted last guesser at zero time to score %v, got %v", want, got)
	}
}

func TestEndRoundDrawerBonus(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.AddPlayer("p3", "carol", false)
	r.StartRound("") // p1 draws
	r.AwardPoints("p2")
	r.AwardPoints("p3")
	r.EndRound()
	if want, got := StageWaiting, r.Stage(); want != got {
		t.Errorf("wanted stage %v after round, got %v", want, got)
	}
	p1, _ := r.Player("p1")
	if want, got := 40, p1.Score; want != got {
		t.Errorf("wanted drawer bonus of 20 per guesser (%v), got %v", want, got)
	}
}

func TestStrokeBuffer(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	for i := 0; i < strokeBufferCap+1; i++ {
		r.AddStroke(Stroke{ID: string(rune(i)), TS: int64(i)})
	}
	strokes := r.Strokes()
	if want, got := strokeBufferTrim, len(strokes); want != got {
		t.Fatalf("wanted buffer trimmed to %v strokes, got %v", want, got)
	}
	if want, got := int64(strokeBufferCap), strokes[len(strokes)-1].TS; want != got {
		t.Errorf("wanted newest stroke kept, got ts %v", got)
	}
	r.ClearStrokes()
	if got := len(r.Strokes()); got != 0 {
		t.Errorf("wanted no strokes after clear, got %v", got)
	}
}

func TestResetGame(t *testing.T) {
	now := time.Unix(1000, 0)
	r := newTestRoom(t, &now)
	r.AddPlayer("p1", "alice", false)
	r.AddPlayer("p2", "bob", false)
	r.StartRound("")
	r.AwardPoints("p2")
	r.EndRound()
	r.EndGame()
	r.ResetGame()
	switch {
	case r.Stage() != StageLobby:
		t.Errorf("wanted reset room in lobby, got %v", r.Stage())
	case r.CurrentRound() != 0:
		t.Errorf("wanted round counter reset, got %v", r.CurrentRound())
	case r.CurrentDrawerID() != "":
		t.Errorf("wanted no drawer after reset, got %v", r.CurrentDrawerID())
	case r.PlayerCount() != 2:
		t.Errorf("wanted roster preserved, got %v players", r.PlayerCount())
	}
	for _, p := range r.PublicPlayers() {
		if p.Score != 0 {
			t.Errorf("wanted scores zeroed, %v has %v", p.ID, p.Score)
		}
	}
}

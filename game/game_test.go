package game

import (
	"math/rand"
	"strings"
	"testing"
)

func TestSettingsApply(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	difficultyPtr := func(d Difficulty) *Difficulty { return &d }
	boolPtr := func(b bool) *bool { return &b }
	applyTests := []struct {
		patch SettingsPatch
		want  Settings
	}{
		{ // empty patch changes nothing
			want: DefaultSettings(),
		},
		{ // time limit clamped low
			patch: SettingsPatch{TimeLimit: intPtr(5)},
			want:  Settings{TimeLimit: 30, TotalRounds: 3, Difficulty: DifficultyMedium, MaxPlayers: 10, HintsEnabled: true},
		},
		{ // time limit clamped high
			patch: SettingsPatch{TimeLimit: intPtr(999)},
			want:  Settings{TimeLimit: 180, TotalRounds: 3, Difficulty: DifficultyMedium, MaxPlayers: 10, HintsEnabled: true},
		},
		{ // rounds clamped
			patch: SettingsPatch{TotalRounds: intPtr(50)},
			want:  Settings{TimeLimit: 80, TotalRounds: 10, Difficulty: DifficultyMedium, MaxPlayers: 10, HintsEnabled: true},
		},
		{ // unknown difficulty ignored
			patch: SettingsPatch{Difficulty: difficultyPtr("impossible")},
			want:  DefaultSettings(),
		},
		{
			patch: SettingsPatch{TimeLimit: intPtr(60), TotalRounds: intPtr(2), Difficulty: difficultyPtr(DifficultyEasy), HintsEnabled: boolPtr(false)},
			want:  Settings{TimeLimit: 60, TotalRounds: 2, Difficulty: DifficultyEasy, MaxPlayers: 10},
		},
	}
	for i, test := range applyTests {
		got := DefaultSettings()
		got.apply(test.patch)
		if test.want != got {
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, got)
		}
	}
}

func TestNewRoomCode(t *testing.T) {
	r := rand.New(rand.NewSource(1549))
	for i := 0; i < 100; i++ {
		code := NewRoomCode(r)
		if want, got := RoomCodeLength, len(code); want != got {
			t.Fatalf("wanted code of length %v, got %q", want, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(roomCodeAlphabet, ch) {
				t.Fatalf("wanted code from unambiguous alphabet, got %q", code)
			}
		}
	}
}

func TestErrorString(t *testing.T) {
	err := NewError(ErrCodeRoomFull, "room is full")
	if want, got := "ROOM_FULL: room is full", err.Error(); want != got {
		t.Errorf("wanted %q, got %q", want, got)
	}
}

package session

import (
	"testing"
	"time"
)

func newTestDirectory(t *testing.T, now *time.Time) *Directory {
	t.Helper()
	d, err := Config{
		RejoinWindow: 5 * time.Minute,
		TimeFunc:     func() time.Time { return *now },
	}.NewDirectory()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	return d
}

func TestNewDirectory(t *testing.T) {
	timeFunc := func() time.Time { return time.Unix(0, 0) }
	newDirectoryTests := []struct {
		wantOk bool
		Config
	}{
		{}, // no fields
		{ // no time func
			Config: Config{RejoinWindow: time.Minute},
		},
		{ // no rejoin window
			Config: Config{TimeFunc: timeFunc},
		},
		{
			Config: Config{RejoinWindow: time.Minute, TimeFunc: timeFunc},
			wantOk: true,
		},
	}
	for i, test := range newDirectoryTests {
		_, err := test.Config.NewDirectory()
		switch {
		case err != nil:
			if test.wantOk {
				t.Errorf("Test %v: unwanted error: %v", i, err)
			}
		case !test.wantOk:
			t.Errorf("Test %v: wanted error", i)
		}
	}
}

func TestBindLookup(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	b := Binding{RoomID: "AAAAA", PlayerID: "p1", Name: "alice"}
	d.Bind("conn1", b)
	if got, ok := d.Lookup("conn1"); !ok || got != b {
		t.Errorf("wanted %v, got %v (ok=%v)", b, got, ok)
	}
	if connID, ok := d.ConnFor("p1"); !ok || connID != "conn1" {
		t.Errorf("wanted conn1 for p1, got %v (ok=%v)", connID, ok)
	}
	if want, got := 1, d.Connections(); want != got {
		t.Errorf("wanted %v connections, got %v", want, got)
	}
}

func TestBindReplacesPriorBinding(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	d.Bind("conn1", Binding{RoomID: "AAAAA", PlayerID: "p1"})
	d.Bind("conn2", Binding{RoomID: "AAAAA", PlayerID: "p1"})
	if connID, _ := d.ConnFor("p1"); connID != "conn2" {
		t.Errorf("wanted newest connection to win, got %v", connID)
	}
	// unbinding the stale connection must not drop the new one
	d.Unbind("conn1")
	if _, ok := d.ConnFor("p1"); !ok {
		t.Errorf("wanted p1 still bound through conn2")
	}
}

func TestUnbind(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	d.Bind("conn1", Binding{RoomID: "AAAAA", PlayerID: "p1"})
	d.Unbind("conn1")
	if _, ok := d.Lookup("conn1"); ok {
		t.Errorf("wanted binding removed")
	}
	if _, ok := d.ConnFor("p1"); ok {
		t.Errorf("wanted player index removed")
	}
	d.Unbind("conn1") // no-op
}

func TestTakePending(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	s := Snapshot{RoomID: "AAAAA", Name: "alice", Score: 120, DisconnectedAt: now}
	d.AddPending("p1", s)
	now = now.Add(4 * time.Minute)
	got, ok := d.TakePending("p1")
	if !ok || got != s {
		t.Fatalf("wanted snapshot %v, got %v (ok=%v)", s, got, ok)
	}
	if _, ok := d.TakePending("p1"); ok {
		t.Errorf("wanted snapshot consumed on take")
	}
}

func TestTakePendingExpired(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	d.AddPending("p1", Snapshot{RoomID: "AAAAA", DisconnectedAt: now})
	now = now.Add(5*time.Minute + time.Second)
	if _, ok := d.TakePending("p1"); ok {
		t.Errorf("wanted expired snapshot reported as absent")
	}
}

func TestPurge(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newTestDirectory(t, &now)
	d.AddPending("old", Snapshot{DisconnectedAt: now.Add(-10 * time.Minute)})
	d.AddPending("new", Snapshot{DisconnectedAt: now})
	d.Purge()
	if _, ok := d.pending["old"]; ok {
		t.Errorf("wanted expired snapshot purged")
	}
	if _, ok := d.pending["new"]; !ok {
		t.Errorf("wanted fresh snapshot kept")
	}
}

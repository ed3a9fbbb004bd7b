package ratelimit

import (
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	timeFunc := func() time.Time { return time.Unix(0, 0) }
	newLimiterTests := []struct {
		wantOk bool
		Config
	}{
		{}, // no fields
		{ // no window
			Config: Config{Limit: 3, TimeFunc: timeFunc},
		},
		{ // no time func
			Config: Config{Limit: 3, Window: time.Second},
		},
		{
			Config: Config{Limit: 3, Window: time.Second, TimeFunc: timeFunc},
			wantOk: true,
		},
	}
	for i, test := range newLimiterTests {
		_, err := test.Config.NewLimiter()
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

func TestAllow(t *testing.T) {
	now := time.Unix(1000, 0)
	l, err := Config{
		Limit:    3,
		Window:   5 * time.Second,
		TimeFunc: func() time.Time { return now },
	}.NewLimiter()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if !l.Allow("p1") {
			t.Fatalf("wanted attempt %v allowed", i+1)
		}
	}
	if l.Allow("p1") {
		t.Errorf("wanted 4th attempt in window denied")
	}
	if !l.Allow("p2") {
		t.Errorf("wanted other keys unaffected")
	}
	now = now.Add(6 * time.Second)
	if !l.Allow("p1") {
		t.Errorf("wanted attempt allowed after window passed")
	}
}

func TestAllowRejectionsDoNotExtendLockout(t *testing.T) {
	now := time.Unix(1000, 0)
	l, err := Config{
		Limit:    2,
		Window:   5 * time.Second,
		TimeFunc: func() time.Time { return now },
	}.NewLimiter()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	l.Allow("p1")
	l.Allow("p1")
	for i := 0; i < 10; i++ {
		if l.Allow("p1") {
			t.Fatalf("wanted attempt %v denied", i)
		}
	}
	now = now.Add(5*time.Second + time.Millisecond)
	if !l.Allow("p1") {
		t.Errorf("wanted rejections not to count against the window")
	}
}

func TestForget(t *testing.T) {
	now := time.Unix(1000, 0)
	l, err := Config{
		Limit:    1,
		Window:   time.Minute,
		TimeFunc: func() time.Time { return now },
	}.NewLimiter()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	l.Allow("p1")
	if l.Allow("p1") {
		t.Fatalf("wanted second attempt denied")
	}
	l.Forget("p1")
	if !l.Allow("p1") {
		t.Errorf("wanted attempt allowed after forget")
	}
}

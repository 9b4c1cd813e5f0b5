package manager

import (
	"testing"
	"time"
)

func TestRoundLifecycle(t *testing.T) {
	sm := NewStateManager()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return clock }

	sm.StartRound("round-a")
	for i := 0; i < 3; i++ {
		sm.Tick()
	}
	clock = clock.Add(2 * time.Second)
	rec := sm.EndRound(7, false)

	if rec.ID != "round-a" || rec.Ticks != 3 || rec.Length != 7 {
		t.Errorf("unexpected record %+v", rec)
	}
	if got := rec.EndTime.Sub(rec.StartTime); got != 2*time.Second {
		t.Errorf("expected 2s round, got %v", got)
	}

	// Ticks outside a round are ignored
	sm.Tick()
	sm.StartRound("round-b")
	if sm.Current().Ticks != 0 {
		t.Errorf("new round should start with zero ticks, got %d", sm.Current().Ticks)
	}
}

func TestStatistics(t *testing.T) {
	sm := NewStateManager()
	for i, length := range []int{3, 9, 1, 5} {
		sm.StartRound(string(rune('a' + i)))
		sm.EndRound(length, length == 9)
	}

	if sm.GamesPlayed() != 4 {
		t.Errorf("expected 4 games, got %d", sm.GamesPlayed())
	}
	if sm.HighScore() != 9 {
		t.Errorf("expected high score 9, got %d", sm.HighScore())
	}
	if sm.AverageLength() != 4.5 {
		t.Errorf("expected average 4.5, got %v", sm.AverageLength())
	}
	if sm.MedianLength() != 4 {
		t.Errorf("expected median 4, got %v", sm.MedianLength())
	}
	if h := sm.History(); len(h) != 4 || !h[1].Won {
		t.Errorf("unexpected history %+v", h)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	sm := NewStateManager()
	for i := 0; i < maxHistory+10; i++ {
		sm.StartRound("r")
		sm.EndRound(i, false)
	}

	h := sm.History()
	if len(h) != maxHistory {
		t.Fatalf("expected %d records, got %d", maxHistory, len(h))
	}
	if h[0].Length != 10 {
		t.Errorf("expected oldest kept round to have length 10, got %d", h[0].Length)
	}
	if sm.GamesPlayed() != maxHistory+10 {
		t.Errorf("games played should count dropped rounds too, got %d", sm.GamesPlayed())
	}
}

func TestEmptyStatistics(t *testing.T) {
	sm := NewStateManager()
	if sm.AverageLength() != 0 || sm.MedianLength() != 0 || sm.HighScore() != 0 {
		t.Error("expected zeroed statistics on a fresh manager")
	}
}

package progression

import (
	"context"
	"testing"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Streak Tests ───────────────────────────────────────────────────────────

func engineWithStreak(t *testing.T, streak domain.DailyStreak) (*Engine, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := newFakeClock()
	_ = store.SaveState(context.Background(), domain.PersistedState{
		Version: domain.StateVersion,
		Streak:  streak,
	})
	e, err := New(context.Background(), WithStore(store), WithClock(clock.Now), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, store, clock
}

func TestStreak_Scenarios(t *testing.T) {
	now := newFakeClock().Now()
	tests := []struct {
		name        string
		lastVisit   time.Time
		wantChange  StreakChange
		wantCurrent int
		wantLongest int
		wantDays    int
	}{
		{"yesterday", now.Add(-24 * time.Hour), StreakExtended, 5, 6, 11},
		{"yesterday late evening", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), StreakExtended, 5, 6, 11},
		{"five days ago", now.Add(-5 * 24 * time.Hour), StreakReset, 1, 6, 11},
		{"two days ago", now.Add(-48 * time.Hour), StreakReset, 1, 6, 11},
		{"earlier today", time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC), StreakUnchanged, 4, 6, 10},
		{"in the future", now.Add(72 * time.Hour), StreakReset, 1, 6, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := engineWithStreak(t, domain.DailyStreak{
				CurrentStreak:   4,
				LongestStreak:   6,
				LastVisit:       tt.lastVisit,
				TotalDaysActive: 10,
			})
			out, err := e.CheckAndUpdateStreak(context.Background())
			if err != nil {
				t.Fatalf("streak: %v", err)
			}
			if out.Change != tt.wantChange {
				t.Errorf("expected %s, got %s", tt.wantChange, out.Change)
			}
			s := e.Streak()
			if s.CurrentStreak != tt.wantCurrent || s.LongestStreak != tt.wantLongest || s.TotalDaysActive != tt.wantDays {
				t.Errorf("got %+v", s)
			}
			if s.LongestStreak < s.CurrentStreak {
				t.Errorf("longest %d < current %d", s.LongestStreak, s.CurrentStreak)
			}
		})
	}
}

func TestStreak_FirstVisit(t *testing.T) {
	e, _, _ := newTestEngine(t)
	out, err := e.CheckAndUpdateStreak(context.Background())
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if out.Change != StreakReset || out.Streak.CurrentStreak != 1 || out.Streak.LongestStreak != 1 || out.Streak.TotalDaysActive != 1 {
		t.Errorf("unexpected first visit %+v", out)
	}
}

func TestStreak_SameDayDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	e, store, clock := newTestEngine(t)
	_, _ = e.CheckAndUpdateStreak(ctx)
	saves := store.Saves()

	clock.Advance(3 * time.Hour)
	out, _ := e.CheckAndUpdateStreak(ctx)
	if out.Change != StreakUnchanged {
		t.Errorf("expected unchanged, got %s", out.Change)
	}
	if store.Saves() != saves {
		t.Error("same-day visit should not persist")
	}
}

func TestStreak_ConsecutiveDaysUnlockAchievements(t *testing.T) {
	ctx := context.Background()
	e, _, clock := newTestEngine(t)

	var unlocked []string
	for day := 0; day < 7; day++ {
		out, err := e.CheckAndUpdateStreak(ctx)
		if err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
		for _, a := range out.Unlocked {
			unlocked = append(unlocked, a.ID)
		}
		clock.Advance(24 * time.Hour)
	}
	if e.Streak().CurrentStreak != 7 {
		t.Fatalf("expected 7-day streak, got %d", e.Streak().CurrentStreak)
	}
	if len(unlocked) != 2 || unlocked[0] != AchStreak3 || unlocked[1] != AchStreak7 {
		t.Errorf("expected streak-3 then streak-7, got %v", unlocked)
	}
	if e.Stats().TotalXP != 350 {
		t.Errorf("expected 100 + 250 xp, got %d", e.Stats().TotalXP)
	}
}

func TestDaysBetween_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 23:30 UTC on the 9th is already the 10th in Tokyo.
	a := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	if got := DaysBetween(a, b, time.UTC); got != 0 {
		t.Errorf("UTC: expected 0, got %d", got)
	}
	if got := DaysBetween(a, b, tokyo); got != 1 {
		t.Errorf("JST: expected 1, got %d", got)
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	// DST starts 2026-03-08 in New York; the day is only 23 hours long.
	a := time.Date(2026, 3, 7, 23, 0, 0, 0, ny)
	b := time.Date(2026, 3, 8, 23, 0, 0, 0, ny)
	if got := DaysBetween(a, b, ny); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

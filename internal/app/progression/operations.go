package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Module Lifecycle ───────────────────────────────────────────────────────

// CompletionOutcome reports the effect of one CompleteModule call.
type CompletionOutcome struct {
	ModuleID        string                `json:"module_id"`
	FirstCompletion bool                  `json:"first_completion"`
	CompletionXP    int64                 `json:"completion_xp"` // value of this attempt
	XPAwarded       int64                 `json:"xp_awarded"`    // completion XP actually granted
	LevelBefore     int                   `json:"level_before"`
	LevelAfter      int                   `json:"level_after"`
	Progress        domain.ModuleProgress `json:"progress"`
	Stats           domain.UserStats      `json:"stats"`
	Unlocked        []domain.Achievement  `json:"unlocked_achievements"`
}

// LeveledUp reports whether the call raised the level.
func (o CompletionOutcome) LeveledUp() bool { return o.LevelAfter > o.LevelBefore }

// StartModule records that the learner opened a module. Existing progress
// is never touched.
func (e *Engine) StartModule(ctx context.Context, moduleID string) error {
	if moduleID == "" {
		return fmt.Errorf("start module: empty module id")
	}
	started := false
	e.mu.Lock()
	unlocked, err := e.afterCommitLocked(ctx, "start module", func() bool {
		_, exists := e.state.ModuleProgress[moduleID]
		if !exists {
			e.state.ModuleProgress[moduleID] = domain.ModuleProgress{ModuleID: moduleID}
		}
		started = !exists
		return started
	})
	e.mu.Unlock()

	if started {
		e.log.Debug("module started", "module", moduleID)
	}
	e.notify(unlocked)
	return err
}

// RecordAttempt counts an attempt that did not complete the module.
func (e *Engine) RecordAttempt(ctx context.Context, moduleID string) error {
	if moduleID == "" {
		return fmt.Errorf("record attempt: empty module id")
	}
	e.mu.Lock()
	unlocked, err := e.afterCommitLocked(ctx, "record attempt", func() bool {
		p := e.state.ModuleProgress[moduleID]
		p.ModuleID = moduleID
		p.Attempts++
		e.state.ModuleProgress[moduleID] = p
		return true
	})
	e.mu.Unlock()

	e.notify(unlocked)
	return err
}

// CompleteModule credits a successful attempt.
//
// A first completion earns the full CompletionXP. A repeat completion earns
// only the improvement over the module's best XP, so replaying at the same
// or lower performance earns nothing. Attempts and time always accumulate.
func (e *Engine) CompleteModule(ctx context.Context, moduleID string, hintsUsed int, timeSpent int64) (CompletionOutcome, error) {
	if moduleID == "" {
		return CompletionOutcome{}, fmt.Errorf("complete module: empty module id")
	}
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	if timeSpent < 0 {
		timeSpent = 0
	}
	current := CompletionXP(hintsUsed, timeSpent)
	out := CompletionOutcome{ModuleID: moduleID, CompletionXP: current}

	var extra []string
	if timeSpent < SpeedDemonSeconds {
		extra = append(extra, AchSpeedDemon)
	}

	e.mu.Lock()
	unlocked, err := e.afterCommitLocked(ctx, "complete module", func() bool {
		existing := e.state.ModuleProgress[moduleID]
		first := !existing.Completed

		award, best := current, current
		if !first {
			award = 0
			best = existing.XPEarned
			if current > existing.XPEarned {
				award = current - existing.XPEarned
				best = current
			}
		}

		now := e.now()
		e.state.ModuleProgress[moduleID] = domain.ModuleProgress{
			ModuleID:    moduleID,
			Completed:   true,
			CompletedAt: &now,
			Attempts:    existing.Attempts + 1,
			TimeSpent:   existing.TimeSpent + timeSpent,
			HintsUsed:   hintsUsed,
			XPEarned:    best,
		}

		out.FirstCompletion = first
		out.XPAwarded = award
		out.LevelBefore = e.state.Stats.Level

		e.awardXPLocked(domain.XPModuleCompletion, moduleID, award)
		if first {
			e.state.Stats.ModulesCompleted++
			if hintsUsed == 0 {
				e.state.Stats.PerfectScores++
			}
		}
		e.state.Stats.TotalTimeSpent += timeSpent
		return true
	}, extra...)

	out.LevelAfter = e.state.Stats.Level
	out.Progress = cloneProgress(e.state.ModuleProgress[moduleID])
	out.Stats = e.state.Stats
	out.Unlocked = unlocked
	e.mu.Unlock()

	e.obs.ModuleCompleted(moduleID, out.FirstCompletion)
	e.log.Info("module completed",
		"module", moduleID,
		"first", out.FirstCompletion,
		"hints", hintsUsed,
		"seconds", timeSpent,
		"xp_awarded", out.XPAwarded,
	)
	e.notify(unlocked)
	return out, err
}

// ─── Daily Streak ───────────────────────────────────────────────────────────

// StreakChange describes what a visit did to the streak.
type StreakChange string

const (
	StreakUnchanged StreakChange = "unchanged"
	StreakExtended  StreakChange = "extended"
	StreakReset     StreakChange = "reset"
)

// StreakOutcome reports the effect of one CheckAndUpdateStreak call.
type StreakOutcome struct {
	Change   StreakChange         `json:"change"`
	Streak   domain.DailyStreak   `json:"streak"`
	Unlocked []domain.Achievement `json:"unlocked_achievements"`
}

// civilDay maps t to noon UTC of its calendar date in loc, so that
// subtracting two days never trips over DST transitions.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b in loc.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	return int(civilDay(b, loc).Sub(civilDay(a, loc)).Hours() / 24)
}

// CheckAndUpdateStreak records a visit. Visits on the same calendar day
// change nothing; a visit on the next day extends the streak; anything else
// (a gap, a first visit, a last visit in the future) starts a new streak.
func (e *Engine) CheckAndUpdateStreak(ctx context.Context) (StreakOutcome, error) {
	e.mu.Lock()
	change := StreakUnchanged
	unlocked, err := e.afterCommitLocked(ctx, "update streak", func() bool {
		now := e.now()
		s := &e.state.Streak

		change = StreakReset
		if !s.LastVisit.IsZero() {
			switch DaysBetween(s.LastVisit, now, e.loc) {
			case 0:
				change = StreakUnchanged
			case 1:
				change = StreakExtended
			}
		}

		switch change {
		case StreakExtended:
			s.CurrentStreak++
			s.TotalDaysActive++
			s.LastVisit = now
		case StreakReset:
			s.CurrentStreak = 1
			s.TotalDaysActive++
			s.LastVisit = now
		}
		if s.LongestStreak < s.CurrentStreak {
			s.LongestStreak = s.CurrentStreak
		}
		return change != StreakUnchanged
	})
	out := StreakOutcome{Change: change, Streak: e.state.Streak, Unlocked: unlocked}
	e.mu.Unlock()

	if change != StreakUnchanged {
		e.obs.StreakUpdated(out.Streak.CurrentStreak)
		e.log.Info("streak updated", "change", change, "current", out.Streak.CurrentStreak, "longest", out.Streak.LongestStreak)
	}
	e.notify(unlocked)
	return out, err
}

// ─── Achievements & XP ──────────────────────────────────────────────────────

// CheckAchievements unlocks every achievement whose condition now holds and
// returns the newly unlocked ones. It is idempotent.
func (e *Engine) CheckAchievements(ctx context.Context) ([]domain.Achievement, error) {
	e.mu.Lock()
	unlocked, err := e.afterCommitLocked(ctx, "check achievements", func() bool { return false })
	e.mu.Unlock()

	e.notify(unlocked)
	return unlocked, err
}

// UnlockAchievement unlocks id and grants its XP reward. It reports false
// without changing anything when id is already unlocked.
func (e *Engine) UnlockAchievement(ctx context.Context, id string) (domain.Achievement, bool, error) {
	if _, ok := e.defIndex[id]; !ok {
		return domain.Achievement{}, false, fmt.Errorf("unlock %q: %w", id, domain.ErrUnknownAchievement)
	}
	var (
		a     domain.Achievement
		fresh bool
	)
	e.mu.Lock()
	more, err := e.afterCommitLocked(ctx, "unlock achievement", func() bool {
		a, fresh, _ = e.unlockLocked(id)
		return fresh
	})
	e.mu.Unlock()

	var unlocked []domain.Achievement
	if fresh {
		unlocked = append(unlocked, a)
	}
	unlocked = append(unlocked, more...)
	e.notify(unlocked)
	return a, fresh, err
}

// AddXP grants bonus XP outside module completion and achievements.
func (e *Engine) AddXP(ctx context.Context, amount int64, reason string) (domain.UserStats, error) {
	if amount <= 0 {
		return e.Stats(), fmt.Errorf("add xp: amount must be positive, got %d", amount)
	}
	e.mu.Lock()
	unlocked, err := e.afterCommitLocked(ctx, "add xp", func() bool {
		e.awardXPLocked(domain.XPBonus, reason, amount)
		return true
	})
	stats := e.state.Stats
	e.mu.Unlock()

	e.notify(unlocked)
	return stats, err
}

// ResetProgress restores every part of the state to its defaults and clears
// the XP ledger.
func (e *Engine) ResetProgress(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.commitLocked(ctx, "reset progress", func() bool {
		e.resetLocked()
		e.pending = nil
		return true
	})
	if err != nil {
		return err
	}
	e.log.Warn("progress reset")
	if e.journal != nil {
		if err := e.journal.ResetXPEvents(ctx); err != nil {
			e.log.Warn("reset xp ledger failed", "error", err)
		}
	}
	return nil
}

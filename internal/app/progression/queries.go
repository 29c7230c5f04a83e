package progression

import (
	"context"
	"sort"
	"time"

	"github.com/curio-cabinet/curio/internal/domain"
)

// ─── Read Side ──────────────────────────────────────────────────────────────
// Every accessor returns a copy; callers can never reach engine state.

// Snapshot returns a deep copy of the full persisted document.
func (e *Engine) Snapshot() domain.PersistedState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// Stats returns the aggregate stats.
func (e *Engine) Stats() domain.UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Stats
}

// Streak returns the daily streak.
func (e *Engine) Streak() domain.DailyStreak {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Streak
}

// Level returns the current level.
func (e *Engine) Level() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Stats.Level
}

// XPForNextLevel returns the total XP at which the next level starts.
func (e *Engine) XPForNextLevel() int64 {
	return domain.XPForLevel(e.Level() + 1)
}

// ProgressPercentage is how far the learner is from the current level's
// threshold to the next, in percent.
func (e *Engine) ProgressPercentage() float64 {
	return domain.LevelProgressPct(e.Stats().TotalXP)
}

// ModuleProgress returns the progress of one module.
func (e *Engine) ModuleProgress(moduleID string) (domain.ModuleProgress, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.state.ModuleProgress[moduleID]
	return cloneProgress(p), ok
}

// ModuleStatus places a module in its NotStarted/InProgress/Completed cycle.
func (e *Engine) ModuleStatus(moduleID string) domain.ModuleStatus {
	p, ok := e.ModuleProgress(moduleID)
	if !ok {
		return domain.ModuleNotStarted
	}
	return p.Status()
}

// AllModuleProgress returns every module's progress sorted by module ID.
func (e *Engine) AllModuleProgress() []domain.ModuleProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ModuleProgress, 0, len(e.state.ModuleProgress))
	for _, p := range e.state.ModuleProgress {
		out = append(out, cloneProgress(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleID < out[j].ModuleID })
	return out
}

// IsModuleCompleted reports whether the module has ever been completed.
func (e *Engine) IsModuleCompleted(moduleID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ModuleProgress[moduleID].Completed
}

// Achievements returns the catalog in order with unlock stamps.
func (e *Engine) Achievements() []domain.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Achievement, len(e.state.Achievements))
	for i, a := range e.state.Achievements {
		out[i] = cloneAchievement(a)
	}
	return out
}

// XPHistory returns the most recent XP ledger entries, newest first.
func (e *Engine) XPHistory(ctx context.Context, limit int) ([]domain.XPEvent, error) {
	if e.journal == nil {
		return nil, domain.ErrXPHistoryUnsupported
	}
	return e.journal.ListXPEvents(ctx, limit)
}

// Summary is the dashboard view of progression.
type Summary struct {
	Stats              domain.UserStats     `json:"stats"`
	Streak             domain.DailyStreak   `json:"streak"`
	LevelProgress      float64              `json:"level_progress"`
	NextLevelXP        int64                `json:"next_level_xp"`
	ModulesTotal       int                  `json:"modules_total"`
	RecentAchievements []domain.Achievement `json:"recent_achievements"`
}

const recentAchievements = 3

// Summary returns the dashboard snapshot.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Summary{
		Stats:         e.state.Stats,
		Streak:        e.state.Streak,
		LevelProgress: domain.LevelProgressPct(e.state.Stats.TotalXP),
		NextLevelXP:   domain.XPForLevel(e.state.Stats.Level + 1),
		ModulesTotal:  e.totalModules,
	}
	var recent []domain.Achievement
	for _, a := range e.state.Achievements {
		if a.Unlocked() {
			recent = append(recent, cloneAchievement(a))
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UnlockedAt.After(*recent[j].UnlockedAt) })
	if len(recent) > recentAchievements {
		recent = recent[:recentAchievements]
	}
	s.RecentAchievements = recent
	return s
}

// ─── Copy Helpers ───────────────────────────────────────────────────────────

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneProgress(p domain.ModuleProgress) domain.ModuleProgress {
	p.CompletedAt = cloneTime(p.CompletedAt)
	return p
}

func cloneAchievement(a domain.Achievement) domain.Achievement {
	a.UnlockedAt = cloneTime(a.UnlockedAt)
	return a
}

func cloneState(st domain.PersistedState) domain.PersistedState {
	out := st
	out.ModuleProgress = make(map[string]domain.ModuleProgress, len(st.ModuleProgress))
	for id, p := range st.ModuleProgress {
		out.ModuleProgress[id] = cloneProgress(p)
	}
	out.Achievements = make([]domain.Achievement, len(st.Achievements))
	for i, a := range st.Achievements {
		out.Achievements[i] = cloneAchievement(a)
	}
	out.UnlockedAchievements = append([]string{}, st.UnlockedAchievements...)
	return out
}

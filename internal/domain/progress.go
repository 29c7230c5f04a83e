package domain

import (
	"math"
	"time"
)

// ─── Progression Types ──────────────────────────────────────────────────────
// The progression engine drives learner motivation through XP, levels,
// daily streaks and one-time achievements.

// StateVersion is the schema version of PersistedState.
const StateVersion = 1

// ─── Level / XP Types ───────────────────────────────────────────────────────

// LevelForXP derives the level from total XP: floor(sqrt(xp / 100)).
// Level 1 = 100 XP, level 2 = 400 XP, level 3 = 900 XP, ...
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	n := xp / 100
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return int(r)
}

// XPForLevel returns the total XP at which level starts (level² × 100).
func XPForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	l := int64(level)
	return l * l * 100
}

// LevelProgressPct returns the percentage of the way from the current
// level's threshold to the next one.
func LevelProgressPct(totalXP int64) float64 {
	level := LevelForXP(totalXP)
	lo := XPForLevel(level)
	hi := XPForLevel(level + 1)
	return float64(totalXP-lo) / float64(hi-lo) * 100
}

// XPSource categorizes how XP was earned.
type XPSource string

const (
	XPModuleCompletion XPSource = "module_completion"
	XPAchievement      XPSource = "achievement"
	XPBonus            XPSource = "bonus"
)

// XPEvent is one entry of the append-only XP ledger.
type XPEvent struct {
	ID         int64     `json:"id"`
	Source     XPSource  `json:"source"`
	Ref        string    `json:"ref"` // module or achievement id
	Amount     int64     `json:"amount"`
	TotalAfter int64     `json:"total_after"`
	At         time.Time `json:"at"`
}

// ─── Stats / Streak / Module Progress ───────────────────────────────────────

// UserStats aggregates the learner's progression.
// Level is always LevelForXP(TotalXP).
type UserStats struct {
	TotalXP              int64 `json:"totalXP"`
	Level                int   `json:"level"`
	ModulesCompleted     int   `json:"modulesCompleted"`
	PerfectScores        int   `json:"perfectScores"`  // completed without hints
	TotalTimeSpent       int64 `json:"totalTimeSpent"` // seconds
	AchievementsUnlocked int   `json:"achievementsUnlocked"`
}

// DailyStreak tracks consecutive calendar days with at least one visit.
type DailyStreak struct {
	CurrentStreak   int       `json:"currentStreak"`
	LongestStreak   int       `json:"longestStreak"`
	LastVisit       time.Time `json:"lastVisit"`
	TotalDaysActive int       `json:"totalDaysActive"`
}

// ModuleProgress records a learner's history with one module.
type ModuleProgress struct {
	ModuleID    string     `json:"moduleId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Attempts    int        `json:"attempts"`
	TimeSpent   int64      `json:"timeSpent"` // cumulative seconds
	HintsUsed   int        `json:"hintsUsed"` // last attempt only
	XPEarned    int64      `json:"xpEarned"`  // best XP achieved, never decreases
}

// Status places the module in its lifecycle.
func (p *ModuleProgress) Status() ModuleStatus {
	switch {
	case p == nil:
		return ModuleNotStarted
	case p.Completed:
		return ModuleCompleted
	default:
		return ModuleInProgress
	}
}

// ModuleStatus is the per-module state machine position.
type ModuleStatus string

const (
	ModuleNotStarted ModuleStatus = "not_started"
	ModuleInProgress ModuleStatus = "in_progress"
	ModuleCompleted  ModuleStatus = "completed"
)

// ─── Achievement Types ──────────────────────────────────────────────────────

// Rarity grades how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Valid reports whether r is one of the four rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Rank orders rarities from common (1) to legendary (4); 0 for unknown.
func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return 0
}

// Achievement is a catalog entry. UnlockedAt is the only mutable field and
// is set exactly once.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Rarity      Rarity     `json:"rarity"`
	XPReward    int64      `json:"xpReward"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// Unlocked reports whether the achievement has been earned.
func (a Achievement) Unlocked() bool { return a.UnlockedAt != nil }

// ProgressSnapshot is fed to achievement predicates.
type ProgressSnapshot struct {
	Stats        UserStats
	Streak       DailyStreak
	TotalModules int
}

// AchievementDef pairs a catalog entry with its unlock predicate.
// A nil Predicate means the achievement is only unlocked by an explicit hook.
type AchievementDef struct {
	Achievement
	Predicate func(ProgressSnapshot) bool `json:"-"`
}

// ─── Persisted State ────────────────────────────────────────────────────────

// PersistedState is the versioned document handed to the storage layer.
// Revision counts successful saves and guards concurrent writers.
type PersistedState struct {
	Version              int                       `json:"version"`
	Revision             int64                     `json:"revision"`
	Stats                UserStats                 `json:"stats"`
	Streak               DailyStreak               `json:"streak"`
	ModuleProgress       map[string]ModuleProgress `json:"moduleProgress"`
	Achievements         []Achievement             `json:"achievements"`
	UnlockedAchievements []string                  `json:"unlockedAchievements"`
}

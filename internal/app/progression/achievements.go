package progression

import "github.com/curio-cabinet/curio/internal/domain"

// ─── Achievement Catalog ────────────────────────────────────────────────────

// Achievement IDs.
const (
	AchFirstStep       = "first-step"
	AchStreak3         = "streak-3"
	AchStreak7         = "streak-7"
	AchStreak30        = "streak-30"
	AchPerfectionist   = "perfectionist"
	AchSpeedDemon      = "speed-demon"
	AchCompletionist10 = "completionist-10"
	AchLevel5          = "level-5"
	AchLevel10         = "level-10"
	AchAllModules      = "all-modules"
)

// SpeedDemonSeconds is the completion time under which speed-demon unlocks.
const SpeedDemonSeconds = 300

// Catalog returns the fixed achievement catalog, all locked.
func Catalog() []domain.AchievementDef {
	return []domain.AchievementDef{
		{
			Achievement: domain.Achievement{ID: AchFirstStep, Title: "First Steps", Description: "Complete your first module", Icon: "🎯", Rarity: domain.RarityCommon, XPReward: 50},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Stats.ModulesCompleted >= 1 },
		},
		{
			Achievement: domain.Achievement{ID: AchStreak3, Title: "Getting Started", Description: "Maintain a 3-day streak", Icon: "🔥", Rarity: domain.RarityCommon, XPReward: 100},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Streak.CurrentStreak >= 3 },
		},
		{
			Achievement: domain.Achievement{ID: AchStreak7, Title: "Week Warrior", Description: "Maintain a 7-day streak", Icon: "⚡", Rarity: domain.RarityRare, XPReward: 250},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Streak.CurrentStreak >= 7 },
		},
		{
			Achievement: domain.Achievement{ID: AchStreak30, Title: "Monthly Master", Description: "Maintain a 30-day streak", Icon: "💫", Rarity: domain.RarityEpic, XPReward: 1000},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Streak.CurrentStreak >= 30 },
		},
		{
			Achievement: domain.Achievement{ID: AchPerfectionist, Title: "Perfectionist", Description: "Complete 5 modules without using hints", Icon: "💎", Rarity: domain.RarityRare, XPReward: 300},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Stats.PerfectScores >= 5 },
		},
		{
			// unlocked by the completion hook, see CompleteModule
			Achievement: domain.Achievement{ID: AchSpeedDemon, Title: "Speed Demon", Description: "Complete a module in under 5 minutes", Icon: "⚡", Rarity: domain.RarityRare, XPReward: 200},
		},
		{
			Achievement: domain.Achievement{ID: AchCompletionist10, Title: "Curious Mind", Description: "Complete 10 modules", Icon: "🧠", Rarity: domain.RarityRare, XPReward: 500},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Stats.ModulesCompleted >= 10 },
		},
		{
			Achievement: domain.Achievement{ID: AchLevel5, Title: "Adept Learner", Description: "Reach level 5", Icon: "⭐", Rarity: domain.RarityRare, XPReward: 300},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Stats.Level >= 5 },
		},
		{
			Achievement: domain.Achievement{ID: AchLevel10, Title: "Mathematical Maestro", Description: "Reach level 10", Icon: "🏆", Rarity: domain.RarityEpic, XPReward: 1000},
			Predicate:   func(s domain.ProgressSnapshot) bool { return s.Stats.Level >= 10 },
		},
		{
			Achievement: domain.Achievement{ID: AchAllModules, Title: "Cabinet Explorer", Description: "Complete all available modules", Icon: "🎓", Rarity: domain.RarityLegendary, XPReward: 2000},
			Predicate: func(s domain.ProgressSnapshot) bool {
				return s.TotalModules > 0 && s.Stats.ModulesCompleted >= s.TotalModules
			},
		},
	}
}
